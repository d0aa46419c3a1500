package models

import "time"

// DraftSlot is the single persisted onboarding-session slot. One row per slot
// key; a save overwrites the payload unconditionally.
type DraftSlot struct {
	Slot      string `gorm:"primaryKey;size:64"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// DocumentDraftRecord caches one generated compliance document draft per doc
// type so the report view survives a restart. Last write wins per type.
type DocumentDraftRecord struct {
	DocType   string  `gorm:"primaryKey;size:32"`
	Payload   string  `gorm:"type:text;not null"`
	Coverage  float64 `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
