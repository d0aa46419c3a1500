package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"conformly/internal/models"
)

type DraftSlotRepository interface {
	Get(ctx context.Context, slot string) (*models.DraftSlot, error)
	Put(ctx context.Context, slot, payload string) error
	Delete(ctx context.Context, slot string) error
}

type draftSlotRepository struct {
	db *gorm.DB
}

func NewDraftSlotRepository(db *gorm.DB) DraftSlotRepository {
	return &draftSlotRepository{db: db}
}

func (r *draftSlotRepository) Get(ctx context.Context, slot string) (*models.DraftSlot, error) {
	var row models.DraftSlot
	res := r.db.WithContext(ctx).Where("slot = ?", slot).Take(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &row, nil
}

func (r *draftSlotRepository) Put(ctx context.Context, slot, payload string) error {
	if slot == "" {
		return fmt.Errorf("slot is required")
	}
	row := models.DraftSlot{Slot: slot, Payload: payload}
	// Upsert on the slot key: a save overwrites the previous content unconditionally.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
}

func (r *draftSlotRepository) Delete(ctx context.Context, slot string) error {
	return r.db.WithContext(ctx).Where("slot = ?", slot).Delete(&models.DraftSlot{}).Error
}
