package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

// Topics emitted by the onboarding and generation flows.
const (
	TopicSystemCreate   = "events:onboarding:system-create"
	TopicGeneration     = "events:generation:system"
	TopicGenerationDone = "events:generation:done"
)

// GenerationEvent is the payload published while the orchestrator works
// through the declared systems.
type GenerationEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	Message       string            `json:"message"`
	SystemLocalID string            `json:"systemLocalId,omitempty"`
	SystemName    string            `json:"systemName,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewGenerationEvent fills in the id and timestamp so call sites stay short.
func NewGenerationEvent(eventType EventType, message string) GenerationEvent {
	return GenerationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
