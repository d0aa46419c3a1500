package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"conformly/internal/models"
	"conformly/internal/repositories"
)

// sessionSlotKey is the fixed key for the single onboarding draft slot.
const sessionSlotKey = "onboarding:session"

// DraftStoreService persists the one in-progress onboarding session. Save
// overwrites the slot wholesale; Load returns nil (not an error) when the slot
// is missing or its payload cannot be parsed.
type DraftStoreService interface {
	Save(ctx context.Context, session *models.OnboardingSession) error
	Load(ctx context.Context) (*models.OnboardingSession, error)
	Clear(ctx context.Context) error
}

type draftStoreService struct {
	slots repositories.DraftSlotRepository
	log   *zap.Logger
}

func NewDraftStoreService(slots repositories.DraftSlotRepository, log *zap.Logger) DraftStoreService {
	return &draftStoreService{slots: slots, log: log}
}

func (s *draftStoreService) Save(ctx context.Context, session *models.OnboardingSession) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}
	return s.slots.Put(ctx, sessionSlotKey, string(payload))
}

func (s *draftStoreService) Load(ctx context.Context) (*models.OnboardingSession, error) {
	row, err := s.slots.Get(ctx, sessionSlotKey)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	var session models.OnboardingSession
	if err := json.Unmarshal([]byte(row.Payload), &session); err != nil {
		// A corrupt draft is treated as no draft at all.
		s.log.Warn("discarding unparseable onboarding draft", zap.Error(err))
		return nil, nil
	}
	if session.CurrentStep < models.StepFirst || session.CurrentStep > models.StepLast {
		s.log.Warn("discarding onboarding draft with out-of-range step", zap.Int("step", session.CurrentStep))
		return nil, nil
	}
	return &session, nil
}

func (s *draftStoreService) Clear(ctx context.Context) error {
	return s.slots.Delete(ctx, sessionSlotKey)
}
