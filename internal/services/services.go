package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"conformly/internal/repositories"
)

// Services aggregates the domain services backed by the database.
type Services struct {
	DraftStore DraftStoreService
	Documents  DraftCollectionService
}

// NewServices constructs the service container using repositories backed by db.
func NewServices(db *gorm.DB, apiClient DraftGenerator, log *zap.Logger) *Services {
	slotRepo := repositories.NewDraftSlotRepository(db)
	draftRepo := repositories.NewDocumentDraftRepository(db)

	return &Services{
		DraftStore: NewDraftStoreService(slotRepo, log),
		Documents:  NewDraftCollectionService(draftRepo, apiClient, log),
	}
}
