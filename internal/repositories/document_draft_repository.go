package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"conformly/internal/models"
)

type DocumentDraftRepository interface {
	Get(ctx context.Context, docType string) (*models.DocumentDraftRecord, error)
	List(ctx context.Context) ([]models.DocumentDraftRecord, error)
	Upsert(ctx context.Context, record *models.DocumentDraftRecord) error
	DeleteAll(ctx context.Context) error
}

type documentDraftRepository struct {
	db *gorm.DB
}

func NewDocumentDraftRepository(db *gorm.DB) DocumentDraftRepository {
	return &documentDraftRepository{db: db}
}

func (r *documentDraftRepository) Get(ctx context.Context, docType string) (*models.DocumentDraftRecord, error) {
	var rec models.DocumentDraftRecord
	res := r.db.WithContext(ctx).Where("doc_type = ?", docType).Take(&rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &rec, nil
}

func (r *documentDraftRepository) List(ctx context.Context) ([]models.DocumentDraftRecord, error) {
	var recs []models.DocumentDraftRecord
	if err := r.db.WithContext(ctx).Order("doc_type asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *documentDraftRepository) Upsert(ctx context.Context, record *models.DocumentDraftRecord) error {
	if record == nil || record.DocType == "" {
		return fmt.Errorf("doc type is required")
	}
	// Last write wins per doc type.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "coverage", "updated_at"}),
	}).Create(record).Error
}

func (r *documentDraftRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.DocumentDraftRecord{}).Error
}
