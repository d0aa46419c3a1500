package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"conformly/internal/api"
	"conformly/internal/models"
	"conformly/internal/repositories"
)

// DraftGenerator is the slice of the compliance API the report suite needs.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, req api.DraftRequest) ([]models.ComplianceDocumentDraft, error)
	ExportDocument(ctx context.Context, docType models.DocType, format string) ([]byte, error)
}

// DraftCollectionService holds the generated compliance document drafts, one
// per doc type. Upsert replaces the draft for its type wholesale and leaves
// every other type untouched; no partial-section merging is attempted. Drafts
// are additionally cached in the database so the report view survives restart.
type DraftCollectionService interface {
	Startup(ctx context.Context) error
	Upsert(ctx context.Context, draft models.ComplianceDocumentDraft) error
	Get(docType models.DocType) *models.ComplianceDocumentDraft
	List() []models.ComplianceDocumentDraft
	Refresh(ctx context.Context, systemID *int64, docs []models.DocType) ([]models.ComplianceDocumentDraft, error)
	Export(ctx context.Context, docType models.DocType, format, dir string) (string, error)
	Clear(ctx context.Context) error
}

type draftCollectionService struct {
	mu      sync.RWMutex
	drafts  map[models.DocType]models.ComplianceDocumentDraft
	records repositories.DocumentDraftRepository
	api     DraftGenerator
	log     *zap.Logger
}

func NewDraftCollectionService(records repositories.DocumentDraftRepository, apiClient DraftGenerator, log *zap.Logger) DraftCollectionService {
	return &draftCollectionService{
		drafts:  make(map[models.DocType]models.ComplianceDocumentDraft),
		records: records,
		api:     apiClient,
		log:     log,
	}
}

// Startup loads previously cached drafts into memory. A record that no longer
// parses is skipped, not fatal.
func (s *draftCollectionService) Startup(ctx context.Context) error {
	recs, err := s.records.List(ctx)
	if err != nil {
		return fmt.Errorf("load cached drafts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		var draft models.ComplianceDocumentDraft
		if err := json.Unmarshal([]byte(rec.Payload), &draft); err != nil {
			s.log.Warn("skipping unparseable cached draft", zap.String("docType", rec.DocType), zap.Error(err))
			continue
		}
		s.drafts[draft.DocType] = draft
	}
	return nil
}

func (s *draftCollectionService) Upsert(ctx context.Context, draft models.ComplianceDocumentDraft) error {
	if draft.DocType == "" {
		return fmt.Errorf("doc type is required")
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("serialize draft: %w", err)
	}

	s.mu.Lock()
	s.drafts[draft.DocType] = draft
	s.mu.Unlock()

	return s.records.Upsert(ctx, &models.DocumentDraftRecord{
		DocType:  string(draft.DocType),
		Payload:  string(payload),
		Coverage: draft.Coverage,
	})
}

func (s *draftCollectionService) Get(docType models.DocType) *models.ComplianceDocumentDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[docType]
	if !ok {
		return nil
	}
	return &draft
}

func (s *draftCollectionService) List() []models.ComplianceDocumentDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ComplianceDocumentDraft, 0, len(s.drafts))
	for _, draft := range s.drafts {
		out = append(out, draft)
	}
	return out
}

// Refresh regenerates the requested doc types and replaces their drafts.
// Doc types not in the request are left untouched.
func (s *draftCollectionService) Refresh(ctx context.Context, systemID *int64, docs []models.DocType) ([]models.ComplianceDocumentDraft, error) {
	drafts, err := s.api.GenerateDraft(ctx, api.DraftRequest{SystemID: systemID, Docs: docs})
	if err != nil {
		return nil, err
	}
	for _, draft := range drafts {
		if err := s.Upsert(ctx, draft); err != nil {
			return nil, err
		}
	}
	return drafts, nil
}

// Export downloads one rendered document and writes it under dir with the
// derived filename "<docType>.<format>". The file is only written once the
// whole body has been received, so a failed export leaves nothing behind.
func (s *draftCollectionService) Export(ctx context.Context, docType models.DocType, format, dir string) (string, error) {
	switch format {
	case models.FormatMarkdown, models.FormatDocx, models.FormatPDF:
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	blob, err := s.api.ExportDocument(ctx, docType, format)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", docType, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.%s", docType, format))
	if err := os.WriteFile(path, blob, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (s *draftCollectionService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.drafts = make(map[models.DocType]models.ComplianceDocumentDraft)
	s.mu.Unlock()
	return s.records.DeleteAll(ctx)
}
