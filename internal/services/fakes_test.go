package services

import (
	"context"
	"sync"

	"conformly/internal/api"
	"conformly/internal/models"
)

// Function-field fakes for the repository and API interfaces used by the
// service tests.

type slotRepoFake struct {
	mu   sync.Mutex
	rows map[string]string
}

func newSlotRepoFake() *slotRepoFake {
	return &slotRepoFake{rows: make(map[string]string)}
}

func (f *slotRepoFake) Get(ctx context.Context, slot string) (*models.DraftSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.rows[slot]
	if !ok {
		return nil, nil
	}
	return &models.DraftSlot{Slot: slot, Payload: payload}, nil
}

func (f *slotRepoFake) Put(ctx context.Context, slot, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[slot] = payload
	return nil
}

func (f *slotRepoFake) Delete(ctx context.Context, slot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, slot)
	return nil
}

type docRepoFake struct {
	mu   sync.Mutex
	rows map[string]models.DocumentDraftRecord
}

func newDocRepoFake() *docRepoFake {
	return &docRepoFake{rows: make(map[string]models.DocumentDraftRecord)}
}

func (f *docRepoFake) Get(ctx context.Context, docType string) (*models.DocumentDraftRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.rows[docType]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *docRepoFake) List(ctx context.Context) ([]models.DocumentDraftRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.DocumentDraftRecord, 0, len(f.rows))
	for _, rec := range f.rows {
		out = append(out, rec)
	}
	return out, nil
}

func (f *docRepoFake) Upsert(ctx context.Context, record *models.DocumentDraftRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[record.DocType] = *record
	return nil
}

func (f *docRepoFake) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = make(map[string]models.DocumentDraftRecord)
	return nil
}

type systemCreatorFake struct {
	mu         sync.Mutex
	CreateFunc func(ctx context.Context, req api.CreateSystemRequest) (*api.CreateSystemResponse, error)
	calls      []api.CreateSystemRequest
}

func (f *systemCreatorFake) CreateSystem(ctx context.Context, req api.CreateSystemRequest) (*api.CreateSystemResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.CreateFunc(ctx, req)
}

func (f *systemCreatorFake) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type generatorFake struct {
	mu           sync.Mutex
	GenerateFunc func(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error)
	calledWith   []int64
}

func (f *generatorFake) GenerateDocuments(ctx context.Context, systemID int64, genCtx *api.GenerationContext) (*api.GenerateDocumentsResponse, error) {
	f.mu.Lock()
	f.calledWith = append(f.calledWith, systemID)
	f.mu.Unlock()
	return f.GenerateFunc(ctx, systemID, genCtx)
}

func (f *generatorFake) calls() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.calledWith...)
}

type draftGeneratorFake struct {
	GenerateDraftFunc  func(ctx context.Context, req api.DraftRequest) ([]models.ComplianceDocumentDraft, error)
	ExportDocumentFunc func(ctx context.Context, docType models.DocType, format string) ([]byte, error)
}

func (f *draftGeneratorFake) GenerateDraft(ctx context.Context, req api.DraftRequest) ([]models.ComplianceDocumentDraft, error) {
	return f.GenerateDraftFunc(ctx, req)
}

func (f *draftGeneratorFake) ExportDocument(ctx context.Context, docType models.DocType, format string) ([]byte, error) {
	return f.ExportDocumentFunc(ctx, docType, format)
}
