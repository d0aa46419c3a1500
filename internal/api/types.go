package api

import "conformly/internal/models"

// Generation call statuses returned by the platform.
const (
	StatusSuccess             = "success"
	StatusSuccessWithWarnings = "success_with_warnings"
)

// CreateSystemRequest registers one declared AI system with the platform.
type CreateSystemRequest struct {
	Name         string `json:"name"`
	Purpose      string `json:"purpose"`
	Domain       string `json:"domain,omitempty"`
	RiskCategory string `json:"risk_category,omitempty"`
	OwnerEmail   string `json:"owner_email,omitempty"`
}

// CreateSystemResponse carries the server-assigned system id. Extra fields in
// the payload are ignored; the id is the only thing the client binds to.
type CreateSystemResponse struct {
	ID int64 `json:"id"`
}

// GenerationContext forwards the onboarding answers as context for document
// generation. All fields are optional and passed through opaquely.
type GenerationContext struct {
	Company    *models.CompanyProfile `json:"company,omitempty"`
	Risks      models.StepPayload     `json:"risks,omitempty"`
	Oversight  models.StepPayload     `json:"oversight,omitempty"`
	Monitoring models.StepPayload     `json:"monitoring,omitempty"`
}

// GenerateDocumentsResponse reports the outcome of a per-system generation run.
type GenerateDocumentsResponse struct {
	Status             string   `json:"status"`
	GeneratedDocuments int      `json:"generated_documents"`
	Warnings           []string `json:"warnings,omitempty"`
}

// DraftRequest asks the platform to render compliance document drafts.
type DraftRequest struct {
	SystemID *int64           `json:"system_id,omitempty"`
	Docs     []models.DocType `json:"docs"`
}

type draftResponse struct {
	Docs []models.ComplianceDocumentDraft `json:"docs"`
}

type demoKeyResponse struct {
	APIKey string `json:"api_key"`
}

type errorResponse struct {
	Error string `json:"error"`
}
