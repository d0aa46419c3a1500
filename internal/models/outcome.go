package models

// OutcomeStatus classifies what happened to one system during generation.
type OutcomeStatus string

const (
	OutcomeCreated            OutcomeStatus = "created"
	OutcomeCreationFailed     OutcomeStatus = "creation_failed"
	OutcomeDocumentsGenerated OutcomeStatus = "documents_generated"
	OutcomeGenerationFailed   OutcomeStatus = "generation_failed"
)

// GenerationOutcome is the per-system result of the document-generation fan-out.
type GenerationOutcome struct {
	SystemLocalID      string        `json:"systemLocalId"`
	SystemName         string        `json:"systemName"`
	Status             OutcomeStatus `json:"status"`
	GeneratedDocuments int           `json:"generatedDocuments"`
	Detail             string        `json:"detail"`
}

// GenerationReport aggregates one outcome per declared system. Success is true
// iff at least one system produced documents_generated with a positive count.
type GenerationReport struct {
	Outcomes []GenerationOutcome `json:"outcomes"`
	Success  bool                `json:"success"`
}
