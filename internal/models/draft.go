package models

import "fmt"

// DocType identifies one generated compliance document kind.
type DocType string

const (
	DocAnnexIV      DocType = "annex_iv"
	DocFRIA         DocType = "fria"
	DocPMM          DocType = "pmm"
	DocSoA          DocType = "soa"
	DocRiskRegister DocType = "risk_register"
)

// ExportFormats the remote API can render a document into.
const (
	FormatMarkdown = "md"
	FormatDocx     = "docx"
	FormatPDF      = "pdf"
)

// Citation describes one evidence reference embedded in paragraph text as the
// literal marker "[<evidenceId>:<page>]".
type Citation struct {
	EvidenceID int64  `json:"evidence_id"`
	Page       int    `json:"page"`
	Checksum   string `json:"checksum,omitempty"`
}

// Marker returns the literal marker string this citation produces in text.
func (c Citation) Marker() string {
	return fmt.Sprintf("[%d:%d]", c.EvidenceID, c.Page)
}

// Paragraph is generated text plus the citations backing it. Every entry in
// Citations is expected to have its marker literally present in Text; markers
// with no matching entry are left as plain text by the linkifier.
type Paragraph struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

// Section is one titled block of a compliance document draft.
type Section struct {
	Key        string      `json:"key"`
	Coverage   float64     `json:"coverage"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// ComplianceDocumentDraft is a generated document body. Coverage and Missing
// are computed by the remote API and stored as-is; a regeneration replaces the
// whole draft for its DocType.
type ComplianceDocumentDraft struct {
	DocType  DocType   `json:"doc_type"`
	Coverage float64   `json:"coverage"`
	Sections []Section `json:"sections"`
	Missing  []string  `json:"missing,omitempty"`
}
