// Package citations rewrites evidence-citation markers embedded in generated
// paragraph text into addressable references.
package citations

import (
	"fmt"
	"strings"

	"conformly/internal/models"
)

// Reference renders the interactive replacement for one citation: a link into
// the evidence viewer at (evidenceId, page).
func Reference(c models.Citation) string {
	return fmt.Sprintf("[evidence %d, p. %d](evidence://%d/%d)", c.EvidenceID, c.Page, c.EvidenceID, c.Page)
}

// Linkify returns render-ready text for a paragraph. Citations are consumed in
// list order; each replaces the first remaining literal occurrence of its
// marker "[<evidenceId>:<page>]". Markers with no matching citation entry are
// left as plain text, and text outside markers is never modified.
//
// When two citation entries produce the identical marker literal, occurrences
// are consumed one-for-one in order; no attempt is made to match a specific
// occurrence to a specific entry.
func Linkify(p models.Paragraph) string {
	text := p.Text
	for _, c := range p.Citations {
		text = strings.Replace(text, c.Marker(), Reference(c), 1)
	}
	return text
}
