package entity

import (
	"strings"

	"github.com/joseph-ayodele/rfp-desk/constants"
)

// BidExtract is the structured metadata identified from a procurement request.
// It is created once per run and treated as immutable afterwards.
type BidExtract struct {
	ClientName         string   `json:"client_name"`
	SubmissionDeadline string   `json:"submission_deadline"`
	ContactEmail       string   `json:"contact_email"`
	Requirements       []string `json:"product_requirements"`
	PriorityScore      int      `json:"priority_score"`
}

// Normalize trims fields, drops blank requirements, applies the placeholder
// contact address and clamps the priority score into 1..100.
func (b BidExtract) Normalize() BidExtract {
	out := BidExtract{
		ClientName:         strings.TrimSpace(b.ClientName),
		SubmissionDeadline: strings.TrimSpace(b.SubmissionDeadline),
		ContactEmail:       strings.TrimSpace(b.ContactEmail),
		PriorityScore:      b.PriorityScore,
	}
	if out.ContactEmail == "" {
		out.ContactEmail = constants.FallbackContactEmail
	}
	out.Requirements = make([]string, 0, len(b.Requirements))
	for _, r := range b.Requirements {
		if r = strings.TrimSpace(r); r != "" {
			out.Requirements = append(out.Requirements, r)
		}
	}
	switch {
	case out.PriorityScore < constants.MinPriorityScore:
		out.PriorityScore = constants.MinPriorityScore
	case out.PriorityScore > constants.MaxPriorityScore:
		out.PriorityScore = constants.MaxPriorityScore
	}
	return out
}

// Clone returns a deep copy so snapshots never share the requirement slice.
func (b BidExtract) Clone() BidExtract {
	b.Requirements = append([]string(nil), b.Requirements...)
	return b
}
