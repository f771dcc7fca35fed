// Package guardrail caps provider confidence for requirements that are too
// vague to price or fulfil reliably.
package guardrail

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
	"github.com/joseph-ayodele/rfp-desk/internal/events"
)

var (
	weakTerms     = []string{"stuff", "cheap", "shiny", "liquid", "finish", "paint", "some"}
	specificTerms = []string{"emulsion", "primer", "enamel", "proof"}
)

func normalize(requirement string) string {
	return strings.ToLower(strings.TrimSpace(requirement))
}

// IsVague reports whether the requirement names a generic term and no specific one.
func IsVague(requirement string) bool {
	req := normalize(requirement)
	if !containsAny(req, weakTerms) {
		return false
	}
	return !containsAny(req, specificTerms)
}

// IsTooShort reports whether the normalized requirement is under the minimum length.
func IsTooShort(requirement string) bool {
	return utf8.RuneCountInString(normalize(requirement)) < constants.GuardrailMinLength
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// FlagReason is the reasoning text written onto capped recommendations.
func FlagReason(requirement string) string {
	return fmt.Sprintf("FLAGGED: Input %q is too vague. Lacks technical specifications (Emulsion/Enamel/Grade/Usage).", requirement)
}

// Validate returns a guarded copy of item and whether the guardrail fired.
// The input is never modified. Out-of-range scores are clamped into 0..100.
func Validate(item entity.MatchedItem, em events.Emitter) (entity.MatchedItem, bool) {
	out := item.Clone()
	for i := range out.Recommendations {
		out.Recommendations[i].SpecMatchScore = clampScore(out.Recommendations[i].SpecMatchScore)
	}

	flagged := len(out.Recommendations) > 0 && (IsTooShort(out.Requirement) || IsVague(out.Requirement))
	if flagged {
		em.Warning(fmt.Sprintf("Guardrail Triggered: Input %q is too vague. Capping score.", out.Requirement))
		reason := FlagReason(out.Requirement)
		for i := range out.Recommendations {
			r := &out.Recommendations[i]
			r.SpecMatchScore = min(r.SpecMatchScore, constants.GuardrailScoreCap)
			r.Reasoning = reason
		}
	}

	out.SortRecommendations()
	out.DeriveTop()
	if flagged {
		for i := range out.Recommendations {
			out.Recommendations[i].Confidence = constants.GuardrailConfidence
		}
		out.Confidence = constants.GuardrailConfidence
	}

	switch {
	case out.IsService():
		em.Info(fmt.Sprintf("Identified Service/Constraint: %s...", truncate(out.Requirement, 20)))
	case out.SpecMatchScore < constants.LowConfidenceMatchScore:
		em.Warning(fmt.Sprintf("Matched (Low Confidence): %s... -> %s (%d%%)", truncate(out.Requirement, 15), out.ProductName, out.SpecMatchScore))
	default:
		em.Success(fmt.Sprintf("Matched: %s... -> %s (%d%%)", truncate(out.Requirement, 15), out.ProductName, out.SpecMatchScore))
	}
	return out, flagged
}

// ValidateAll guards a whole batch in order, emitting under the matching stage.
func ValidateAll(items []entity.MatchedItem, sink events.Sink) []entity.MatchedItem {
	em := events.For(sink, constants.StageMatching)
	out := make([]entity.MatchedItem, 0, len(items))
	for _, it := range items {
		guarded, _ := Validate(it, em)
		out = append(out, guarded)
	}
	return out
}

func clampScore(s int) int {
	return max(0, min(s, 100))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
