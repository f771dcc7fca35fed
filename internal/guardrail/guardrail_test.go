package guardrail

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
	"github.com/joseph-ayodele/rfp-desk/internal/events"
)

func item(req string, recs ...entity.Recommendation) entity.MatchedItem {
	return entity.MatchedItem{Requirement: req, EstimatedQuantity: 100, Recommendations: recs}
}

func rec(rank int, id string, score int) entity.Recommendation {
	return entity.Recommendation{Rank: rank, ProductID: id, ProductName: "Product " + id, SpecMatchScore: score, Reasoning: "looks right"}
}

func TestIsVague(t *testing.T) {
	tests := []struct {
		req  string
		want bool
	}{
		{"some paint", true},
		{"Cheap SHINY stuff for the lobby walls please", true},
		{"5000 Liters of Weather-Proof Exterior Emulsion (White)", false},
		{"200 Liters of Primer (White)", false},
		{"Delivery within 10 days to site", false},
		{"High gloss enamel finish for doors", false},
	}
	for _, tt := range tests {
		if got := IsVague(tt.req); got != tt.want {
			t.Errorf("IsVague(%q) = %v, want %v", tt.req, got, tt.want)
		}
	}
}

func TestIsTooShort(t *testing.T) {
	if !IsTooShort("  Primer  ") {
		t.Error("short requirement not detected")
	}
	if IsTooShort("200 Liters of Primer (White) for hospital walls") {
		t.Error("long requirement flagged")
	}
}

func TestVagueRequirementIsCapped(t *testing.T) {
	sink := events.NewRecorder()
	in := item("some paint", rec(2, "AP-009", 70), rec(1, "AP-001", 95))

	out, flagged := Validate(in, events.For(sink, constants.StageMatching))
	if !flagged {
		t.Fatal("expected guardrail to fire")
	}
	for _, r := range out.Recommendations {
		if r.SpecMatchScore > constants.GuardrailScoreCap {
			t.Errorf("%s score %d exceeds cap", r.ProductID, r.SpecMatchScore)
		}
		if r.Confidence != constants.GuardrailConfidence {
			t.Errorf("%s confidence %v, want %v", r.ProductID, r.Confidence, constants.GuardrailConfidence)
		}
		if !strings.Contains(r.Reasoning, `"some paint"`) || !strings.Contains(r.Reasoning, "FLAGGED") {
			t.Errorf("reasoning not overwritten: %q", r.Reasoning)
		}
	}
	if out.ProductID != "AP-001" || out.SpecMatchScore != 55 || out.Confidence != constants.GuardrailConfidence {
		t.Errorf("top fields not derived from capped rank 1: %+v", out)
	}

	entries := sink.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want trigger + match", len(entries))
	}
	if entries[0].Severity != constants.SeverityWarning || !strings.Contains(entries[0].Message, "Guardrail Triggered") {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Severity != constants.SeverityWarning || !strings.Contains(entries[1].Message, "Low Confidence") {
		t.Errorf("second entry = %+v", entries[1])
	}

	if in.Recommendations[1].SpecMatchScore != 95 {
		t.Error("input item was mutated")
	}
}

func TestCapNeverRaisesScore(t *testing.T) {
	out, _ := Validate(item("cheap stuff", rec(1, "AP-009", 30)), events.Emitter{})
	if out.Recommendations[0].SpecMatchScore != 30 {
		t.Errorf("score = %d, want 30", out.Recommendations[0].SpecMatchScore)
	}
}

func TestSpecificRequirementUntouched(t *testing.T) {
	sink := events.NewRecorder()
	in := item("5000 Liters of Weather-Proof Exterior Emulsion (White)", rec(1, "AP-002", 90), rec(2, "AP-004", 72))

	out, flagged := Validate(in, events.For(sink, constants.StageMatching))
	if flagged {
		t.Fatal("guardrail fired on specific requirement")
	}
	if out.SpecMatchScore != 90 || out.Confidence != 0.9 {
		t.Errorf("top = %d/%v, want 90/0.9", out.SpecMatchScore, out.Confidence)
	}
	for _, r := range out.Recommendations {
		if r.Confidence != float64(r.SpecMatchScore)/100 {
			t.Errorf("%s confidence %v != score/100", r.ProductID, r.Confidence)
		}
		if r.Reasoning != "looks right" {
			t.Errorf("reasoning overwritten: %q", r.Reasoning)
		}
	}
	entries := sink.Entries()
	if len(entries) != 1 || entries[0].Severity != constants.SeveritySuccess {
		t.Errorf("entries = %+v, want one success", entries)
	}
}

func TestServiceItem(t *testing.T) {
	sink := events.NewRecorder()
	out, flagged := Validate(item("Delivery"), events.For(sink, constants.StageMatching))
	if flagged {
		t.Error("service items are never flagged")
	}
	if out.ProductID != "" || out.Confidence != 0 {
		t.Errorf("service item has top fields: %+v", out)
	}
	entries := sink.Entries()
	if len(entries) != 1 || entries[0].Severity != constants.SeverityInfo || !strings.HasPrefix(entries[0].Message, "Identified Service/Constraint") {
		t.Errorf("entries = %+v", entries)
	}
}

func TestSortsByRankAndClampsScores(t *testing.T) {
	in := item("Anti-bacterial interior emulsion for hospital wards",
		rec(3, "AP-009", 40), rec(1, "AP-001", 140), rec(2, "AP-005", -5))
	out, _ := Validate(in, events.Emitter{})
	for i, r := range out.Recommendations {
		if r.Rank != i+1 {
			t.Fatalf("recommendations not sorted: %+v", out.Recommendations)
		}
	}
	if out.Recommendations[0].SpecMatchScore != 100 || out.Recommendations[1].SpecMatchScore != 0 {
		t.Errorf("scores not clamped: %+v", out.Recommendations)
	}
}

func TestValidateAll(t *testing.T) {
	sink := events.NewRecorder()
	in := []entity.MatchedItem{
		item("some paint", rec(1, "AP-009", 88)),
		item("Delivery within 10 days to the site"),
	}
	out := ValidateAll(in, sink)
	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].SpecMatchScore != 55 {
		t.Errorf("score = %d, want 55", out[0].SpecMatchScore)
	}
	for _, e := range sink.Entries() {
		if e.Stage != constants.StageMatching {
			t.Errorf("stage = %s", e.Stage)
		}
	}
	if got := ValidateAll(nil, nil); len(got) != 0 {
		t.Errorf("nil batch = %v", got)
	}
}
