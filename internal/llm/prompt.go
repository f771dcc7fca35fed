package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/catalog"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
)

const maxRFPPromptChars = 12000

// BuildExtractPrompt asks for the bid metadata of a raw RFP text.
func BuildExtractPrompt(rfpText string) Prompt {
	text := strings.TrimSpace(rfpText)
	if len(text) > maxRFPPromptChars {
		text = text[:maxRFPPromptChars] + "\n…(truncated)"
	}
	sys := strings.Join([]string{
		"You are a bid desk analyst. Analyze the RFP text and extract key details.",
		"Return ONLY JSON that matches the provided JSON Schema.",
		"List every product requirement and every service or compliance constraint as its own entry in 'product_requirements', verbatim where possible.",
		"'priority_score' is an integer from 1 to 100 based on urgency and value.",
		"If the contact email is missing, STRICTLY return '" + constants.FallbackContactEmail + "'.",
		"Never output null. If a field is not present, omit it.",
	}, " ")
	return Prompt{
		Name:   SchemaExtract,
		System: sys,
		User:   "RFP Text:\n" + text,
		Schema: BuildExtractJSONSchema(),
		JSON:   true,
	}
}

type catalogEntry struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	UnitPrice float64  `json:"unit_price,omitempty"`
	Specs     []string `json:"specs,omitempty"`
}

func catalogContext(cat *catalog.Catalog, withPrice, withSpecs bool) string {
	products := cat.Products()
	out := make([]catalogEntry, 0, len(products))
	for _, p := range products {
		e := catalogEntry{ID: p.ID, Name: p.Name, Category: string(p.Category)}
		if withPrice {
			e.UnitPrice = p.UnitPrice
		}
		if withSpecs {
			e.Specs = p.Specs
		}
		out = append(out, e)
	}
	return mustJSON(out)
}

// BuildMatchPrompt maps all requirements onto the catalog in one batched request.
func BuildMatchPrompt(requirements []string, cat *catalog.Catalog) Prompt {
	sys := strings.Join([]string{
		"You are a technical sales engineer. Map each requirement to catalog products.",
		"Return ONLY JSON that matches the provided JSON Schema, with one entry in 'matches' per input requirement, in input order, echoing the requirement text.",
		fmt.Sprintf("For each product requirement provide up to %d recommendations ranked 1..%d from the catalog, each with a 'spec_match_score' from 0 to 100 based on feature overlap.", constants.MaxRecommendations, constants.MaxRecommendations),
		"If the requirement is a service or constraint (delivery, certification, support, warranty, administration), return an empty 'recommendations' array.",
		fmt.Sprintf("Estimate 'estimated_quantity' from the text; default to %d.", constants.DefaultQuantity),
		"Only use product ids that appear in the catalog.",
	}, " ")
	var b strings.Builder
	b.WriteString("CATALOG:\n")
	b.WriteString(catalogContext(cat, false, true))
	b.WriteString("\n\nINPUT REQUIREMENTS:\n")
	b.WriteString(mustJSON(requirements))
	return Prompt{
		Name:   SchemaMatch,
		System: sys,
		User:   b.String(),
		Schema: BuildMatchJSONSchema(),
		JSON:   true,
	}
}

// BuildPricePrompt asks for a priced quote of the validated matches.
func BuildPricePrompt(matches []entity.MatchedItem, cat *catalog.Catalog) Prompt {
	sys := strings.Join([]string{
		"You are a senior pricing analyst. Price the matched requirements against the product catalog.",
		"Return ONLY JSON that matches the provided JSON Schema.",
		"Physical products: find 'product_id' in the catalog, echo it in 'product_id', and compute unit price times quantity.",
		fmt.Sprintf("If quantity exceeds %d apply a %d%% discount and describe it in 'discount_applied'.", constants.BulkDiscountThreshold, int(constants.BulkDiscountRate*100)),
		"Services and constraints (items with no product_id): you MUST generate one billable line per item, echo its text in 'requirement', set 'service_category' to one of " + strings.Join(ServiceCategories, ", ") + ", and estimate a realistic market price.",
		"Reference market rates: delivery/logistics ~2500, compliance/certification ~750, technical support ~1500, extended warranty ~1000, admin/processing ~500.",
		"Explain every price briefly in 'pricing_logic'.",
	}, " ")
	var b strings.Builder
	b.WriteString("REFERENCE DATA (Product Catalog):\n")
	b.WriteString(catalogContext(cat, true, false))
	b.WriteString("\n\nMATCHED REQUIREMENTS TO PRICE:\n")
	b.WriteString(mustJSON(matches))
	return Prompt{
		Name:   SchemaPrice,
		System: sys,
		User:   b.String(),
		Schema: BuildPriceJSONSchema(),
		JSON:   true,
	}
}

// BuildDraftPrompt asks for a plain-text response email.
func BuildDraftPrompt(bid entity.BidExtract, pricing entity.PricingResult) Prompt {
	descs := make([]string, 0, len(pricing.LineItems))
	for _, li := range pricing.LineItems {
		descs = append(descs, li.Description)
	}
	sys := "Write a professional business response email (plain text, no HTML). " +
		"Tone: professional, concise, action-oriented. Include the subject line at the top."
	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s\n", bid.ClientName)
	fmt.Fprintf(&b, "Deadline: %s\n", bid.SubmissionDeadline)
	fmt.Fprintf(&b, "Contact: %s\n\n", bid.ContactEmail)
	b.WriteString("Quote Details:\n")
	if pricing.Degraded {
		b.WriteString("Total Cost: pending internal review (pricing unavailable). Do not state a price.\n")
	} else {
		fmt.Fprintf(&b, "Total Cost: $%.2f\n", pricing.TotalCost)
	}
	fmt.Fprintf(&b, "Items: %s\n", mustJSON(descs))
	return Prompt{Name: "draft", System: sys, User: b.String()}
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
