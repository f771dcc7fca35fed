package llm

import (
	"context"

	"github.com/joseph-ayodele/rfp-desk/internal/catalog"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
)

// Prompt is one request to a text-inference provider.
type Prompt struct {
	Name   string         // stage label used in logs (extract, match, price, draft)
	System string         // instructional text
	User   string         // payload text
	Schema map[string]any // output schema; nil for free text
	JSON   bool           // ask the provider for a JSON document
}

// Completer is the provider boundary: one prompt in, raw text out.
// Implementations wrap transport failures with common.ErrProviderUnavailable
// and deadline expiry with common.ErrTimeout.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// RawLine is a pricing line as reported by the provider, before local rules run.
type RawLine struct {
	Description     string  `json:"description"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	TotalPrice      float64 `json:"total_price"`
	DiscountApplied string  `json:"discount_applied,omitempty"`
	PricingLogic    string  `json:"pricing_logic"`
	ProductID       string  `json:"product_id,omitempty"`
	Requirement     string  `json:"requirement,omitempty"`
	ServiceCategory string  `json:"service_category,omitempty"`
}

// RawPricing is the provider's pricing payload. TotalCost is informational only.
type RawPricing struct {
	LineItems []RawLine `json:"line_items"`
	TotalCost float64   `json:"total_cost"`
}

// Gateway exposes the four typed inference calls. Every structured call
// honors a fixed output schema; empty or non-conforming output is an error.
type Gateway interface {
	Extract(ctx context.Context, text string) (entity.BidExtract, error)
	Match(ctx context.Context, requirements []string, cat *catalog.Catalog) ([]entity.MatchedItem, error)
	Price(ctx context.Context, matches []entity.MatchedItem, cat *catalog.Catalog) (RawPricing, error)
	Draft(ctx context.Context, bid entity.BidExtract, pricing entity.PricingResult) (string, error)
}
