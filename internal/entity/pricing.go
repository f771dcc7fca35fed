package entity

import (
	"math"

	"github.com/joseph-ayodele/rfp-desk/constants"
)

// PricingLineItem is one billable line of a quote.
type PricingLineItem struct {
	Description string             `json:"description"`
	Quantity    int                `json:"quantity"`
	UnitPrice   float64            `json:"unit_price"`
	Total       float64            `json:"total"`
	Note        string             `json:"note,omitempty"`
	Kind        constants.LineKind `json:"kind"`
	ProductID   string             `json:"product_id,omitempty"`
}

// PricingResult is the priced quote. TotalCost always equals the sum of line totals.
type PricingResult struct {
	LineItems []PricingLineItem `json:"line_items"`
	TotalCost float64           `json:"total_cost"`
	// Degraded marks the zero quote returned when the pricing provider failed.
	Degraded bool `json:"degraded,omitempty"`
}

// Sum adds the line totals in whole cents, so the result does not drift with
// the number of lines.
func (p PricingResult) Sum() float64 {
	var cents int64
	for _, li := range p.LineItems {
		cents += Cents(li.Total)
	}
	return float64(cents) / 100
}

// Recompute sets TotalCost from the line items.
func (p *PricingResult) Recompute() {
	p.TotalCost = p.Sum()
}

// Clone returns a deep copy.
func (p PricingResult) Clone() PricingResult {
	p.LineItems = append([]PricingLineItem(nil), p.LineItems...)
	return p
}

// RoundMoney rounds to whole cents, half away from zero.
func RoundMoney(v float64) float64 {
	return float64(Cents(v)) / 100
}

// Cents converts an amount to whole cents, half away from zero.
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}
