package pricing

import (
	"strings"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/catalog"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
)

type labFee struct {
	test  string
	price float64
	note  string
}

type labRule struct {
	applies func(catalog.Product) bool
	fees    []labFee
}

// Rules apply independently; a product can match several.
var labRules = []labRule{
	{
		applies: func(p catalog.Product) bool { return p.Category == constants.Exterior },
		fees: []labFee{
			{test: "UV Resistance Test", price: 150, note: "Mandatory for Exterior"},
			{test: "Algal Resistance Test", price: 200, note: "Mandatory for Exterior"},
		},
	},
	{
		applies: func(p catalog.Product) bool { return p.Category == constants.Interior },
		fees: []labFee{
			{test: "Washability Test", price: 100, note: "Mandatory for Interior"},
			{test: "VOC Compliance Check", price: 300, note: "Safety Standard"},
		},
	},
	{
		applies: func(p catalog.Product) bool {
			return p.Category == constants.Industrial || strings.Contains(strings.ToLower(p.Name), "floor")
		},
		fees: []labFee{
			{test: "Abrasion Resistance Test", price: 250, note: "Durability Standard"},
		},
	},
}

// LabFeesFor returns the mandatory lab-testing lines for one product occurrence.
func LabFeesFor(p catalog.Product) []entity.PricingLineItem {
	var out []entity.PricingLineItem
	for _, rule := range labRules {
		if !rule.applies(p) {
			continue
		}
		for _, f := range rule.fees {
			out = append(out, entity.PricingLineItem{
				Description: "QA Lab: " + f.test + " (" + p.Name + ")",
				Quantity:    1,
				UnitPrice:   f.price,
				Total:       f.price,
				Note:        f.note,
				Kind:        constants.LineKindLabFee,
				ProductID:   p.ID,
			})
		}
	}
	return out
}

// FeeScope selects which products of a matched item carry lab fees.
type FeeScope int

const (
	// FeeScopeAllRecommended charges every recommended product of the item.
	FeeScopeAllRecommended FeeScope = iota
	// FeeScopeResolved charges the item's resolved (rank 1) product only.
	FeeScopeResolved
)

// ParseFeeScope maps "resolved" to FeeScopeResolved and anything else to FeeScopeAllRecommended.
func ParseFeeScope(s string) FeeScope {
	if strings.EqualFold(strings.TrimSpace(s), "resolved") {
		return FeeScopeResolved
	}
	return FeeScopeAllRecommended
}

// LabFees runs the fee layer over every matched item that resolves to a catalog
// product. Fees are additive per occurrence and never deduplicated.
func LabFees(matches []entity.MatchedItem, cat *catalog.Catalog, scope FeeScope) []entity.PricingLineItem {
	var out []entity.PricingLineItem
	for _, m := range matches {
		for _, id := range feeProducts(m, scope) {
			p, ok := cat.Lookup(id)
			if !ok {
				continue
			}
			out = append(out, LabFeesFor(p)...)
		}
	}
	return out
}

func feeProducts(m entity.MatchedItem, scope FeeScope) []string {
	if scope == FeeScopeAllRecommended {
		ids := make([]string, 0, len(m.Recommendations))
		for _, r := range m.Recommendations {
			ids = append(ids, r.ProductID)
		}
		return ids
	}
	if m.ProductID == "" {
		return nil
	}
	return []string{m.ProductID}
}
