package constants

import (
	"strings"
)

// Category is the canonical product family used by the catalog and the lab-fee rules.
type Category string

const (
	Interior      Category = "Interior"
	Exterior      Category = "Exterior"
	WoodFinish    Category = "Wood Finish"
	Primer        Category = "Primer"
	Waterproofing Category = "Waterproofing"
	Industrial    Category = "Industrial"
	Other         Category = "Other"
)

var allCategories = []Category{
	Interior,
	Exterior,
	WoodFinish,
	Primer,
	Waterproofing,
	Industrial,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-form category label onto a known Category.
// The boolean is false when the label fell through to Other.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"interior paint": Interior,
		"exterior paint": Exterior,
		"facade":         Exterior,
		"wood":           WoodFinish,
		"woodfinish":     WoodFinish,
		"wood coating":   WoodFinish,
		"undercoat":      Primer,
		"damp proofing":  Waterproofing,
		"floor coating":  Industrial,
		"flooring":       Industrial,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
