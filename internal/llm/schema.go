package llm

import "github.com/joseph-ayodele/rfp-desk/constants"

// Schema names, also used as jsonschema resource ids.
const (
	SchemaExtract = "extract"
	SchemaMatch   = "match"
	SchemaPrice   = "price"
)

// BuildExtractJSONSchema returns the identification output schema (draft 2020-12 subset).
// contact_email is optional; the caller substitutes the placeholder address.
func BuildExtractJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"client_name":         map[string]any{"type": "string", "minLength": 1},
			"submission_deadline": map[string]any{"type": "string"},
			"contact_email":       map[string]any{"type": "string"},
			"product_requirements": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"priority_score": map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
		},
		"required": []string{"client_name", "submission_deadline", "product_requirements", "priority_score"},
	}
}

// BuildMatchJSONSchema returns the matching output schema. The list is wrapped in
// an object because JSON-mode providers only emit top-level objects.
func BuildMatchJSONSchema() map[string]any {
	rec := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"rank":             map[string]any{"type": "integer", "minimum": 1, "maximum": constants.MaxRecommendations},
			"product_id":       map[string]any{"type": "string", "minLength": 1},
			"product_name":     map[string]any{"type": "string"},
			"spec_match_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"reasoning":        map[string]any{"type": "string"},
		},
		"required": []string{"rank", "product_id", "product_name", "spec_match_score", "reasoning"},
	}
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"requirement": map[string]any{"type": "string", "minLength": 1},
			"recommendations": map[string]any{
				"type":     "array",
				"items":    rec,
				"maxItems": constants.MaxRecommendations,
			},
			"estimated_quantity": map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []string{"requirement", "recommendations"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"matches": map[string]any{"type": "array", "items": item},
		},
		"required": []string{"matches"},
	}
}

// BuildPriceJSONSchema returns the pricing output schema.
func BuildPriceJSONSchema() map[string]any {
	line := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description":      map[string]any{"type": "string", "minLength": 1},
			"quantity":         map[string]any{"type": "integer", "minimum": 0},
			"unit_price":       map[string]any{"type": "number", "minimum": 0},
			"total_price":      map[string]any{"type": "number"},
			"discount_applied": map[string]any{"type": "string"},
			"pricing_logic":    map[string]any{"type": "string"},
			"product_id":       map[string]any{"type": "string"},
			"requirement":      map[string]any{"type": "string"},
			"service_category": map[string]any{"type": "string", "enum": serviceCategoryEnum()},
		},
		"required": []string{"description", "quantity", "unit_price", "total_price", "pricing_logic"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"line_items": map[string]any{"type": "array", "items": line},
			"total_cost": map[string]any{"type": "number"},
		},
		"required": []string{"line_items", "total_cost"},
	}
}

// ServiceCategories lists the recognized constraint categories in prompt order.
var ServiceCategories = []string{"delivery", "compliance", "support", "warranty", "admin"}

func serviceCategoryEnum() []string {
	out := make([]string, len(ServiceCategories))
	copy(out, ServiceCategories)
	return out
}

// optionalFields lists, per schema, the keys sanitize may drop when present but empty.
var optionalFields = map[string][]string{
	SchemaExtract: {"contact_email"},
	SchemaMatch:   {"estimated_quantity"},
	SchemaPrice:   {"discount_applied", "product_id", "requirement", "service_category"},
}
