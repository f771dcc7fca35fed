package llm

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", ` {"a":1} `, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose", "Here you go: {\"a\":1} thanks", `{"a":1}`},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildPriceJSONSchema()
	ok := []byte(`{"line_items":[{"description":"d","quantity":1,"unit_price":2,"total_price":2,"pricing_logic":"x","service_category":"delivery"}],"total_cost":2}`)
	if err := ValidateJSONAgainstSchema(schema, ok); err != nil {
		t.Fatalf("valid doc rejected: %v", err)
	}
	bad := []byte(`{"line_items":[{"description":"d","quantity":1,"unit_price":2,"total_price":2,"pricing_logic":"x","service_category":"catering"}],"total_cost":2}`)
	if err := ValidateJSONAgainstSchema(schema, bad); err == nil {
		t.Fatal("unknown service category accepted")
	}
}

func TestSanitizeOptionalFields(t *testing.T) {
	in := []byte(`{"line_items":[{"description":"12","quantity":"1,200","unit_price":"$4.50","total_price":5400,"pricing_logic":"p","product_id":"","discount_applied":null}],"total_cost":"5400"}`)
	out, dropped, err := SanitizeOptionalFields(SchemaPrice, in)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(dropped) != 2 {
		t.Errorf("dropped = %v, want product_id and discount_applied", dropped)
	}
	var doc struct {
		LineItems []map[string]any `json:"line_items"`
		TotalCost float64          `json:"total_cost"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}
	line := doc.LineItems[0]
	if line["quantity"] != float64(1200) || line["unit_price"] != 4.5 {
		t.Errorf("numeric coercion failed: %v", line)
	}
	if line["description"] != "12" {
		t.Errorf("string field coerced: %v", line["description"])
	}
	if _, ok := line["product_id"]; ok {
		t.Error("empty optional product_id kept")
	}
	if doc.TotalCost != 5400 {
		t.Errorf("total_cost = %v", doc.TotalCost)
	}
	if err := ValidateJSONAgainstSchema(BuildPriceJSONSchema(), out); err != nil {
		t.Errorf("sanitized doc invalid: %v", err)
	}
}

func TestSanitizeKeepsRequiredEmptyStrings(t *testing.T) {
	in := []byte(`{"client_name":"","contact_email":""}`)
	out, dropped, err := SanitizeOptionalFields(SchemaExtract, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 1 || dropped[0] != "contact_email" {
		t.Errorf("dropped = %v", dropped)
	}
	if string(out) != `{"client_name":""}` {
		t.Errorf("out = %s", out)
	}
}
