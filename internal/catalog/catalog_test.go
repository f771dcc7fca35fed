package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/rfp-desk/constants"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() != 10 {
		t.Fatalf("expected 10 products, got %d", c.Len())
	}
	p, ok := c.Lookup("AP-002")
	if !ok {
		t.Fatalf("expected AP-002 to exist")
	}
	if p.Category != constants.Exterior || p.UnitPrice != 650 {
		t.Fatalf("unexpected AP-002: %+v", p)
	}
	if _, ok := c.Lookup("AP-999"); ok {
		t.Fatalf("expected unknown id to miss")
	}
}

func TestNewRejectsDuplicateAndEmptyIDs(t *testing.T) {
	if _, err := New([]Product{{ID: "A"}, {ID: "A"}}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := New([]Product{{ID: "  "}}); err == nil {
		t.Fatalf("expected empty id error")
	}
	if _, err := New([]Product{{ID: "A", UnitPrice: -1}}); err == nil {
		t.Fatalf("expected negative price error")
	}
}

func TestProductsReturnsCopy(t *testing.T) {
	c := Default()
	ps := c.Products()
	ps[0].Name = "mutated"
	if p, _ := c.Lookup(ps[0].ID); p.Name == "mutated" {
		t.Fatalf("Products must not expose internal storage")
	}
}

func TestLoadYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "catalog.yaml")
	yamlDoc := `
products:
  - id: IN-1
    name: Shop Floor Epoxy
    category: industrial
    unit_price: 300
    specs: [Abrasion Resistant]
  - id: EX-1
    name: Facade Shield
    category: Exterior
    unit_price: 500
`
	if err := os.WriteFile(yamlPath, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	c, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	p, ok := c.Lookup("IN-1")
	if !ok || p.Category != constants.Industrial {
		t.Fatalf("expected canonical Industrial category, got %+v", p)
	}

	jsonPath := filepath.Join(dir, "catalog.json")
	jsonDoc := `[{"id":"X-1","name":"X","category":"Primer","unit_price":10,"specs":[]}]`
	if err := os.WriteFile(jsonPath, []byte(jsonDoc), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	c, err = Load(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 product, got %d", c.Len())
	}

	emptyPath := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(emptyPath, []byte("products: []\n"), 0o644); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	if _, err := Load(emptyPath); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}
