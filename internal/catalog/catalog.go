// Package catalog holds the read-only product reference data used by matching and pricing.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/rfp-desk/constants"
)

// Product is one catalog record. ID is the only stable key between matching and pricing.
type Product struct {
	ID        string             `json:"id" yaml:"id"`
	Name      string             `json:"name" yaml:"name"`
	Category  constants.Category `json:"category" yaml:"category"`
	UnitPrice float64            `json:"unit_price" yaml:"unit_price"`
	Specs     []string           `json:"specs" yaml:"specs"`
}

// Catalog is an ordered, indexed product list. The zero value is empty and usable.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// New validates products and builds the index. IDs must be non-empty and unique.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: product %d has empty id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		if p.UnitPrice < 0 {
			return nil, fmt.Errorf("catalog: product %q has negative unit price", p.ID)
		}
		if canon, ok := constants.Canonicalize(string(p.Category)); ok {
			p.Category = canon
		}
		p.Specs = append([]string(nil), p.Specs...)
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Load reads a catalog file. Files ending in .json are decoded as JSON, anything else as YAML.
// The document is either a bare list of products or an object with a "products" key.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var doc struct {
		Products []Product `json:"products" yaml:"products"`
	}
	var list []Product
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &list); err != nil {
			if err2 := json.Unmarshal(data, &doc); err2 != nil {
				return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
			}
			list = doc.Products
		}
	} else {
		if err := yaml.Unmarshal(data, &list); err != nil {
			if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
				return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
			}
			list = doc.Products
		}
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("catalog: %s contains no products", path)
	}
	return New(list)
}

// Lookup returns the product with the given id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products returns a copy of the catalog in its original order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}
