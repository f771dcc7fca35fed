package catalog

import "github.com/joseph-ayodele/rfp-desk/constants"

var defaultProducts = []Product{
	{ID: "AP-001", Name: "Royale Luxury Emulsion", Category: constants.Interior, UnitPrice: 450, Specs: []string{"Sheen Finish", "Teflon", "Anti-Bacterial"}},
	{ID: "AP-002", Name: "Apex Ultima Protek", Category: constants.Exterior, UnitPrice: 650, Specs: []string{"Lamination Guard", "10-Year Warranty", "Weather-Proof"}},
	{ID: "AP-003", Name: "Apcolite Premium Enamel", Category: constants.WoodFinish, UnitPrice: 380, Specs: []string{"High Gloss", "Stain Resistant"}},
	{ID: "AP-004", Name: "Apex Dust Proof", Category: constants.Exterior, UnitPrice: 550, Specs: []string{"Dust Guard", "Anti-Algal"}},
	{ID: "AP-005", Name: "Royale Aspira", Category: constants.Interior, UnitPrice: 900, Specs: []string{"Gold Standard", "Crack Bridging", "Water Beading"}},
	{ID: "AP-006", Name: "Woodtech PU Luxury", Category: constants.WoodFinish, UnitPrice: 850, Specs: []string{"UV Resistance", "Non-Yellowing"}},
	{ID: "AP-007", Name: "Truegrip Ultra Primer", Category: constants.Primer, UnitPrice: 180, Specs: []string{"Alkali Resistant", "Strong Adhesion"}},
	{ID: "AP-008", Name: "SmartCare Damp Proof", Category: constants.Waterproofing, UnitPrice: 400, Specs: []string{"Fiber Reinforced", "Terrace Waterproofing"}},
	{ID: "AP-009", Name: "Tractor Emulsion", Category: constants.Interior, UnitPrice: 220, Specs: []string{"Smooth Finish", "Affordable"}},
	{ID: "AP-010", Name: "Metropolis Texture", Category: constants.Exterior, UnitPrice: 1200, Specs: []string{"Stone Finish", "Artistic"}},
}

// Default returns the built-in paint catalog.
func Default() *Catalog {
	c, err := New(defaultProducts)
	if err != nil {
		panic(err)
	}
	return c
}
