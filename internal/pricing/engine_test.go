package pricing

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/catalog"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
	"github.com/joseph-ayodele/rfp-desk/internal/events"
	"github.com/joseph-ayodele/rfp-desk/internal/llm"
)

type fakePricer struct {
	out   llm.RawPricing
	err   error
	calls int
}

func (f *fakePricer) Price(context.Context, []entity.MatchedItem, *catalog.Catalog) (llm.RawPricing, error) {
	f.calls++
	return f.out, f.err
}

func newEngine(p Pricer, opts ...Option) *Engine {
	opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return NewEngine(p, catalog.Default(), opts...)
}

func productItem(req, id string, qty int, extra ...entity.Recommendation) entity.MatchedItem {
	m := entity.MatchedItem{
		Requirement:       req,
		EstimatedQuantity: qty,
		Recommendations:   append([]entity.Recommendation{{Rank: 1, ProductID: id, SpecMatchScore: 90}}, extra...),
	}
	m.DeriveTop()
	return m
}

func serviceItem(req string) entity.MatchedItem {
	return entity.MatchedItem{Requirement: req, EstimatedQuantity: 100, Recommendations: []entity.Recommendation{}}
}

func linesOfKind(res entity.PricingResult, kind constants.LineKind) []entity.PricingLineItem {
	var out []entity.PricingLineItem
	for _, li := range res.LineItems {
		if li.Kind == kind {
			out = append(out, li)
		}
	}
	return out
}

func assertSumInvariant(t *testing.T, res entity.PricingResult) {
	t.Helper()
	var sum float64
	for _, li := range res.LineItems {
		sum += li.Total
	}
	if entity.RoundMoney(sum) != res.TotalCost {
		t.Fatalf("total_cost %v != sum of lines %v", res.TotalCost, sum)
	}
}

func TestCatalogLineDiscount(t *testing.T) {
	p, _ := catalog.Default().Lookup("AP-002") // 650

	tests := []struct {
		qty       int
		wantTotal float64
		discount  bool
	}{
		{qty: 1000, wantTotal: 650000, discount: false},
		{qty: 1001, wantTotal: 553052.5, discount: true},
		{qty: 5000, wantTotal: 2762500, discount: true},
		{qty: 1, wantTotal: 650, discount: false},
	}
	for _, tt := range tests {
		li := CatalogLine(p, tt.qty, p.Name, "catalog price")
		if li.Total != tt.wantTotal {
			t.Errorf("qty %d: total = %v, want %v", tt.qty, li.Total, tt.wantTotal)
		}
		hasNote := strings.Contains(li.Note, "discount")
		if hasNote != tt.discount {
			t.Errorf("qty %d: note = %q, discount expected %v", tt.qty, li.Note, tt.discount)
		}
		gross := float64(tt.qty) * li.UnitPrice
		if tt.discount && li.Total >= gross {
			t.Errorf("qty %d: discounted total %v not below gross %v", tt.qty, li.Total, gross)
		}
		if !tt.discount && li.Total != gross {
			t.Errorf("qty %d: total %v != gross %v", tt.qty, li.Total, gross)
		}
	}
}

func TestCalculateUsesCatalogPriceAndAddsExteriorFees(t *testing.T) {
	pricer := &fakePricer{out: llm.RawPricing{
		LineItems: []llm.RawLine{{
			Description: "Apex Ultima Protek", Quantity: 5000, UnitPrice: 1, TotalPrice: 5000,
			PricingLogic: "catalog", ProductID: "AP-002",
		}},
		TotalCost: 5000,
	}}
	sink := events.NewRecorder()
	matches := []entity.MatchedItem{
		productItem("5000 Liters of Weather-Proof Exterior Emulsion (White)", "AP-002", 5000),
	}

	res := newEngine(pricer).Calculate(context.Background(), matches, sink)
	if res.Degraded {
		t.Fatal("unexpected degraded result")
	}
	cat := linesOfKind(res, constants.LineKindCatalog)
	if len(cat) != 1 || cat[0].UnitPrice != 650 || cat[0].Total != 2762500 {
		t.Fatalf("catalog lines = %+v", cat)
	}
	fees := linesOfKind(res, constants.LineKindLabFee)
	if len(fees) != 2 || fees[0].Total != 150 || fees[1].Total != 200 {
		t.Fatalf("lab fees = %+v", fees)
	}
	if res.TotalCost != 2762500+350 {
		t.Errorf("total = %v", res.TotalCost)
	}
	assertSumInvariant(t, res)

	var sawFees bool
	for _, e := range sink.Entries() {
		if e.Stage != constants.StagePricing {
			t.Errorf("stage = %s", e.Stage)
		}
		if strings.Contains(e.Message, "Applying 2 mandatory Lab Testing Fees") {
			sawFees = true
		}
	}
	if !sawFees {
		t.Error("lab fee entry missing")
	}
}

func TestLabFeeRules(t *testing.T) {
	industrial := []catalog.Product{
		{ID: "IND-1", Name: "Epoxy Shield", Category: constants.Industrial, UnitPrice: 10},
		{ID: "FLR-1", Name: "Interior Floor Guard", Category: constants.Interior, UnitPrice: 10},
		{ID: "PRM-1", Name: "Base Coat", Category: constants.Primer, UnitPrice: 10},
	}
	cat, err := catalog.New(industrial)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id     string
		totals []float64
	}{
		{"IND-1", []float64{250}},
		{"FLR-1", []float64{100, 300, 250}},
		{"PRM-1", nil},
	}
	for _, tt := range tests {
		p, _ := cat.Lookup(tt.id)
		fees := LabFeesFor(p)
		if len(fees) != len(tt.totals) {
			t.Fatalf("%s: fees = %+v", tt.id, fees)
		}
		for i, f := range fees {
			if f.Total != tt.totals[i] || f.Quantity != 1 || f.Kind != constants.LineKindLabFee {
				t.Errorf("%s fee %d = %+v", tt.id, i, f)
			}
			if !strings.HasPrefix(f.Description, "QA Lab: ") || !strings.Contains(f.Description, p.Name) {
				t.Errorf("%s fee description %q", tt.id, f.Description)
			}
		}
	}
}

func TestLabFeesPerOccurrence(t *testing.T) {
	cat := catalog.Default()
	matches := []entity.MatchedItem{
		productItem("Weather-proof exterior emulsion for the east wing", "AP-002", 100,
			entity.Recommendation{Rank: 2, ProductID: "AP-004", SpecMatchScore: 80}),
		productItem("Weather-proof exterior emulsion for the west wing", "AP-002", 100),
		serviceItem("Delivery within 10 days"),
	}

	if got := LabFees(matches, cat, FeeScopeResolved); len(got) != 4 {
		t.Errorf("resolved scope fees = %d, want 4", len(got))
	}
	if got := LabFees(matches, cat, FeeScopeAllRecommended); len(got) != 6 {
		t.Errorf("all-recommended scope fees = %d, want 6", len(got))
	}
}

func TestDefaultScopeChargesEveryRecommendedProduct(t *testing.T) {
	pricer := &fakePricer{out: llm.RawPricing{LineItems: []llm.RawLine{
		{Description: "Apex Ultima Protek", Quantity: 100, UnitPrice: 650, TotalPrice: 65000, ProductID: "AP-002"},
	}}}
	matches := []entity.MatchedItem{
		productItem("Weather-proof exterior emulsion", "AP-002", 100,
			entity.Recommendation{Rank: 2, ProductID: "AP-004", SpecMatchScore: 80}),
	}

	res := newEngine(pricer).Calculate(context.Background(), matches, nil)
	fees := linesOfKind(res, constants.LineKindLabFee)
	if len(fees) != 4 {
		t.Fatalf("lab fees = %+v, want UV and algal for both exterior products", fees)
	}
	if !strings.Contains(fees[0].Description, "Apex Ultima Protek") || !strings.Contains(fees[2].Description, "Apex Dust Proof") {
		t.Errorf("fee descriptions = %q, %q", fees[0].Description, fees[2].Description)
	}
	if res.TotalCost != 65000+700 {
		t.Errorf("total = %v", res.TotalCost)
	}
	assertSumInvariant(t, res)
}

func TestParseFeeScope(t *testing.T) {
	tests := map[string]FeeScope{
		"":          FeeScopeAllRecommended,
		"all":       FeeScopeAllRecommended,
		"resolved":  FeeScopeResolved,
		" Resolved": FeeScopeResolved,
		"unknown":   FeeScopeAllRecommended,
	}
	for in, want := range tests {
		if got := ParseFeeScope(in); got != want {
			t.Errorf("ParseFeeScope(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestServiceEchoNamingProductStaysService(t *testing.T) {
	for _, qty := range []int{0, 1} {
		pricer := &fakePricer{out: llm.RawPricing{LineItems: []llm.RawLine{{
			Description:     "Delivery of Apex Ultima Protek to site",
			Quantity:        qty,
			Requirement:     "Delivery to site within 7 days",
			ServiceCategory: "delivery",
		}}}}
		matches := []entity.MatchedItem{
			productItem("5000 Liters of Weather-Proof Exterior Emulsion (White)", "AP-002", 5000),
			serviceItem("Delivery to site within 7 days"),
		}

		res := newEngine(pricer).Calculate(context.Background(), matches, nil)
		cat := linesOfKind(res, constants.LineKindCatalog)
		if len(cat) != 1 || cat[0].Quantity != 5000 || cat[0].Total != 2762500 {
			t.Fatalf("qty %d: catalog lines = %+v", qty, cat)
		}
		svc := linesOfKind(res, constants.LineKindService)
		if len(svc) != 1 || svc[0].Description != "Delivery of Apex Ultima Protek to site" || svc[0].Total != 2500 {
			t.Fatalf("qty %d: service lines = %+v", qty, svc)
		}
		if res.TotalCost != 2762500+2500+350 {
			t.Errorf("qty %d: total = %v", qty, res.TotalCost)
		}
		assertSumInvariant(t, res)
	}
}

func TestServiceCategoryWithoutEchoStaysService(t *testing.T) {
	pricer := &fakePricer{out: llm.RawPricing{LineItems: []llm.RawLine{
		{Description: "Apex Ultima Protek freight", Quantity: 1, UnitPrice: 1800, TotalPrice: 1800, ServiceCategory: "delivery"},
	}}}
	matches := []entity.MatchedItem{
		productItem("Weather-proof exterior emulsion", "AP-002", 100),
		serviceItem("Freight to the north depot"),
	}

	res := newEngine(pricer).Calculate(context.Background(), matches, nil)
	if svc := linesOfKind(res, constants.LineKindService); len(svc) != 1 || svc[0].Total != 1800 {
		t.Fatalf("service lines = %+v", svc)
	}
	if cat := linesOfKind(res, constants.LineKindCatalog); len(cat) != 1 || cat[0].Quantity != 100 {
		t.Fatalf("catalog lines = %+v", cat)
	}
}

func TestServiceLines(t *testing.T) {
	pricer := &fakePricer{out: llm.RawPricing{
		LineItems: []llm.RawLine{
			{Description: "Express delivery", Quantity: 1, UnitPrice: 2800, TotalPrice: 2800, PricingLogic: "regional freight", Requirement: "Delivery within 10 days", ServiceCategory: "delivery"},
			{Description: "Certification pack", Quantity: 1, UnitPrice: 0, TotalPrice: 0, PricingLogic: "", ServiceCategory: "compliance"},
		},
	}}
	matches := []entity.MatchedItem{
		serviceItem("Delivery within 10 days"),
		serviceItem("ISO 9001 certification of supply"),
		serviceItem("Service: On-site application support"),
	}
	res := newEngine(pricer).Calculate(context.Background(), matches, nil)

	svc := linesOfKind(res, constants.LineKindService)
	if len(svc) != 3 {
		t.Fatalf("service lines = %+v", svc)
	}
	if svc[0].Total != 2800 || svc[0].Note != "regional freight" {
		t.Errorf("provider estimate not kept: %+v", svc[0])
	}
	if svc[1].Total != 750 || !strings.Contains(svc[1].Note, "Compliance") {
		t.Errorf("compliance anchor not applied: %+v", svc[1])
	}
	if svc[2].Description != "Service: On-site application support" || svc[2].Total != 1500 {
		t.Errorf("support line not synthesized: %+v", svc[2])
	}
	if len(linesOfKind(res, constants.LineKindLabFee)) != 0 {
		t.Error("service items must not carry lab fees")
	}
	assertSumInvariant(t, res)
}

func TestMissingCatalogLineIsSynthesized(t *testing.T) {
	pricer := &fakePricer{out: llm.RawPricing{LineItems: []llm.RawLine{}, TotalCost: 0}}
	matches := []entity.MatchedItem{productItem("200 Liters of Primer (White)", "AP-007", 200)}

	res := newEngine(pricer).Calculate(context.Background(), matches, nil)
	cat := linesOfKind(res, constants.LineKindCatalog)
	if len(cat) != 1 || cat[0].Quantity != 200 || cat[0].Total != 36000 {
		t.Fatalf("catalog lines = %+v", cat)
	}
	assertSumInvariant(t, res)
}

func TestProductLineWithoutIDResolvesByName(t *testing.T) {
	pricer := &fakePricer{out: llm.RawPricing{LineItems: []llm.RawLine{
		{Description: "Truegrip Ultra Primer - 200L", Quantity: 200, UnitPrice: 175, TotalPrice: 35000, PricingLogic: "catalog"},
	}}}
	matches := []entity.MatchedItem{productItem("200 Liters of Primer (White)", "AP-007", 200)}

	res := newEngine(pricer).Calculate(context.Background(), matches, nil)
	if n := len(res.LineItems); n != 1 {
		t.Fatalf("lines = %+v, want the provider line only", res.LineItems)
	}
	if li := res.LineItems[0]; li.Kind != constants.LineKindCatalog || li.UnitPrice != 180 {
		t.Errorf("line = %+v", li)
	}
}

func TestProviderFailureDegrades(t *testing.T) {
	pricer := &fakePricer{err: common.ErrSchemaViolation}
	sink := events.NewRecorder()
	matches := []entity.MatchedItem{productItem("Weather-proof exterior emulsion", "AP-002", 10)}

	res := newEngine(pricer).Calculate(context.Background(), matches, sink)
	if !res.Degraded || res.TotalCost != 0 || len(res.LineItems) != 0 {
		t.Fatalf("result = %+v, want degraded zero quote", res)
	}
	if res.LineItems == nil {
		t.Error("line items should be an empty list")
	}
	entries := sink.Entries()
	last := entries[len(entries)-1]
	if last.Severity != constants.SeverityError || !strings.HasPrefix(last.Message, "Pricing calculation failed") {
		t.Errorf("last entry = %+v", last)
	}
}

func TestNilPricerDegrades(t *testing.T) {
	res := NewEngine(nil, catalog.Default()).Calculate(context.Background(), nil, nil)
	if !res.Degraded {
		t.Fatal("expected degraded result")
	}
}

func TestProviderTotalIsIgnored(t *testing.T) {
	pricer := &fakePricer{out: llm.RawPricing{
		LineItems: []llm.RawLine{{Description: "Admin", Quantity: 1, UnitPrice: 500, TotalPrice: 500, PricingLogic: "x", ServiceCategory: "admin"}},
		TotalCost: 999999,
	}}
	res := newEngine(pricer).Calculate(context.Background(), nil, nil)
	if res.TotalCost != 500 {
		t.Errorf("total = %v, want locally computed 500", res.TotalCost)
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]ServiceCategory{
		"Delivery within 10 days":              ServiceDelivery,
		"Service: On-site application support": ServiceSupport,
		"ISO 9001 certification":               ServiceCompliance,
		"5-year extended warranty":             ServiceWarranty,
		"Vendor registration":                  ServiceAdmin,
	}
	for in, want := range tests {
		if got := Classify(in); got != want {
			t.Errorf("Classify(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(2762850); got != "2,762,850.00" {
		t.Errorf("FormatMoney = %q", got)
	}
}
