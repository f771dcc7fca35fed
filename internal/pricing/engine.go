// Package pricing turns validated matches into a priced quote: catalog lines
// with volume discount, estimated service lines and mandatory lab fees.
package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/catalog"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
	"github.com/joseph-ayodele/rfp-desk/internal/events"
	"github.com/joseph-ayodele/rfp-desk/internal/llm"
)

// Pricer is the provider call the engine builds on. llm.Gateway satisfies it.
type Pricer interface {
	Price(ctx context.Context, matches []entity.MatchedItem, cat *catalog.Catalog) (llm.RawPricing, error)
}

type Option func(*Engine)

// WithFeeScope selects which recommended products carry lab fees.
func WithFeeScope(s FeeScope) Option {
	return func(e *Engine) { e.scope = s }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

type Engine struct {
	pricer Pricer
	cat    *catalog.Catalog
	scope  FeeScope
	log    *slog.Logger
}

func NewEngine(p Pricer, cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{pricer: p, cat: cat, log: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Calculate prices the matched items. A provider failure yields an empty,
// zero-total result marked Degraded, never a partial quote.
func (e *Engine) Calculate(ctx context.Context, matches []entity.MatchedItem, sink events.Sink) entity.PricingResult {
	em := events.For(sink, constants.StagePricing)
	em.Info("Initiating cost analysis & market estimation...")

	if e.pricer == nil {
		return e.degraded(em, fmt.Errorf("no pricing provider configured"))
	}
	raw, err := e.pricer.Price(ctx, matches, e.cat)
	if err != nil {
		return e.degraded(em, err)
	}

	catalogLines, serviceLines, echoes := e.normalize(raw.LineItems, matches)
	catalogLines = append(catalogLines, e.missingCatalogLines(catalogLines, matches)...)
	serviceLines = append(serviceLines, e.missingServiceLines(serviceLines, echoes, matches, em)...)

	fees := LabFees(matches, e.cat, e.scope)
	if len(fees) > 0 {
		em.Info(fmt.Sprintf("Applying %d mandatory Lab Testing Fees...", len(fees)))
	}

	lines := make([]entity.PricingLineItem, 0, len(catalogLines)+len(serviceLines)+len(fees))
	lines = append(lines, catalogLines...)
	lines = append(lines, serviceLines...)
	lines = append(lines, fees...)
	out := entity.PricingResult{LineItems: lines}
	out.Recompute()

	subtotal := entity.PricingResult{LineItems: lines[:len(catalogLines)+len(serviceLines)]}.Sum()
	if math.Abs(subtotal-raw.TotalCost) >= 0.01 {
		e.log.Warn("pricing.provider_total_diverged",
			"run_id", common.RunIDFromContext(ctx),
			"provider_total", raw.TotalCost,
			"local_subtotal", subtotal,
		)
	}
	e.log.Info("pricing.calculate.ok",
		"run_id", common.RunIDFromContext(ctx),
		"lines", len(lines),
		"lab_fees", len(fees),
		"total", out.TotalCost,
	)
	em.Success("Calculation Complete. Total Value: $" + FormatMoney(out.TotalCost))
	return out
}

func (e *Engine) degraded(em events.Emitter, err error) entity.PricingResult {
	em.Error("Pricing calculation failed: " + err.Error())
	e.log.Error("pricing.calculate.degraded", "error", err)
	return entity.PricingResult{LineItems: []entity.PricingLineItem{}, TotalCost: 0, Degraded: true}
}

// normalize re-prices provider lines locally. Lines resolving to a catalog
// product use the catalog unit price; everything else is a service line.
// echoes holds the requirement each service line reported, by index.
func (e *Engine) normalize(raw []llm.RawLine, matches []entity.MatchedItem) (catalogLines, serviceLines []entity.PricingLineItem, echoes []string) {
	for _, rl := range raw {
		if p, ok := e.resolveProduct(rl, matches); ok {
			qty := rl.Quantity
			if qty <= 0 {
				qty = quantityFor(p.ID, matches)
			}
			desc := strings.TrimSpace(rl.Description)
			if desc == "" {
				desc = p.Name
			}
			catalogLines = append(catalogLines, CatalogLine(p, qty, desc, rl.PricingLogic))
			continue
		}
		serviceLines = append(serviceLines, e.serviceLine(rl))
		echoes = append(echoes, strings.TrimSpace(rl.Requirement))
	}
	return catalogLines, serviceLines, echoes
}

func (e *Engine) resolveProduct(rl llm.RawLine, matches []entity.MatchedItem) (catalog.Product, bool) {
	if id := strings.TrimSpace(rl.ProductID); id != "" {
		if p, ok := e.cat.Lookup(id); ok {
			return p, true
		}
		e.log.Warn("pricing.unknown_product", "product_id", id, "description", rl.Description)
		return catalog.Product{}, false
	}
	// An echoed requirement decides the line's kind before any name matching.
	if req := strings.TrimSpace(rl.Requirement); req != "" {
		for _, m := range matches {
			if !strings.EqualFold(strings.TrimSpace(m.Requirement), req) {
				continue
			}
			if m.ProductID == "" {
				return catalog.Product{}, false
			}
			return e.cat.Lookup(m.ProductID)
		}
	}
	if _, ok := ParseServiceCategory(rl.ServiceCategory); ok {
		return catalog.Product{}, false
	}
	desc := strings.ToLower(rl.Description)
	for _, m := range matches {
		if m.ProductID == "" {
			continue
		}
		if p, ok := e.cat.Lookup(m.ProductID); ok && strings.Contains(desc, strings.ToLower(p.Name)) {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// CatalogLine prices qty units of p. Above the bulk threshold a 15% discount
// applies and is recorded in the note.
func CatalogLine(p catalog.Product, qty int, desc, logic string) entity.PricingLineItem {
	gross := float64(qty) * p.UnitPrice
	li := entity.PricingLineItem{
		Description: desc,
		Quantity:    qty,
		UnitPrice:   p.UnitPrice,
		Total:       entity.RoundMoney(gross),
		Note:        strings.TrimSpace(logic),
		Kind:        constants.LineKindCatalog,
		ProductID:   p.ID,
	}
	if qty > constants.BulkDiscountThreshold {
		li.Total = entity.RoundMoney(gross * (1 - constants.BulkDiscountRate))
		li.Note = fmt.Sprintf("%d%% bulk discount applied (quantity > %d)",
			int(math.Round(constants.BulkDiscountRate*100)), constants.BulkDiscountThreshold)
	}
	return li
}

func (e *Engine) serviceLine(rl llm.RawLine) entity.PricingLineItem {
	cat, ok := ParseServiceCategory(rl.ServiceCategory)
	if !ok {
		cat = Classify(rl.Requirement + " " + rl.Description)
	}
	qty := max(rl.Quantity, 1)
	unit := rl.UnitPrice
	if unit <= 0 && rl.TotalPrice > 0 {
		unit = rl.TotalPrice / float64(qty)
	}
	note := strings.TrimSpace(rl.PricingLogic)
	if unit <= 0 {
		unit = AnchorPrice(cat)
		note = rationale(cat)
	}
	if note == "" {
		note = rationale(cat)
	}
	desc := strings.TrimSpace(rl.Description)
	if desc == "" {
		desc = strings.TrimSpace(rl.Requirement)
	}
	unit = entity.RoundMoney(unit)
	return entity.PricingLineItem{
		Description: desc,
		Quantity:    qty,
		UnitPrice:   unit,
		Total:       entity.RoundMoney(float64(qty) * unit),
		Note:        note,
		Kind:        constants.LineKindService,
	}
}

// missingCatalogLines prices product items the provider left out, one line per
// item not already covered by a provider line for the same product.
func (e *Engine) missingCatalogLines(lines []entity.PricingLineItem, matches []entity.MatchedItem) []entity.PricingLineItem {
	covered := map[string]int{}
	for _, li := range lines {
		covered[li.ProductID]++
	}
	var out []entity.PricingLineItem
	for _, m := range matches {
		if m.ProductID == "" {
			continue
		}
		if covered[m.ProductID] > 0 {
			covered[m.ProductID]--
			continue
		}
		p, ok := e.cat.Lookup(m.ProductID)
		if !ok {
			continue
		}
		qty := m.EstimatedQuantity
		if qty <= 0 {
			qty = constants.DefaultQuantity
		}
		e.log.Warn("pricing.catalog_line_synthesized", "product_id", p.ID, "requirement", m.Requirement)
		out = append(out, CatalogLine(p, qty, p.Name, "Catalog unit price x quantity"))
	}
	return out
}

// missingServiceLines makes sure every service/constraint item is billed.
// A provider line covers an item when it echoes or names the requirement; other
// lines cover the remaining items in order.
func (e *Engine) missingServiceLines(lines []entity.PricingLineItem, echoes []string, matches []entity.MatchedItem, em events.Emitter) []entity.PricingLineItem {
	var services []entity.MatchedItem
	for _, m := range matches {
		if m.IsService() && strings.TrimSpace(m.Requirement) != "" {
			services = append(services, m)
		}
	}
	if len(services) == 0 {
		return nil
	}

	used := make([]bool, len(lines))
	uncovered := make([]entity.MatchedItem, 0, len(services))
	for _, s := range services {
		req := strings.ToLower(strings.TrimSpace(s.Requirement))
		found := false
		for i, li := range lines {
			if used[i] {
				continue
			}
			if strings.EqualFold(echoes[i], req) || strings.Contains(strings.ToLower(li.Description), req) {
				used[i], found = true, true
				break
			}
		}
		if !found {
			uncovered = append(uncovered, s)
		}
	}

	var out []entity.PricingLineItem
	for _, s := range uncovered {
		found := false
		for i := range lines {
			if !used[i] {
				used[i], found = true, true
				break
			}
		}
		if found {
			continue
		}
		cat := Classify(s.Requirement)
		anchor := AnchorPrice(cat)
		em.Info(fmt.Sprintf("Estimated %s for %q at $%s", serviceRates[cat].label, s.Requirement, FormatMoney(anchor)))
		out = append(out, entity.PricingLineItem{
			Description: s.Requirement,
			Quantity:    1,
			UnitPrice:   anchor,
			Total:       anchor,
			Note:        rationale(cat),
			Kind:        constants.LineKindService,
		})
	}
	return out
}

func quantityFor(productID string, matches []entity.MatchedItem) int {
	for _, m := range matches {
		if m.ProductID == productID && m.EstimatedQuantity > 0 {
			return m.EstimatedQuantity
		}
	}
	return constants.DefaultQuantity
}

var printer = message.NewPrinter(language.English)

// FormatMoney renders v with thousands separators and two decimals.
func FormatMoney(v float64) string {
	return printer.Sprintf("%.2f", v)
}
