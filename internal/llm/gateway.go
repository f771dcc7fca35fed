package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/catalog"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
)

// Options tune the gateway client.
type Options struct {
	// LenientOptional retries validation after dropping empty optional fields.
	LenientOptional bool
	Logger          *slog.Logger
}

// Client implements Gateway over any Completer.
type Client struct {
	completer Completer
	lenient   bool
	log       *slog.Logger
	schemas   map[string]*jsonschema.Schema
}

var _ Gateway = (*Client)(nil)

// NewClient compiles the stage schemas once and returns a ready gateway.
func NewClient(c Completer, opts Options) (*Client, error) {
	if c == nil {
		return nil, errors.New("llm: completer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	raw := map[string]map[string]any{
		SchemaExtract: BuildExtractJSONSchema(),
		SchemaMatch:   BuildMatchJSONSchema(),
		SchemaPrice:   BuildPriceJSONSchema(),
	}
	schemas := make(map[string]*jsonschema.Schema, len(raw))
	for name, m := range raw {
		s, err := CompileSchema(name, m)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		schemas[name] = s
	}
	return &Client{
		completer: c,
		lenient:   opts.LenientOptional,
		log:       logger,
		schemas:   schemas,
	}, nil
}

// Extract identifies bid metadata in free text.
func (c *Client) Extract(ctx context.Context, text string) (entity.BidExtract, error) {
	if strings.TrimSpace(text) == "" {
		return entity.BidExtract{}, common.NewAppError("EXTRACT_INPUT", "rfp text is empty", common.ErrInvalidInput)
	}
	var out entity.BidExtract
	if err := c.structured(ctx, BuildExtractPrompt(text), &out); err != nil {
		return entity.BidExtract{}, err
	}
	return out.Normalize(), nil
}

type matchEnvelope struct {
	Matches []entity.MatchedItem `json:"matches"`
}

// Match maps all requirements onto the catalog in a single provider call.
// Recommendations naming unknown product ids are dropped; product names are
// taken from the catalog.
func (c *Client) Match(ctx context.Context, requirements []string, cat *catalog.Catalog) ([]entity.MatchedItem, error) {
	if len(requirements) == 0 {
		return []entity.MatchedItem{}, nil
	}
	var env matchEnvelope
	if err := c.structured(ctx, BuildMatchPrompt(requirements, cat), &env); err != nil {
		return nil, err
	}
	if len(env.Matches) == 0 {
		c.log.Error("llm.match.no_matches", "requirements", len(requirements))
		return nil, fmt.Errorf("match: provider returned no items: %w", common.ErrEmptyResponse)
	}
	if len(env.Matches) != len(requirements) {
		c.log.Warn("llm.match.count_mismatch", "requirements", len(requirements), "matches", len(env.Matches))
	}

	out := make([]entity.MatchedItem, 0, len(env.Matches))
	for _, m := range env.Matches {
		m.Requirement = strings.TrimSpace(m.Requirement)
		if m.EstimatedQuantity <= 0 {
			m.EstimatedQuantity = constants.DefaultQuantity
		}
		recs := m.Recommendations[:0]
		ranks := make(map[int]bool, len(m.Recommendations))
		for _, r := range m.Recommendations {
			p, ok := cat.Lookup(r.ProductID)
			if !ok {
				c.log.Warn("llm.match.unknown_product", "requirement", m.Requirement, "product_id", r.ProductID)
				continue
			}
			// Ranks are unique per requirement; the first product listed keeps it.
			if ranks[r.Rank] {
				c.log.Warn("llm.match.duplicate_rank", "requirement", m.Requirement, "rank", r.Rank, "product_id", r.ProductID)
				continue
			}
			ranks[r.Rank] = true
			r.ProductName = p.Name
			recs = append(recs, r)
		}
		if recs == nil {
			recs = []entity.Recommendation{}
		}
		m.Recommendations = recs
		m.SortRecommendations()
		m.DeriveTop()
		out = append(out, m)
	}
	return out, nil
}

// Price asks the provider for a priced quote. Local pricing rules run afterwards.
func (c *Client) Price(ctx context.Context, matches []entity.MatchedItem, cat *catalog.Catalog) (RawPricing, error) {
	var out RawPricing
	if err := c.structured(ctx, BuildPricePrompt(matches, cat), &out); err != nil {
		return RawPricing{}, err
	}
	return out, nil
}

// Draft writes the plain-text response email.
func (c *Client) Draft(ctx context.Context, bid entity.BidExtract, pricing entity.PricingResult) (string, error) {
	p := BuildDraftPrompt(bid, pricing)
	rid := uuid.New().String()
	start := time.Now()
	c.log.Info("llm.draft.start", "req_id", rid, "client", bid.ClientName, "lines", len(pricing.LineItems))

	text, err := c.completer.Complete(ctx, p)
	if err != nil {
		err = classify(ctx, err)
		c.log.Error("llm.draft.provider_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		c.log.Error("llm.draft.empty", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("draft: %w", common.ErrEmptyResponse)
	}
	c.log.Info("llm.draft.ok", "req_id", rid, "chars", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

// structured runs one schema-bound call and decodes the document into out.
func (c *Client) structured(ctx context.Context, p Prompt, out any) error {
	rid := uuid.New().String()
	start := time.Now()
	log := c.log
	if runID := common.RunIDFromContext(ctx); runID != "" {
		log = log.With("run_id", runID)
	}
	log.Info("llm."+p.Name+".start", "req_id", rid, "user_len", len(p.User))

	text, err := c.completer.Complete(ctx, p)
	if err != nil {
		err = classify(ctx, err)
		log.Error("llm."+p.Name+".provider_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	content := ExtractJSON(text)
	if content == "" {
		log.Error("llm."+p.Name+".empty", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("%s: %w", p.Name, common.ErrEmptyResponse)
	}
	doc := []byte(content)

	schema := c.schemas[p.Name]
	if schema == nil {
		return fmt.Errorf("%s: no schema registered: %w", p.Name, common.ErrInternal)
	}
	if vErr := validateCompiled(schema, doc); vErr != nil {
		if !c.lenient {
			log.Error("llm."+p.Name+".schema_validation_failed",
				"req_id", rid, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return fmt.Errorf("%s: %v: %w", p.Name, vErr, common.ErrSchemaViolation)
		}
		cleaned, dropped, sErr := SanitizeOptionalFields(p.Name, doc)
		if sErr != nil {
			log.Error("llm."+p.Name+".sanitize_failed", "req_id", rid, "error", sErr)
			return fmt.Errorf("%s: %v: %w", p.Name, sErr, common.ErrSchemaViolation)
		}
		if rvErr := validateCompiled(schema, cleaned); rvErr != nil {
			log.Error("llm."+p.Name+".schema_validation_failed",
				"req_id", rid, "error", rvErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return fmt.Errorf("%s: %v: %w", p.Name, rvErr, common.ErrSchemaViolation)
		}
		log.Warn("llm."+p.Name+".lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
		doc = cleaned
	}

	if err := json.Unmarshal(doc, out); err != nil {
		log.Error("llm."+p.Name+".unmarshal_failed", "req_id", rid, "error", err)
		return fmt.Errorf("%s: %v: %w", p.Name, err, common.ErrSchemaViolation)
	}
	log.Info("llm."+p.Name+".ok", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// classify makes sure every provider failure carries one of the gateway kinds.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrTimeout),
		errors.Is(err, common.ErrProviderUnavailable),
		errors.Is(err, common.ErrEmptyResponse),
		errors.Is(err, common.ErrSchemaViolation):
		return err
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%v: %w", err, common.ErrTimeout)
	}
	return fmt.Errorf("%v: %w", err, common.ErrProviderUnavailable)
}
