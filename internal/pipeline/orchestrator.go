// Package pipeline sequences Identification, Matching, Pricing and Drafting
// over an immutable run context and publishes a snapshot after every stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/catalog"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
	"github.com/joseph-ayodele/rfp-desk/internal/events"
	"github.com/joseph-ayodele/rfp-desk/internal/guardrail"
	"github.com/joseph-ayodele/rfp-desk/internal/llm"
	"github.com/joseph-ayodele/rfp-desk/internal/portal"
	"github.com/joseph-ayodele/rfp-desk/internal/pricing"
)

// AbortMessage is the terminal SYSTEM entry of an aborted run.
const AbortMessage = "CRITICAL ERROR: Process aborted."

// PortalScanner produces the identification output in portalScan mode.
type PortalScanner interface {
	Scan(ctx context.Context, url string, sink events.Sink) (entity.BidExtract, error)
}

type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithSink forwards every LogEntry of current runs to sink as it is emitted.
func WithSink(s events.Sink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithSnapshots registers a callback for per-stage snapshots.
func WithSnapshots(fn SnapshotFunc) Option {
	return func(o *Orchestrator) { o.onSnapshot = fn }
}

// WithSession makes runs supersede each other: a new run cancels the previous
// one and stale runs never publish.
func WithSession(s *Session) Option {
	return func(o *Orchestrator) { o.session = s }
}

func WithPortal(p PortalScanner) Option {
	return func(o *Orchestrator) { o.portal = p }
}

// WithPricingOptions passes options to the pricing engine.
func WithPricingOptions(opts ...pricing.Option) Option {
	return func(o *Orchestrator) { o.pricingOpts = append(o.pricingOpts, opts...) }
}

// Orchestrator holds only collaborators; all run state lives in RunContext.
type Orchestrator struct {
	gw          llm.Gateway
	cat         *catalog.Catalog
	portal      PortalScanner
	engine      *pricing.Engine
	pricingOpts []pricing.Option
	sink        events.Sink
	onSnapshot  SnapshotFunc
	session     *Session
	log         *slog.Logger
	runs        atomic.Uint64
}

func New(gw llm.Gateway, cat *catalog.Catalog, opts ...Option) *Orchestrator {
	if cat == nil {
		cat = catalog.Default()
	}
	o := &Orchestrator{gw: gw, cat: cat, log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.portal == nil {
		o.portal = portal.NewScanner(portal.WithLogger(o.log))
	}
	popts := append([]pricing.Option{pricing.WithLogger(o.log)}, o.pricingOpts...)
	o.engine = pricing.NewEngine(gw, cat, popts...)
	return o
}

type stageFunc func(ctx context.Context, rc RunContext, sink events.Sink) (RunContext, error)

type stage struct {
	name constants.Stage
	run  stageFunc
}

func (o *Orchestrator) stages() []stage {
	return []stage{
		{name: constants.StageIdentification, run: o.identify},
		{name: constants.StageMatching, run: o.match},
		{name: constants.StagePricing, run: o.price},
		{name: constants.StageDrafting, run: o.draft},
	}
}

// Run executes one pipeline invocation. On a stage failure it returns the
// partial result together with a *RunError; a superseded or cancelled run
// returns an error wrapping common.ErrSuperseded and no state.
func (o *Orchestrator) Run(ctx context.Context, in Input) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}

	var gen uint64
	if o.session != nil {
		ctx, gen = o.session.Begin(ctx)
		defer o.session.end(gen)
	} else {
		gen = o.runs.Add(1)
	}
	// Deadline expiry is a stage failure (ErrTimeout), not a supersede.
	current := func() bool {
		if errors.Is(ctx.Err(), context.Canceled) {
			return false
		}
		return o.session == nil || o.session.Current(gen)
	}

	rc := RunContext{RunID: uuid.New().String(), Generation: gen, Input: in}
	logger := o.log.With("run_id", rc.RunID, "mode", in.Mode)
	ctx = common.WithRunID(ctx, rc.RunID)

	rec := events.NewRecorder()
	sinks := []events.Sink{rec, events.NewSlogSink(logger)}
	if o.sink != nil {
		sinks = append(sinks, guardedSink{sink: o.sink, current: current})
	}
	sink := events.NewMulti(sinks...)

	start := time.Now()
	logger.Info("pipeline.run.start")

	for _, st := range o.stages() {
		if !current() {
			return o.superseded(logger, rc, st.name)
		}
		stageStart := time.Now()
		next, err := st.run(ctx, rc, sink)
		if !current() {
			// A late result from an abandoned run must not surface.
			return o.superseded(logger, rc, st.name)
		}
		if err != nil {
			events.For(sink, constants.StageSystem).Error(AbortMessage)
			logger.Error("pipeline.run.aborted",
				"stage", st.name, "error", err, "kind", common.KindOf(err),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			res := Result{Snapshot: rc.snapshot(rec.Entries())}
			return res, &RunError{RunID: rc.RunID, Stage: st.name, Err: err}
		}
		rc = next
		logger.Info("pipeline.stage.ok", "stage", st.name, "elapsed_ms", time.Since(stageStart).Milliseconds())
		o.publish(rc.snapshot(rec.Entries()))
	}

	res := Result{Snapshot: rc.snapshot(rec.Entries()), Complete: true}
	logger.Info("pipeline.run.ok",
		"integrity", res.Integrity.Index,
		"band", res.Integrity.Band,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (o *Orchestrator) superseded(logger *slog.Logger, rc RunContext, at constants.Stage) (Result, error) {
	logger.Warn("pipeline.run.superseded", "stage", at)
	return Result{Snapshot: Snapshot{RunID: rc.RunID}}, fmt.Errorf("run %s at %s: %w", rc.RunID, at, common.ErrSuperseded)
}

func (o *Orchestrator) publish(s Snapshot) {
	if o.onSnapshot != nil {
		o.onSnapshot(s)
	}
}

func validateInput(in Input) error {
	v := common.NewValidator()
	switch in.Mode {
	case constants.ModeFreeText:
		v.Field("text", in.Text, common.Required, common.MaxLength(constants.MaxRFPBytes))
	case constants.ModePortalScan:
		v.Field("portal_url", in.PortalURL, common.Required)
	default:
		return fmt.Errorf("unknown input mode %q: %w", in.Mode, common.ErrInvalidInput)
	}
	return v.Err()
}

func (o *Orchestrator) identify(ctx context.Context, rc RunContext, sink events.Sink) (RunContext, error) {
	em := events.For(sink, constants.StageIdentification)
	if rc.Input.Mode == constants.ModePortalScan {
		bid, err := o.portal.Scan(ctx, rc.Input.PortalURL, sink)
		if err != nil {
			em.Error("Portal scan failed: " + err.Error())
			return rc, err
		}
		return rc.withExtract(bid), nil
	}

	em.Info("Initializing analysis sequence...")
	em.Info("Sending payload to inference provider...")
	if o.gw == nil {
		err := fmt.Errorf("no inference gateway configured: %w", common.ErrProviderUnavailable)
		em.Error("Analysis failed: " + err.Error())
		return rc, err
	}
	bid, err := o.gw.Extract(ctx, rc.Input.Text)
	if err != nil {
		em.Error("Analysis failed: " + err.Error())
		return rc, err
	}
	em.Success("Identified Client: " + bid.ClientName)
	em.Info(fmt.Sprintf("Extracted %d requirements.", len(bid.Requirements)))
	return rc.withExtract(bid), nil
}

func (o *Orchestrator) match(ctx context.Context, rc RunContext, sink events.Sink) (RunContext, error) {
	em := events.For(sink, constants.StageMatching)
	em.Info("Initiating semantic product matching with vague input guardrails...")
	bid, _ := rc.Extract()
	if o.gw == nil {
		err := fmt.Errorf("no inference gateway configured: %w", common.ErrProviderUnavailable)
		em.Error("Matching failed: " + err.Error())
		return rc, err
	}
	raw, err := o.gw.Match(ctx, bid.Requirements, o.cat)
	if err != nil {
		em.Error("Matching failed: " + err.Error())
		return rc, err
	}
	return rc.withMatches(guardrail.ValidateAll(raw, sink)), nil
}

func (o *Orchestrator) price(ctx context.Context, rc RunContext, sink events.Sink) (RunContext, error) {
	// Pricing degrades instead of failing; the engine logs the error entry.
	res := o.engine.Calculate(ctx, rc.Matches(), sink)
	return rc.withPricing(res), nil
}

func (o *Orchestrator) draft(ctx context.Context, rc RunContext, sink events.Sink) (RunContext, error) {
	em := events.For(sink, constants.StageDrafting)
	em.Info("Drafting final proposal email...")
	bid, _ := rc.Extract()
	p, _ := rc.Pricing()
	if o.gw == nil {
		err := fmt.Errorf("no inference gateway configured: %w", common.ErrProviderUnavailable)
		em.Error("Drafting failed: " + err.Error())
		return rc, err
	}
	text, err := o.gw.Draft(ctx, bid, p)
	if err != nil {
		em.Error("Drafting failed: " + err.Error())
		return rc, err
	}
	em.Success("Draft generated successfully.")
	return rc.withDraft(text), nil
}

// guardedSink drops entries once the run is no longer current.
type guardedSink struct {
	sink    events.Sink
	current func() bool
}

func (g guardedSink) Emit(e entity.LogEntry) {
	if g.current() {
		g.sink.Emit(e)
	}
}
