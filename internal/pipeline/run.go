package pipeline

import (
	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
	"github.com/joseph-ayodele/rfp-desk/internal/integrity"
)

// Input is one pipeline invocation.
type Input struct {
	Mode      constants.InputMode
	Text      string // free-text RFP, used in freeText mode
	PortalURL string // portal address, used in portalScan mode
}

// RunContext is the immutable state threaded through the stages. Stages never
// modify a RunContext in place; each returns a new one.
type RunContext struct {
	RunID      string
	Generation uint64
	Input      Input

	extract   *entity.BidExtract
	matches   []entity.MatchedItem
	pricing   *entity.PricingResult
	draft     string
	completed []constants.Stage
}

func (rc RunContext) Extract() (entity.BidExtract, bool) {
	if rc.extract == nil {
		return entity.BidExtract{}, false
	}
	return rc.extract.Clone(), true
}

func (rc RunContext) Matches() []entity.MatchedItem { return entity.CloneMatches(rc.matches) }

func (rc RunContext) Pricing() (entity.PricingResult, bool) {
	if rc.pricing == nil {
		return entity.PricingResult{}, false
	}
	return rc.pricing.Clone(), true
}

func (rc RunContext) Draft() string { return rc.draft }

// Completed lists the stages finished so far, in order.
func (rc RunContext) Completed() []constants.Stage {
	return append([]constants.Stage(nil), rc.completed...)
}

func (rc RunContext) withExtract(b entity.BidExtract) RunContext {
	c := b.Clone()
	rc.extract = &c
	return rc.done(constants.StageIdentification)
}

func (rc RunContext) withMatches(m []entity.MatchedItem) RunContext {
	rc.matches = entity.CloneMatches(m)
	if rc.matches == nil {
		rc.matches = []entity.MatchedItem{}
	}
	return rc.done(constants.StageMatching)
}

func (rc RunContext) withPricing(p entity.PricingResult) RunContext {
	c := p.Clone()
	rc.pricing = &c
	return rc.done(constants.StagePricing)
}

func (rc RunContext) withDraft(d string) RunContext {
	rc.draft = d
	return rc.done(constants.StageDrafting)
}

func (rc RunContext) done(s constants.Stage) RunContext {
	rc.completed = append(append([]constants.Stage(nil), rc.completed...), s)
	return rc
}

// Snapshot is a read-only copy of a run's progress, published after every
// completed stage and returned as the final result.
type Snapshot struct {
	RunID     string                `json:"run_id"`
	Extract   *entity.BidExtract    `json:"extract,omitempty"`
	Matches   []entity.MatchedItem  `json:"matches,omitempty"`
	Pricing   *entity.PricingResult `json:"pricing,omitempty"`
	Draft     string                `json:"draft,omitempty"`
	Integrity integrity.Assessment  `json:"integrity"`
	Completed []constants.Stage     `json:"completed"`
	Log       []entity.LogEntry     `json:"log"`
}

// SnapshotFunc receives snapshots in stage order.
type SnapshotFunc func(Snapshot)

func (rc RunContext) snapshot(log []entity.LogEntry) Snapshot {
	s := Snapshot{
		RunID:     rc.RunID,
		Matches:   rc.Matches(),
		Draft:     rc.draft,
		Completed: rc.Completed(),
		Log:       log,
	}
	if b, ok := rc.Extract(); ok {
		s.Extract = &b
	}
	if p, ok := rc.Pricing(); ok {
		s.Pricing = &p
	}
	// Recomputed from the current matches and pricing, never carried over.
	s.Integrity = integrity.Evaluate(s.Matches, s.Pricing)
	return s
}

// HasStage reports whether stage completed.
func (s Snapshot) HasStage(stage constants.Stage) bool {
	for _, c := range s.Completed {
		if c == stage {
			return true
		}
	}
	return false
}

// Result is the outcome of Run. Complete is false when a stage aborted the
// run; whatever was produced before the failure is still present.
type Result struct {
	Snapshot
	Complete bool `json:"complete"`
}
