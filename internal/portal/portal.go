// Package portal selects a demo tender from a static procurement-portal listing
// using the 90-day deadline rule.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
	"github.com/joseph-ayodele/rfp-desk/internal/events"
)

const (
	// PreferredTenderID is picked whenever it passes the deadline rule.
	PreferredTenderID = "RFP-WEB-101"
	deadlineLayout    = "Mon Jan 02 2006"
	day               = 24 * time.Hour
)

// Tender is one listing on the portal.
type Tender struct {
	ID           string
	Client       string
	Deadline     time.Time
	Requirements []string
	Score        int
}

// Verdict records the deadline-rule outcome for one tender.
type Verdict struct {
	TenderID string
	DaysLeft int
	Accepted bool
}

// Listing returns the static tender set relative to now.
func Listing(now time.Time) []Tender {
	return []Tender{
		{
			ID:       "RFP-WEB-101",
			Client:   "Nexus Health Systems",
			Deadline: now.Add(14 * day),
			Requirements: []string{
				"5000 Liters of Anti-Bacterial Interior Paint",
				"200 Liters of Primer (White)",
				"Service: On-site application support",
			},
			Score: 92,
		},
		{
			ID:           "RFP-WEB-102",
			Client:       "Global Logistics Hub",
			Deadline:     now.Add(150 * day),
			Requirements: []string{"Industrial Floor Coating"},
			Score:        45,
		},
		{
			ID:           "RFP-WEB-103",
			Client:       "Metro City Station",
			Deadline:     now.Add(30 * day),
			Requirements: []string{"Exterior Weather-Proof Emulsion"},
			Score:        78,
		},
	}
}

// DaysUntil returns the whole days between now and deadline, rounded up.
func DaysUntil(deadline, now time.Time) int {
	d := deadline.Sub(now)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// Select applies the deadline rule to tenders and picks one: the preferred
// tender if accepted, else the first accepted, else the first listed.
// ok is false only when tenders is empty.
func Select(tenders []Tender, now time.Time, maxDays int, em events.Emitter) (chosen Tender, verdicts []Verdict, ok bool) {
	if len(tenders) == 0 {
		return Tender{}, nil, false
	}
	em.Info(fmt.Sprintf("Found %d active RFPs. Filtering by 3-Month (%d Days) Deadline Rule...", len(tenders), maxDays))

	firstValid := -1
	preferred := -1
	for i, t := range tenders {
		days := DaysUntil(t.Deadline, now)
		v := Verdict{TenderID: t.ID, DaysLeft: days, Accepted: days <= maxDays}
		verdicts = append(verdicts, v)
		if !v.Accepted {
			em.Warning(fmt.Sprintf("[REJECTED] %s (%s): Due in %d days (> 3 months).", t.ID, t.Client, days))
			continue
		}
		em.Success(fmt.Sprintf("[VALID] %s (%s): Due in %d days.", t.ID, t.Client, days))
		if firstValid < 0 {
			firstValid = i
		}
		if preferred < 0 && t.ID == PreferredTenderID {
			preferred = i
		}
	}

	idx := 0
	switch {
	case preferred >= 0:
		idx = preferred
	case firstValid >= 0:
		idx = firstValid
	}
	chosen = tenders[idx]
	em.Success(fmt.Sprintf("Selected %s for processing.", chosen.ID))
	return chosen, verdicts, true
}

// ToExtract converts a tender into the identification output.
func ToExtract(t Tender) entity.BidExtract {
	return entity.BidExtract{
		ClientName:         t.Client,
		SubmissionDeadline: t.Deadline.Format(deadlineLayout),
		ContactEmail:       constants.PortalContactEmail,
		Requirements:       append([]string(nil), t.Requirements...),
		PriorityScore:      t.Score,
	}.Normalize()
}

type Option func(*Scanner)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// WithListing replaces the static tender set.
func WithListing(fn func(now time.Time) []Tender) Option {
	return func(s *Scanner) { s.listing = fn }
}

// WithMaxDays overrides the deadline horizon.
func WithMaxDays(days int) Option {
	return func(s *Scanner) {
		if days > 0 {
			s.maxDays = days
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// Scanner runs a portal scan for the identification stage.
type Scanner struct {
	now     func() time.Time
	listing func(now time.Time) []Tender
	maxDays int
	log     *slog.Logger
}

func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		now:     time.Now,
		listing: Listing,
		maxDays: constants.PortalMaxDaysToDeadline,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scan "connects" to url, filters the listing and returns the chosen tender as a BidExtract.
func (s *Scanner) Scan(ctx context.Context, url string, sink events.Sink) (entity.BidExtract, error) {
	em := events.For(sink, constants.StageIdentification)
	scanID := uuid.New().String()
	start := time.Now()

	em.Info(fmt.Sprintf("Connecting to procurement portal: %s...", url))
	if err := ctx.Err(); err != nil {
		return entity.BidExtract{}, err
	}
	em.Info("Scraping active tenders...")

	now := s.now()
	chosen, verdicts, ok := Select(s.listing(now), now, s.maxDays, em)
	if !ok {
		s.log.Warn("portal.scan.empty", "scan_id", scanID, "url", url)
		return entity.BidExtract{}, fmt.Errorf("portal %s listed no tenders: %w", url, common.ErrEmptyResponse)
	}

	accepted := 0
	for _, v := range verdicts {
		if v.Accepted {
			accepted++
		}
	}
	s.log.Info("portal.scan.ok",
		"scan_id", scanID,
		"url", url,
		"tenders", len(verdicts),
		"accepted", accepted,
		"selected", chosen.ID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ToExtract(chosen), nil
}
