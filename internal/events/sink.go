// Package events carries the pipeline activity log: an ordered stream of
// LogEntry values that stages emit and callers drain or mirror elsewhere.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/entity"
)

// Sink receives log entries in emission order.
type Sink interface {
	Emit(entry entity.LogEntry)
}

// Recorder keeps every entry in order until drained. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []entity.LogEntry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(entry entity.LogEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []entity.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Drain returns the recorded entries and clears the recorder.
func (r *Recorder) Drain() []entity.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.entries
	r.entries = nil
	return out
}

// Len returns the number of entries currently held.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// SlogSink mirrors entries into a slog.Logger. Severity maps to level,
// the stage becomes the "stage" attribute.
type SlogSink struct {
	logger *slog.Logger
	attrs  []slog.Attr
}

// NewSlogSink creates a SlogSink; extra attributes (e.g. run_id) are added to every record.
func NewSlogSink(logger *slog.Logger, attrs ...slog.Attr) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger, attrs: attrs}
}

func (s *SlogSink) Emit(entry entity.LogEntry) {
	attrs := make([]slog.Attr, 0, len(s.attrs)+2)
	attrs = append(attrs, s.attrs...)
	attrs = append(attrs,
		slog.String("stage", string(entry.Stage)),
		slog.String("severity", string(entry.Severity)),
	)
	s.logger.LogAttrs(context.Background(), SlogLevel(entry.Severity), entry.Message, attrs...)
}

// SlogLevel maps a pipeline severity onto a slog level.
func SlogLevel(s constants.Severity) slog.Level {
	switch s {
	case constants.SeverityWarning:
		return slog.LevelWarn
	case constants.SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Multi fans entries out to every non-nil sink in order.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a Multi over the given sinks, skipping nils.
func NewMulti(sinks ...Sink) *Multi {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &Multi{sinks: filtered}
}

func (m *Multi) Emit(entry entity.LogEntry) {
	for _, s := range m.sinks {
		s.Emit(entry)
	}
}

// Noop discards all entries.
type Noop struct{}

func (Noop) Emit(entity.LogEntry) {}

// Emitter stamps entries with a stage name and the current time.
type Emitter struct {
	sink  Sink
	stage constants.Stage
	now   func() time.Time
}

// For returns an Emitter for stage. A nil sink discards.
func For(sink Sink, stage constants.Stage) Emitter {
	if sink == nil {
		sink = Noop{}
	}
	return Emitter{sink: sink, stage: stage, now: time.Now}
}

func (e Emitter) emit(sev constants.Severity, msg string) {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	sink := e.sink
	if sink == nil {
		sink = Noop{}
	}
	sink.Emit(entity.LogEntry{Timestamp: now(), Stage: e.stage, Message: msg, Severity: sev})
}

func (e Emitter) Info(msg string)    { e.emit(constants.SeverityInfo, msg) }
func (e Emitter) Success(msg string) { e.emit(constants.SeveritySuccess, msg) }
func (e Emitter) Warning(msg string) { e.emit(constants.SeverityWarning, msg) }
func (e Emitter) Error(msg string)   { e.emit(constants.SeverityError, msg) }
