// Package async runs pipeline jobs on a bounded pool of workers.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/rfp-desk/internal/pipeline"
)

// ErrClosed is returned by Enqueue after Shutdown has begun.
var ErrClosed = errors.New("queue is shutting down")

// Job is one pipeline invocation waiting for a worker.
type Job struct {
	ID          string
	Input       pipeline.Input
	Source      string // inbox path, "cron", "cli"
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}

// Runner executes one job. *pipeline.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (pipeline.Result, error)
}

// CompletionFunc receives every finished job, including failed ones. ctx is
// still live (bounded by the per-run timeout) when it is called.
type CompletionFunc func(ctx context.Context, job Job, res pipeline.Result, err error)
