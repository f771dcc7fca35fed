package main

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/async"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/export"
	"github.com/joseph-ayodele/rfp-desk/internal/ingest"
	"github.com/joseph-ayodele/rfp-desk/internal/pipeline"
)

// feedInbox turns watcher paths into free-text jobs until the watcher closes.
func feedInbox(ctx context.Context, paths <-chan string, errs <-chan error, q async.Queue, logger *slog.Logger) {
	for {
		select {
		case p, ok := <-paths:
			if !ok {
				return
			}
			text, err := ingest.ReadRFP(p)
			if err != nil {
				logger.Warn("inbox.read.failed", "path", p, "error", err)
				continue
			}
			job := async.Job{Source: p, Input: pipeline.Input{Mode: constants.ModeFreeText, Text: text}}
			if err := q.Enqueue(ctx, job); err != nil {
				logger.Warn("inbox.enqueue.failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("inbox.watch.error", "error", err)
		}
	}
}

// completion writes a quote workbook for every run that produced pricing and
// reports failed runs with their gRPC status code.
func completion(exp *export.Service, dir string, logger *slog.Logger) async.CompletionFunc {
	return func(ctx context.Context, job async.Job, res pipeline.Result, err error) {
		if err != nil {
			st := common.ToStatus(err)
			logger.Error("run.failed",
				"job_id", job.ID,
				"source", job.Source,
				"run_id", res.RunID,
				"code", st.Code().String(),
				"error", st.Message(),
			)
		}
		if res.Pricing == nil {
			return
		}
		path, werr := exp.WriteFile(ctx, dir, res.Snapshot)
		if werr != nil {
			logger.Error("run.export.failed", "job_id", job.ID, "run_id", res.RunID, "error", werr)
			return
		}
		logger.Info("run.exported",
			"job_id", job.ID,
			"source", job.Source,
			"run_id", res.RunID,
			"complete", res.Complete,
			"integrity", res.Integrity.Index,
			"band", res.Integrity.Band,
			"path", path,
		)
	}
}
