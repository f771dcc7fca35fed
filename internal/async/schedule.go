package async

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/pipeline"
)

// ScheduleParser accepts standard 5-field cron expressions
// (minute hour day-of-month month day-of-week), e.g. "0 9 * * 1-5".
var ScheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// SchedulePortalScans returns a stopped cron that enqueues a portal scan of
// url on every tick of schedule. Call Start to begin and Stop to end.
func SchedulePortalScans(schedule, url string, q Queue, logger *slog.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schedule = strings.TrimSpace(schedule)
	if _, err := ScheduleParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid portal scan schedule %q: %w", schedule, err)
	}

	c := cron.New(cron.WithParser(ScheduleParser))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		job := Job{
			Source: "cron",
			Input:  pipeline.Input{Mode: constants.ModePortalScan, PortalURL: url},
		}
		if err := q.Enqueue(ctx, job); err != nil {
			logger.Warn("schedule.portal_scan.enqueue_failed", "url", url, "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	logger.Info("schedule.portal_scan.registered", "cron", schedule, "url", url)
	return c, nil
}
