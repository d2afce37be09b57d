/*
digest.go - Weekly digest scheduler

PURPOSE:
  Computes and persists a billing digest for the current Monday-Sunday
  week on a cron schedule. The office settles tabs on Friday evening, so
  the default schedule fires then; the digest for a week is upserted, so
  re-runs (or a manual RunNow) simply refresh it.

DESIGN:
  - robfig/cron drives the schedule
  - Each run recomputes the week's report from the store and collapses
    it via billing.DigestOf
  - The digest week is derived from the injected clock so tests can pin
    the week being summarized

USAGE:
  sched := NewDigestScheduler(handler, "0 20 * * 5")
  if err := sched.Start(); err != nil { ... }
  // ... later
  sched.Stop()

SEE ALSO:
  - billing/digest.go: WeeklyDigest and DigestOf
  - handlers.go: ListDigests endpoint
*/
package api

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/warp/canteen-engine/billing"
)

// DefaultDigestSchedule fires Friday at 20:00 local time.
const DefaultDigestSchedule = "0 20 * * 5"

// DigestScheduler persists a weekly billing digest on a cron schedule.
type DigestScheduler struct {
	handler  *Handler
	schedule string
	cron     *cron.Cron
}

// NewDigestScheduler creates a scheduler. An empty schedule selects the
// default Friday-evening run.
func NewDigestScheduler(h *Handler, schedule string) *DigestScheduler {
	if schedule == "" {
		schedule = DefaultDigestSchedule
	}
	return &DigestScheduler{handler: h, schedule: schedule}
}

// Start registers the cron entry and begins the schedule.
func (ds *DigestScheduler) Start() error {
	ds.cron = cron.New()
	if _, err := ds.cron.AddFunc(ds.schedule, func() {
		if err := ds.RunNow(context.Background()); err != nil {
			ds.handler.Log.Error().Err(err).Msg("weekly digest run failed")
		}
	}); err != nil {
		return err
	}
	ds.cron.Start()
	ds.handler.Log.Info().Str("schedule", ds.schedule).Msg("digest scheduler started")
	return nil
}

// Stop halts the schedule. Safe to call before Start.
func (ds *DigestScheduler) Stop() {
	if ds.cron != nil {
		ds.cron.Stop()
		ds.handler.Log.Info().Msg("digest scheduler stopped")
	}
}

// RunNow computes and persists the digest for the current week.
func (ds *DigestScheduler) RunNow(ctx context.Context) error {
	h := ds.handler
	now := h.Now()
	weekStart, weekEnd := billing.WeekOf(h.today())

	in, err := h.loadInputCtx(ctx, weekStart, weekEnd)
	if err != nil {
		return err
	}
	report, err := billing.Compute(in)
	if err != nil {
		return err
	}

	digest := billing.DigestOf(report, weekStart, weekEnd, now)
	if err := h.Digests.SaveWeeklyDigest(ctx, digest); err != nil {
		return err
	}

	h.Log.Info().
		Str("week_start", string(weekStart)).
		Str("week_end", string(weekEnd)).
		Str("grand_total", digest.GrandTotal.String()).
		Msg("weekly digest saved")
	return nil
}
