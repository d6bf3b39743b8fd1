package app

import (
	"context"
	"log/slog"
	"time"
)

// RunDaily runs a sync at every local midnight in loc until ctx is done.
func (a *App) RunDaily(ctx context.Context, loc *time.Location) {
	a.log.Info("starting daily sync at midnight", slog.String("tz", loc.String()))
	for {
		next := nextMidnight(time.Now().In(loc))
		dur := time.Until(next)
		a.log.Info("sleeping until next midnight", slog.Time("next", next), slog.Duration("sleep", dur))
		select {
		case <-ctx.Done():
			a.log.Info("shutting down")
			return
		case <-time.After(dur):
			a.runScheduled(ctx, "daily")
		}
	}
}

// RunEvery runs a sync immediately and then every interval until ctx is done.
func (a *App) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	a.log.Info("starting periodic sync", slog.Duration("interval", interval))
	a.runScheduled(ctx, "initial")
	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutting down")
			return
		case <-ticker.C:
			a.runScheduled(ctx, "periodic")
		}
	}
}

func (a *App) runScheduled(ctx context.Context, kind string) {
	report, err := a.RunOnce(ctx, time.Time{}, time.Time{})
	if err != nil {
		a.log.Error(kind+" sync failed", slog.String("error", err.Error()))
		return
	}
	a.log.Info(kind+" sync completed", slog.Int("created", report.Created), slog.Int("skipped", report.Skipped))
}
