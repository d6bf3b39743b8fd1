package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"toggl-notion-sync/internal/domain"
	"toggl-notion-sync/internal/ports"
)

// MaxLookback is the furthest back the Toggl API serves time entries.
const MaxLookback = 90 * 24 * time.Hour

var (
	ErrNotInitialized = errors.New("usecase not initialized: missing dependencies")
	// ErrCheckpoint means the latest synced record could not be read.
	ErrCheckpoint = errors.New("reading checkpoint")
	// ErrFetchEntries means the time entry list could not be fetched; nothing was written.
	ErrFetchEntries = errors.New("fetching time entries")
	// ErrWrite means a destination write failed; entries after it were not processed.
	ErrWrite = errors.New("writing to destination")
	// ErrInvalidWindow means an explicit start lies after the end.
	ErrInvalidWindow = errors.New("invalid sync window")
)

// SyncUseCase coordinates fetching from Toggl and writing pages to the Store.
type SyncUseCase struct {
	Log   *slog.Logger
	Toggl ports.TogglClient
	Store ports.Store
	// Ledger is optional; without it no cross-run duplicate check is made.
	Ledger ports.Ledger
	// Clock defaults to the system clock.
	Clock ports.Clock
	// Location is the timezone entries are converted to. Defaults to UTC.
	Location *time.Location
	// TagIcon is the icon of newly created tag records.
	TagIcon domain.Icon
	// DefaultWorkspace is used for entries that carry no workspace ID.
	DefaultWorkspace int64
}

// Run syncs entries that started in [from, to]. A zero from resumes at the
// checkpoint; a zero to means now.
func (uc *SyncUseCase) Run(ctx context.Context, from, to time.Time) (report domain.Report, err error) {
	if uc.Toggl == nil || uc.Store == nil || uc.Log == nil {
		return report, ErrNotInitialized
	}
	loc := uc.Location
	if loc == nil {
		loc = time.UTC
	}
	ledger := uc.Ledger
	if ledger == nil {
		ledger = nopLedger{}
	}

	now := uc.now().In(loc)
	if to.IsZero() {
		to = now
	}
	if !from.IsZero() && from.After(to) {
		return report, fmt.Errorf("%w: from %s is after to %s", ErrInvalidWindow,
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	if from.IsZero() {
		checkpoint, err := uc.Checkpoint(ctx, now)
		if err != nil {
			return report, err
		}
		from = checkpoint
	}
	from, to = from.In(loc), to.In(loc)

	uc.Log.Info("fetching time entries", slog.Time("from", from), slog.Time("to", to))
	entries, err := uc.Toggl.ListTimeEntries(ctx, from, to)
	if err != nil {
		uc.Log.Error("get toggl data error", slog.String("error", err.Error()))
		return report, fmt.Errorf("%w: %w", ErrFetchEntries, err)
	}
	report.Fetched = len(entries)

	qualified := Qualify(entries, loc)
	report.Qualified = len(qualified)
	uc.Log.Info("fetched time entries", slog.Int("count", report.Fetched), slog.Int("qualified", report.Qualified))

	r := newResolver(uc.Log, uc.Toggl, uc.Store, ledger, uc.TagIcon, uc.DefaultWorkspace)
	defer func() {
		report.ProjectFetches = r.projectFetches
		report.ClientFetches = r.clientFetches
	}()

	for _, e := range qualified {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome := uc.syncEntry(ctx, r, ledger, e)
		report.Add(outcome)
		if outcome.Status == domain.StatusFailed {
			uc.Log.Error("failed to write entry, stopping run",
				slog.Int64("entry_id", e.ID), slog.String("error", outcome.Err.Error()))
			return report, fmt.Errorf("%w: entry %d: %w", ErrWrite, e.ID, outcome.Err)
		}
	}

	uc.Log.Info("sync completed",
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("project_fetches", r.projectFetches),
		slog.Int("client_fetches", r.clientFetches),
	)
	return report, nil
}

// Checkpoint returns where the next run starts: the end of the latest synced
// record, never earlier than MaxLookback before now.
func (uc *SyncUseCase) Checkpoint(ctx context.Context, now time.Time) (time.Time, error) {
	floor := now.Add(-MaxLookback)
	end, ok, err := uc.Store.LatestRecordEnd(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrCheckpoint, err)
	}
	if !ok {
		uc.Log.Info("no synced records, starting from lookback limit", slog.Time("from", floor))
		return floor, nil
	}
	if end.Before(floor) {
		uc.Log.Warn("checkpoint older than lookback limit", slog.Time("checkpoint", end), slog.Time("from", floor))
		return floor, nil
	}
	return end, nil
}

func (uc *SyncUseCase) syncEntry(ctx context.Context, r *resolver, ledger ports.Ledger, e domain.TimeEntry) domain.Outcome {
	if pageID, ok, err := ledger.Lookup(ctx, e.ID); err != nil {
		uc.Log.Warn("ledger lookup failed", slog.Int64("entry_id", e.ID), slog.String("error", err.Error()))
	} else if ok {
		uc.Log.Debug("entry already synced", slog.Int64("entry_id", e.ID), slog.String("page_id", pageID))
		return domain.Duplicate(e.ID, pageID)
	}

	rec, err := r.resolve(ctx, e)
	var s *skip
	if errors.As(err, &s) {
		uc.Log.Warn("skipping entry", slog.Int64("entry_id", e.ID), slog.String("reason", s.reason))
		return domain.Skipped(e.ID, s.reason)
	}
	if err != nil {
		return domain.Failed(e.ID, err)
	}

	pageID, err := uc.Store.CreateTimeRecord(ctx, rec)
	if err != nil {
		return domain.Failed(e.ID, fmt.Errorf("create page: %w", err))
	}
	uc.Log.Info("created time record", slog.Int64("entry_id", e.ID), slog.String("title", rec.Title))

	if err := ledger.RecordEntry(ctx, domain.SyncedEntry{
		EntryID:     e.ID,
		PageID:      pageID,
		ProjectID:   e.ProjectID,
		WorkspaceID: e.WorkspaceID,
		Title:       rec.Title,
		Start:       rec.Start,
		Stop:        rec.Stop,
	}); err != nil {
		uc.Log.Warn("failed to record entry in ledger", slog.Int64("entry_id", e.ID), slog.String("error", err.Error()))
	}
	return domain.Created(e.ID, pageID)
}

func (uc *SyncUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now()
	}
	return time.Now()
}

type nopLedger struct{}

func (nopLedger) Lookup(context.Context, int64) (string, bool, error) { return "", false, nil }
func (nopLedger) RecordEntry(context.Context, domain.SyncedEntry) error { return nil }
func (nopLedger) RecordProject(context.Context, domain.SyncedProject) error { return nil }
