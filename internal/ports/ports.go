package ports

import (
	"context"
	"time"

	"toggl-notion-sync/internal/domain"
)

// TogglClient defines methods to fetch time entries and their references from Toggl.
type TogglClient interface {
	ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error)
	GetProject(ctx context.Context, workspaceID, projectID int64) (domain.Project, error)
	GetClient(ctx context.Context, workspaceID, clientID int64) (domain.Client, error)
}

// Store is the destination page-and-property store.
type Store interface {
	// LatestRecordEnd returns the end of the most recent time record, or ok=false
	// when the time database is empty.
	LatestRecordEnd(ctx context.Context) (end time.Time, ok bool, err error)
	// Has reports whether the collection is configured.
	Has(c domain.Collection) bool
	// GetOrCreate looks a record up by name and creates it when absent.
	GetOrCreate(ctx context.Context, c domain.Collection, rec domain.RelatedRecord) (string, error)
	// CreateTimeRecord inserts the page for one time entry.
	CreateTimeRecord(ctx context.Context, rec domain.TimeRecord) (string, error)
}

// Ledger remembers which entries have already been written.
type Ledger interface {
	Lookup(ctx context.Context, entryID int64) (pageID string, ok bool, err error)
	RecordEntry(ctx context.Context, e domain.SyncedEntry) error
	RecordProject(ctx context.Context, p domain.SyncedProject) error
}

// Clock abstracts time to keep sync runs deterministic in tests.
type Clock interface {
	Now() time.Time
}
