package domain

import "time"

// SyncedEntry is the ledger row for a time entry that has been written to the destination.
type SyncedEntry struct {
	EntryID     int64
	PageID      string
	ProjectID   *int64
	WorkspaceID *int64
	Title       string
	Start       time.Time
	Stop        time.Time
}

// SyncedProject is the ledger row for a project mirrored into the destination.
type SyncedProject struct {
	ID          int64
	WorkspaceID int64
	Name        string
	Emoji       string
	ClientID    *int64
	PageID      string
}
