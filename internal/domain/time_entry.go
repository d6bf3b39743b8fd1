package domain

import "time"

// TimeEntry represents a Toggl time entry in the domain.
type TimeEntry struct {
	ID          int64
	Description string
	ProjectID   *int64
	WorkspaceID *int64
	Tags        []string
	Start       time.Time
	Stop        *time.Time
	DurationSec int64 // Negative means running in Toggl API semantics
}

// Complete reports whether the entry is attached to a project and has stopped.
// Running entries and entries without a project are not synced.
func (e TimeEntry) Complete() bool {
	return e.ProjectID != nil && e.Stop != nil
}

// In returns a copy of e with start and stop converted to loc.
func (e TimeEntry) In(loc *time.Location) TimeEntry {
	e.Start = e.Start.In(loc)
	if e.Stop != nil {
		stop := e.Stop.In(loc)
		e.Stop = &stop
	}
	return e
}
