package usecase

import (
	"sort"
	"time"

	"toggl-notion-sync/internal/domain"
)

// Qualify keeps completed entries that belong to a project, converts their
// timestamps to loc and orders them by start time. Later entries in the same
// run link to daily records in chronological order.
func Qualify(entries []domain.TimeEntry, loc *time.Location) []domain.TimeEntry {
	out := make([]domain.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Complete() {
			continue
		}
		out = append(out, e.In(loc))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
