package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-notion-sync/internal/domain"
)

func TestQualify(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := entry(1, 42, base.Add(2*time.Hour), time.Hour)
	b := entry(2, 42, base, time.Hour)
	c := entry(3, 42, base, 30*time.Minute) // same start as b, keeps input order
	running := entry(4, 42, base.Add(-time.Hour), time.Hour)
	running.Stop = nil
	orphan := entry(5, 42, base.Add(-2*time.Hour), time.Hour)
	orphan.ProjectID = nil

	got := Qualify([]domain.TimeEntry{a, running, b, orphan, c}, shanghai)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{got[0].ID, got[1].ID, got[2].ID})
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Start.Before(got[i-1].Start))
	}
	assert.Equal(t, shanghai, got[0].Start.Location())
	assert.Equal(t, shanghai, got[0].Stop.Location())
}

func TestQualify_Empty(t *testing.T) {
	assert.Empty(t, Qualify(nil, time.UTC))
}
