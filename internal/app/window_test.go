package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStart(t *testing.T) {
	got, err := ParseStart("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = ParseStart("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseStart("2024-03-05T10:00:00+08:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC)))

	_, err = ParseStart("last week")
	assert.Error(t, err)
}

func TestParseEnd(t *testing.T) {
	got, err := ParseEnd("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseEnd("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseEnd("2024/02/28")
	assert.Error(t, err)
}

func TestNextMidnight(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc), nextMidnight(time.Date(2024, 1, 1, 15, 4, 5, 0, loc)))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, loc), nextMidnight(time.Date(2024, 1, 1, 0, 0, 0, 0, loc)))
}
