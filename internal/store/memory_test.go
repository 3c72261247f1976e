package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

func estimateAt(id string, ts time.Time) temperature.PointEstimate {
	return temperature.PointEstimate{ID: id, Timestamp: ts}
}

func TestMemoryStoreLatestAndRange(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.GetLatest("a")
	assert.ErrorIs(t, err, ErrNotFound)

	for i, id := range []string{"1", "2", "3"} {
		s.SaveEstimate("a", estimateAt(id, base.Add(time.Duration(i)*time.Hour)))
	}

	latest, err := s.GetLatest("a")
	require.NoError(t, err)
	assert.Equal(t, "3", latest.ID)

	got, err := s.GetRange("a", base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	_, err = s.GetRange("a", base.Add(5*time.Hour), base.Add(6*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetRange("b", base, base)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	now := time.Now().UTC()
	for _, id := range []string{"1", "2", "3"} {
		s.SaveEstimate("a", estimateAt(id, now))
	}

	got, err := s.GetRange("a", now, now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveEstimate("a", estimateAt("old", now.Add(-3*time.Hour)))
	s.SaveEstimate("a", estimateAt("recent", now.Add(-30*time.Minute)))
	s.SaveEstimate("a", estimateAt("new", now))

	got, err := s.GetRange("a", time.Time{}, now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "recent", got[0].ID)

	// Even a stale estimate stays when it is the only one.
	s.SaveEstimate("b", estimateAt("stale", now.Add(-48*time.Hour)))
	latest, err := s.GetLatest("b")
	require.NoError(t, err)
	assert.Equal(t, "stale", latest.ID)
}
