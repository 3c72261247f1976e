package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

type fakeEstimator struct {
	mu    sync.Mutex
	seen  []string
	fail  map[string]bool
	calls chan struct{}
}

func (f *fakeEstimator) FetchAndStore(ctx context.Context, wp temperature.WatchPoint) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	f.mu.Lock()
	f.seen = append(f.seen, wp.Name)
	f.mu.Unlock()
	if f.calls != nil {
		f.calls <- struct{}{}
	}
	if f.fail[wp.Name] {
		return errors.New("source down")
	}
	return nil
}

func watchPoints(names ...string) []temperature.WatchPoint {
	var wps []temperature.WatchPoint
	for _, n := range names {
		wps = append(wps, temperature.WatchPoint{Name: n, RadiusMeters: 1000})
	}
	return wps
}

func TestRunOnceVisitsEveryWatchPoint(t *testing.T) {
	est := &fakeEstimator{fail: map[string]bool{"b": true}}
	s := New(watchPoints("a", "b", "c"), time.Minute, est)

	failed := s.RunOnce()

	assert.Equal(t, 1, failed)
	sort.Strings(est.seen)
	assert.Equal(t, []string{"a", "b", "c"}, est.seen)
}

func TestStartRunsImmediately(t *testing.T) {
	est := &fakeEstimator{calls: make(chan struct{}, 4)}
	s := New(watchPoints("a"), time.Hour, est)
	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-est.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("watch point was not estimated on start")
	}
}

func TestStartWithoutWatchPoints(t *testing.T) {
	s := New(nil, time.Minute, &fakeEstimator{})
	assert.NoError(t, s.Start())
	s.Stop()
}
