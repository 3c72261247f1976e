package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

var (
	// ErrNotFound is returned when no estimate is available for a given watch point.
	ErrNotFound = errors.New("no estimate for watch point")
)

// EstimateHistory holds a time-ordered list of estimates for a watch point.
type EstimateHistory struct {
	Estimates []temperature.PointEstimate
}

// MemoryStore is a concurrency-safe in-memory implementation of an estimate store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: watch point name, value: history
	data map[string]*EstimateHistory

	// retention configuration
	maxHistory int           // max number of estimates per watch point
	maxAge     time.Duration // optional max age for estimates

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*EstimateHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveEstimate appends a new estimate for a watch point and enforces retention.
func (s *MemoryStore) SaveEstimate(name string, e temperature.PointEstimate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[name]
	if !ok {
		history = &EstimateHistory{}
		s.data[name] = history
	}

	history.Estimates = append(history.Estimates, e)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Estimates) > s.maxHistory {
		over := len(history.Estimates) - s.maxHistory
		history.Estimates = history.Estimates[over:]
	}

	// Enforce retention by age. The newest estimate is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Estimates)-1; i++ {
			if !history.Estimates[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history.Estimates = history.Estimates[i:]
	}
}

// GetLatest returns the most recent estimate for a watch point.
func (s *MemoryStore) GetLatest(name string) (temperature.PointEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[name]
	if !ok || len(history.Estimates) == 0 {
		return temperature.PointEstimate{}, ErrNotFound
	}
	return history.Estimates[len(history.Estimates)-1], nil
}

// GetRange returns all estimates for a watch point between from and to (inclusive).
func (s *MemoryStore) GetRange(name string, from, to time.Time) ([]temperature.PointEstimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[name]
	if !ok || len(history.Estimates) == 0 {
		return nil, ErrNotFound
	}

	var result []temperature.PointEstimate
	for _, e := range history.Estimates {
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			result = append(result, e)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
