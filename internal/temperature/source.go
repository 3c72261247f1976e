package temperature

import (
	"context"
	"time"
)

// SampleSource abstracts where raw samples come from (SQLite, another instance, ...).
// Implementations are expected to pre-filter by planar distance:
// sqrt(Δlon²+Δlat²)*111111 <= radiusMeters.
type SampleSource interface {
	Name() string
	FetchSamples(ctx context.Context, point GeoPoint, radiusMeters int) ([]RawSample, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveEstimate(name string, e PointEstimate)
	GetLatest(name string) (PointEstimate, error)
	GetRange(name string, from, to time.Time) ([]PointEstimate, error)
}

// Publisher forwards watch-point estimates to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e PointEstimate) error
}

// Observer receives measurements about fetches and outcomes.
type Observer interface {
	ObserveFetch(source string, d time.Duration, err error)
	ObserveOutcome(kind OutcomeKind)
}

// MetersPerDegree converts planar degree distances to meters for radius filtering.
const MetersPerDegree = 111111.0

// WithinRadius reports whether sample lies within radiusMeters of point
// using the same planar approximation the sources apply.
func WithinRadius(point, sample GeoPoint, radiusMeters int) bool {
	return Distance(point, sample)*MetersPerDegree <= float64(radiusMeters)
}
