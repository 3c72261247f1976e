package sources

import (
	"context"

	"github.com/sony/gobreaker"

	"github.com/i474232898/modis-temperature/internal/db"
	"github.com/i474232898/modis-temperature/internal/temperature"
)

// DatabaseSource implements temperature.SampleSource over the local SQLite store.
type DatabaseSource struct {
	name    string
	db      *db.DB
	limit   int
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewDatabaseSource creates a source reading from database. limit caps the
// number of samples returned per query; 0 means no cap.
func NewDatabaseSource(database *db.DB, limit int) *DatabaseSource {
	return &DatabaseSource{
		name:    "sqlite",
		db:      database,
		limit:   limit,
		backoff: DefaultBackoff,
		circuit: newBreaker("sqlite"),
	}
}

func (s *DatabaseSource) Name() string {
	return s.name
}

func (s *DatabaseSource) FetchSamples(ctx context.Context, point temperature.GeoPoint, radiusMeters int) ([]temperature.RawSample, error) {
	if radiusMeters <= 0 {
		return nil, errInvalidRadius
	}
	return withResilience(ctx, s.backoff, s.circuit, func() ([]temperature.RawSample, error) {
		return s.db.SamplesNear(ctx, point, radiusMeters, s.limit)
	})
}
