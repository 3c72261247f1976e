package temperature

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoSource is returned when the service has no sample source configured.
	ErrNoSource = errors.New("no sample source configured")
	// ErrInvalidRadius is returned for a non-positive search radius.
	ErrInvalidRadius = errors.New("search radius must be greater than zero")
)

// Service wires a sample source into the estimator and keeps the history of
// watch-point estimates.
type Service struct {
	source    SampleSource
	store     Store
	publisher Publisher
	observer  Observer
	power     float64
	now       func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithPublisher forwards every stored watch-point estimate to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithObserver reports fetch timings and outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithPower sets the IDW exponent.
func WithPower(power float64) Option {
	return func(s *Service) {
		if power > 0 {
			s.power = power
		}
	}
}

// NewService creates a new Service.
func NewService(source SampleSource, store Store, opts ...Option) *Service {
	s := &Service{
		source: source,
		store:  store,
		power:  DefaultPower,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Samples fetches the raw samples around point.
func (s *Service) Samples(ctx context.Context, point GeoPoint, radiusMeters int) ([]RawSample, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	if radiusMeters <= 0 {
		return nil, ErrInvalidRadius
	}

	start := time.Now()
	samples, err := s.source.FetchSamples(ctx, point, radiusMeters)
	if s.observer != nil {
		s.observer.ObserveFetch(s.source.Name(), time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch samples from %s: %w", s.source.Name(), err)
	}
	return samples, nil
}

// EstimateAt fetches samples around point and estimates the temperature there.
// Fetch failures are returned as errors; they never become an Outcome.
func (s *Service) EstimateAt(ctx context.Context, point GeoPoint, radiusMeters int) (PointEstimate, error) {
	samples, err := s.Samples(ctx, point, radiusMeters)
	if err != nil {
		return PointEstimate{}, err
	}

	outcome := Estimate(point, samples, s.power)
	if s.observer != nil {
		s.observer.ObserveOutcome(outcome.Kind)
	}
	log.Printf("DEBUG: estimate at (%.5f, %.5f) r=%dm: %s with %d samples",
		point.Lat, point.Lon, radiusMeters, outcome.Kind, outcome.SampleCount)

	return PointEstimate{
		ID:           uuid.NewString(),
		Point:        point,
		RadiusMeters: radiusMeters,
		Timestamp:    s.now(),
		Outcome:      outcome,
	}, nil
}

// FetchAndStore estimates a watch point, saves the result and publishes it.
// Failed fetches keep the last good estimate in the store.
func (s *Service) FetchAndStore(ctx context.Context, wp WatchPoint) error {
	e, err := s.EstimateAt(ctx, wp.Point, wp.RadiusMeters)
	if err != nil {
		log.Printf("ERROR: estimate failed for watch point %s: %v", wp.Name, err)
		return err
	}
	e.WatchPoint = wp.Name

	if s.store != nil {
		s.store.SaveEstimate(wp.Name, e)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, e); err != nil {
			// The estimate is already stored; publication is best effort.
			log.Printf("ERROR: publish failed for watch point %s: %v", wp.Name, err)
		}
	}
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(name string) (PointEstimate, error) {
	return s.store.GetLatest(name)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(name string, from, to time.Time) ([]PointEstimate, error) {
	return s.store.GetRange(name, from, to)
}
