package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

var (
	// ErrDisabled is returned when no geocoder API key is configured.
	ErrDisabled = errors.New("geocoding disabled: no API key configured")
	// ErrEmptyAddress is returned when an address has no usable component.
	ErrEmptyAddress = errors.New("address requires at least a city or street")
)

// Address is a free-form postal address.
type Address struct {
	Street  string
	City    string
	State   string
	Country string
}

func (a Address) empty() bool {
	return strings.TrimSpace(a.Street) == "" && strings.TrimSpace(a.City) == ""
}

// Geocoder resolves an address to a point.
type Geocoder interface {
	Geocode(ctx context.Context, addr Address) (temperature.GeoPoint, error)
}

// GoogleGeocoder resolves addresses through the Google Geocoding API.
type GoogleGeocoder struct {
	enabled bool
	circuit *gobreaker.CircuitBreaker
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

var _ Geocoder = (*GoogleGeocoder)(nil)

// NewGoogleGeocoder configures the package-level geocoder key. An empty key
// yields a geocoder that always returns ErrDisabled.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &GoogleGeocoder{
		enabled: apiKey != "",
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "geocoder",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		lookup: geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, addr Address) (temperature.GeoPoint, error) {
	if !g.enabled {
		return temperature.GeoPoint{}, ErrDisabled
	}
	if addr.empty() {
		return temperature.GeoPoint{}, ErrEmptyAddress
	}
	if err := ctx.Err(); err != nil {
		return temperature.GeoPoint{}, err
	}

	// The geocoder library takes no context, so the lookup runs in its own
	// goroutine and is abandoned when ctx is done.
	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := g.circuit.Execute(func() (interface{}, error) {
			return g.lookup(geocoder.Address{
				Street:  addr.Street,
				City:    addr.City,
				State:   addr.State,
				Country: addr.Country,
			})
		})
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{loc: res.(geocoder.Location)}
	}()

	select {
	case <-ctx.Done():
		return temperature.GeoPoint{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return temperature.GeoPoint{}, fmt.Errorf("geocode %q: %w", addr.City+" "+addr.Street, r.err)
		}
		return temperature.GeoPoint{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}
