package temperature

import (
	"time"

	"github.com/paulmach/orb"
)

// GeoPoint is a decimal-degree coordinate. No validity range is enforced here;
// the transport layer rejects out-of-range values before they reach the engine.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Orb returns the point in orb's (x=lon, y=lat) order.
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// RawSample is one sensor record as stored by the data source.
// A nil channel means the sensor had no reading for it.
type RawSample struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	EncodedT31 *int64  `json:"fp_t31"`
	EncodedT21 *int64  `json:"fp_t21"`
}

// Point returns the sample location.
func (s RawSample) Point() GeoPoint {
	return GeoPoint{Lat: s.Lat, Lon: s.Lon}
}

// DecodedSample is a RawSample with both channels converted to Celsius.
type DecodedSample struct {
	Lat        float64
	Lon        float64
	CelsiusT31 *float64
	CelsiusT21 *float64
}

// Point returns the sample location.
func (s DecodedSample) Point() GeoPoint {
	return GeoPoint{Lat: s.Lat, Lon: s.Lon}
}

// WeightedSample is a decoded sample admitted into interpolation:
// both channels present and a strictly positive distance from the query.
type WeightedSample struct {
	Distance   float64
	Weight     float64
	CelsiusT31 float64
	CelsiusT21 float64
}

// OutcomeKind tags an Outcome.
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeNoData         OutcomeKind = "no_data"
	OutcomeNoValidSamples OutcomeKind = "no_valid_samples"
)

// Outcome is the result of a single estimation.
// Temperatures are only meaningful when Kind is OutcomeSuccess.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	MinC        float64     `json:"minC"`
	MaxC        float64     `json:"maxC"`
	AvgC        float64     `json:"avgC"`
	Confidence  float64     `json:"confidence"`
	SampleCount int         `json:"sampleCount"`
}

// OK reports whether the outcome carries temperatures.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// Message is the human-readable status for the outcome; empty on success.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeNoData:
		return "no data near point."
	case OutcomeNoValidSamples:
		return "could not interpolate."
	default:
		return ""
	}
}

// WatchPoint is a named location that is estimated periodically.
type WatchPoint struct {
	Name         string   `json:"name"`
	Point        GeoPoint `json:"point"`
	RadiusMeters int      `json:"radiusMeters"`
}

// PointEstimate is an Outcome together with the request that produced it.
type PointEstimate struct {
	ID           string    `json:"id"`
	WatchPoint   string    `json:"watchPoint,omitempty"`
	Point        GeoPoint  `json:"point"`
	RadiusMeters int       `json:"radiusMeters"`
	Timestamp    time.Time `json:"timestamp"` // always UTC
	Outcome      Outcome   `json:"outcome"`
}
