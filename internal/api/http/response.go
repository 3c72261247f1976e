package httpapi

import (
	"time"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

// temperatureResponse is the six-field body of /temperatura. Temperatures are
// null unless the estimate succeeded.
type temperatureResponse struct {
	MinC        *float64 `json:"temperatura_minima"`
	MaxC        *float64 `json:"temperatura_maxima"`
	AvgC        *float64 `json:"temperatura_promedio"`
	Confidence  float64  `json:"confianza"`
	SampleCount int      `json:"num_puntos_usados"`
	Message     string   `json:"mensaje"`
}

func newTemperatureResponse(o temperature.Outcome) temperatureResponse {
	r := temperatureResponse{
		Confidence:  o.Confidence,
		SampleCount: o.SampleCount,
		Message:     o.Message(),
	}
	if o.OK() {
		minC, maxC, avgC := o.MinC, o.MaxC, o.AvgC
		r.MinC, r.MaxC, r.AvgC = &minC, &maxC, &avgC
	}
	return r
}

// estimateResponse extends temperatureResponse with the request that produced it.
type estimateResponse struct {
	temperatureResponse
	ID         string    `json:"id"`
	WatchPoint string    `json:"watch_point,omitempty"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Radius     int       `json:"radio"`
	Outcome    string    `json:"outcome"`
	Timestamp  time.Time `json:"timestamp"`
}

func newEstimateResponse(e temperature.PointEstimate) estimateResponse {
	return estimateResponse{
		temperatureResponse: newTemperatureResponse(e.Outcome),
		ID:                  e.ID,
		WatchPoint:          e.WatchPoint,
		Lat:                 e.Point.Lat,
		Lon:                 e.Point.Lon,
		Radius:              e.RadiusMeters,
		Outcome:             string(e.Outcome.Kind),
		Timestamp:           e.Timestamp,
	}
}
