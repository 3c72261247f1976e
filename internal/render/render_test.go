package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

func i64(v int64) *int64 { return &v }

func TestSamplesChart(t *testing.T) {
	var buf bytes.Buffer
	err := SamplesChart(&buf, temperature.GeoPoint{Lat: -29.5, Lon: -62.1}, 50000, []temperature.RawSample{
		{Lat: -29.4, Lon: -62.1, EncodedT31: i64(15000)},
		{Lat: -29.6, Lon: -62.0, EncodedT31: i64(15100)},
		{Lat: -29.7, Lon: -62.0},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "MODIS samples")
	assert.Contains(t, html, "points=2")
}

func TestSamplesChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SamplesChart(&buf, temperature.GeoPoint{}, 1000, nil))
	assert.Contains(t, buf.String(), "points=0")
}

func TestHistoryPlot(t *testing.T) {
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	var estimates []temperature.PointEstimate
	for i := 0; i < 4; i++ {
		estimates = append(estimates, temperature.PointEstimate{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Outcome: temperature.Outcome{
				Kind: temperature.OutcomeSuccess, MinC: float64(10 + i), MaxC: float64(12 + i), AvgC: float64(11 + i),
			},
		})
	}
	estimates = append(estimates, temperature.PointEstimate{Timestamp: base.Add(time.Hour), Outcome: temperature.Outcome{Kind: temperature.OutcomeNoData}})

	var buf bytes.Buffer
	require.NoError(t, HistoryPlot(&buf, "santiago", estimates))

	_, err := png.Decode(&buf)
	assert.NoError(t, err)
}

func TestHistoryPlotNothingToDraw(t *testing.T) {
	var buf bytes.Buffer
	err := HistoryPlot(&buf, "empty", []temperature.PointEstimate{{Outcome: temperature.Outcome{Kind: temperature.OutcomeNoData}}})
	assert.ErrorIs(t, err, ErrNoSuccessfulEstimates)
}
