package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishSuccessEstimate(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "modis.estimates")

	e := temperature.PointEstimate{
		ID:           "id-1",
		WatchPoint:   "santiago",
		Point:        temperature.GeoPoint{Lat: -27.78, Lon: -64.26},
		RadiusMeters: 50000,
		Timestamp:    time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Outcome: temperature.Outcome{
			Kind: temperature.OutcomeSuccess, MinC: 5, MaxC: 6, AvgC: 5.5, Confidence: 1, SampleCount: 2,
		},
	}
	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "santiago", string(w.msgs[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "success", got["outcome"])
	assert.Equal(t, 5.5, got["temperatura_promedio"])
	assert.Equal(t, 2.0, got["num_puntos_usados"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishNoDataHasNullTemperatures(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "t")

	require.NoError(t, p.Publish(context.Background(), temperature.PointEstimate{
		WatchPoint: "empty",
		Outcome:    temperature.Outcome{Kind: temperature.OutcomeNoData},
	}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Nil(t, got["temperatura_minima"])
	assert.Equal(t, "no_data", got["outcome"])
	assert.Equal(t, "no data near point.", got["mensaje"])
}

func TestPublishUsesResponseFieldNames(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "t")
	require.NoError(t, p.Publish(context.Background(), temperature.PointEstimate{
		WatchPoint: "santiago",
		Outcome:    temperature.Outcome{Kind: temperature.OutcomeSuccess, MinC: 1, MaxC: 2, AvgC: 1.5},
	}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	for _, key := range []string{
		"temperatura_minima", "temperatura_maxima", "temperatura_promedio",
		"confianza", "num_puntos_usados", "mensaje", "watch_point", "radio",
	} {
		assert.Contains(t, got, key)
	}
	for _, key := range []string{"temperaturaMinima", "numPuntosUsados", "watchPoint"} {
		assert.NotContains(t, got, key)
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaPublisher(&fakeWriter{err: boom}, "t")
	assert.ErrorIs(t, p.Publish(context.Background(), temperature.PointEstimate{}), boom)
}

func TestDisabledPublisher(t *testing.T) {
	p := NewKafkaPublisher(nil, "t")
	assert.Nil(t, p)
	assert.NoError(t, p.Publish(context.Background(), temperature.PointEstimate{}))
	assert.NoError(t, p.Close())
}
