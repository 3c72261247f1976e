package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/modis-temperature/internal/db"
	"github.com/i474232898/modis-temperature/internal/temperature"
)

var fastBackoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

func i64(v int64) *int64 { return &v }

func TestRemoteSourceFetchSamples(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First call fails to exercise the retry path.
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "/api/v1/samples", r.URL.Path)
		assert.Equal(t, "-29.5", r.URL.Query().Get("lat"))
		assert.Equal(t, "-62.1", r.URL.Query().Get("lon"))
		assert.Equal(t, "50000", r.URL.Query().Get("radius"))

		json.NewEncoder(w).Encode(map[string]any{
			"samples": []temperature.RawSample{
				{Lat: -29.4, Lon: -62.1, EncodedT31: i64(15000), EncodedT21: i64(14800)},
				{Lat: -29.6, Lon: -62.1, EncodedT31: i64(15100)},
			},
		})
	}))
	defer srv.Close()

	src := NewRemoteSource(srv.Client(), srv.URL+"/")
	src.httpCfg.Backoff = fastBackoff

	got, err := src.FetchSamples(context.Background(), temperature.GeoPoint{Lat: -29.5, Lon: -62.1}, 50000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(15000), *got[0].EncodedT31)
	assert.Nil(t, got[1].EncodedT21)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "remote", src.Name())
}

func TestRemoteSourceGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewRemoteSource(srv.Client(), srv.URL)
	src.httpCfg.Backoff = fastBackoff

	_, err := src.FetchSamples(context.Background(), temperature.GeoPoint{}, 1000)
	assert.ErrorIs(t, err, errServerError)
	assert.Equal(t, int32(fastBackoff.MaxRetries+1), calls.Load())
}

func TestRemoteSourceClientErrorNotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	src := NewRemoteSource(srv.Client(), srv.URL)
	src.httpCfg.Backoff = BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond}

	_, err := src.FetchSamples(context.Background(), temperature.GeoPoint{}, 1000)
	assert.ErrorIs(t, err, errUnexpected)
}

func TestSourcesRejectNonPositiveRadius(t *testing.T) {
	_, err := NewRemoteSource(http.DefaultClient, "http://localhost").FetchSamples(context.Background(), temperature.GeoPoint{}, 0)
	assert.ErrorIs(t, err, errInvalidRadius)

	_, err = NewDatabaseSource(nil, 0).FetchSamples(context.Background(), temperature.GeoPoint{}, -5)
	assert.ErrorIs(t, err, errInvalidRadius)
}

func TestDatabaseSourceFetchSamples(t *testing.T) {
	ctx := context.Background()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "modis.db"))
	require.NoError(t, err)
	defer database.Close()

	_, err = database.InsertSamples(ctx, []temperature.RawSample{
		{Lat: 0.001, Lon: 0, EncodedT31: i64(300), EncodedT21: i64(250)},
		{Lat: 0.002, Lon: 0, EncodedT31: i64(310), EncodedT21: i64(260)},
		{Lat: 5, Lon: 5, EncodedT31: i64(310), EncodedT21: i64(260)},
	})
	require.NoError(t, err)

	src := NewDatabaseSource(database, 1)
	got, err := src.FetchSamples(ctx, temperature.GeoPoint{}, 50000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.001, got[0].Lat)
	assert.Equal(t, "sqlite", src.Name())

	// End to end through the estimator.
	o := temperature.Estimate(temperature.GeoPoint{}, got, temperature.DefaultPower)
	assert.Equal(t, 5.5, o.AvgC)
}

func TestWithResilienceOpenCircuit(t *testing.T) {
	cb := newBreaker("test")
	boom := errors.New("boom")

	// gobreaker trips after more than five consecutive failures by default.
	for i := 0; i < 6; i++ {
		_, err := withResilience(context.Background(), BackoffConfig{InitialInterval: time.Millisecond}, cb, func() (int, error) {
			return 0, boom
		})
		require.ErrorIs(t, err, boom)
	}

	_, err := withResilience(context.Background(), fastBackoff, cb, func() (int, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, errCircuitOpen)
}

func TestWithResilienceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := withResilience(ctx, fastBackoff, newBreaker("ctx"), func() (int, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithResilienceRejectsBadBackoff(t *testing.T) {
	_, err := withResilience(context.Background(), BackoffConfig{MaxRetries: -1, InitialInterval: time.Millisecond}, newBreaker("bad"), func() (int, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, errInvalidConfig)
}
