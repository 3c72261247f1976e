package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env
	for _, k := range []string{"PORT", "SAMPLE_SOURCE", "DB_PATH", "WATCH_POINTS", "KAFKA_BROKERS", "IDW_POWER", "MAP_CENTER"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SourceSQLite, cfg.SampleSource)
	assert.Equal(t, "modis.db", cfg.DBPath)
	assert.Equal(t, 50000, cfg.DefaultRadius)
	assert.Equal(t, 2.0, cfg.Power)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 24*time.Hour, cfg.StoreMaxAge)
	assert.Equal(t, 96, cfg.StoreMaxHistory)
	assert.Equal(t, temperature.GeoPoint{Lat: -29.5, Lon: -62.1}, cfg.MapCenter)
	assert.Empty(t, cfg.WatchPoints)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SAMPLE_SOURCE", "remote")
	t.Setenv("REMOTE_SOURCE_URL", "http://samples.internal:8080")
	t.Setenv("IDW_POWER", "3")
	t.Setenv("WATCH_POINTS", "santiago:-27.78:-64.26, termas:-27.49:-64.86:20000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceRemote, cfg.SampleSource)
	assert.Equal(t, 3.0, cfg.Power)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []temperature.WatchPoint{
		{Name: "santiago", Point: temperature.GeoPoint{Lat: -27.78, Lon: -64.26}, RadiusMeters: 50000},
		{Name: "termas", Point: temperature.GeoPoint{Lat: -27.49, Lon: -64.86}, RadiusMeters: 20000},
	}, cfg.WatchPoints)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"remote without url": {"SAMPLE_SOURCE": "remote", "REMOTE_SOURCE_URL": ""},
		"unknown source":     {"SAMPLE_SOURCE": "postgres"},
		"bad power":          {"IDW_POWER": "-1"},
		"bad interval":       {"FETCH_INTERVAL": "soon"},
		"bad watch point":    {"WATCH_POINTS": "x:200:0"},
		"bad map center":     {"MAP_CENTER": "north"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseWatchPoints(t *testing.T) {
	wps, err := parseWatchPoints("", 1000)
	require.NoError(t, err)
	assert.Empty(t, wps)

	_, err = parseWatchPoints("onlyname", 1000)
	assert.Error(t, err)

	_, err = parseWatchPoints("a:1:2:-5", 1000)
	assert.Error(t, err)
}
