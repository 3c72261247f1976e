package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

const (
	SourceSQLite = "sqlite"
	SourceRemote = "remote"
)

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// Sample source selection.
	SampleSource    string `validate:"oneof=sqlite remote"`
	DBPath          string `validate:"required_if=SampleSource sqlite"`
	RemoteSourceURL string `validate:"omitempty,url"`
	SampleLimit     int    `validate:"gte=0"` // 0 = unlimited

	// Estimation defaults.
	DefaultRadius int     `validate:"gt=0"` // meters
	Power         float64 `validate:"gt=0"`

	HTTPTimeout time.Duration `validate:"gt=0"`

	// FetchInterval controls how often watch points are re-estimated.
	FetchInterval time.Duration `validate:"gt=0"`

	// WatchPoints to estimate periodically.
	WatchPoints []temperature.WatchPoint `validate:"dive"`

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max number of estimates per watch point (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of estimates (0 = unlimited)

	GeocoderAPIKey string

	KafkaBrokers []string
	KafkaTopic   string `validate:"required_with=KafkaBrokers"`

	CORSAllowOrigins string `validate:"required"`

	MapCenter temperature.GeoPoint
	MapZoom   int `validate:"gte=1,lte=18"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.SampleSource = getenvDefault("SAMPLE_SOURCE", SourceSQLite)
	cfg.DBPath = getenvDefault("DB_PATH", "modis.db")
	cfg.RemoteSourceURL = os.Getenv("REMOTE_SOURCE_URL")
	cfg.SampleLimit = getenvInt("SAMPLE_LIMIT", 0)

	cfg.DefaultRadius = getenvInt("SEARCH_RADIUS_DEFAULT", 50000)
	if cfg.Power, err = getenvFloat("IDW_POWER", temperature.DefaultPower); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	if cfg.WatchPoints, err = parseWatchPoints(os.Getenv("WATCH_POINTS"), cfg.DefaultRadius); err != nil {
		return nil, err
	}

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = getenvDefault("KAFKA_TOPIC", "modis.estimates")

	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")

	if cfg.MapCenter, err = parsePoint(getenvDefault("MAP_CENTER", "-29.5,-62.1")); err != nil {
		return nil, fmt.Errorf("invalid MAP_CENTER: %w", err)
	}
	cfg.MapZoom = getenvInt("MAP_ZOOM", 6)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.SampleSource == SourceRemote && cfg.RemoteSourceURL == "" {
		return nil, fmt.Errorf("REMOTE_SOURCE_URL is required when SAMPLE_SOURCE=%s", SourceRemote)
	}
	return cfg, nil
}

// parseWatchPoints parses "name:lat:lon[:radius],..." entries.
func parseWatchPoints(raw string, defaultRadius int) ([]temperature.WatchPoint, error) {
	var wps []temperature.WatchPoint
	for _, entry := range splitList(raw) {
		parts := strings.Split(entry, ":")
		if len(parts) != 3 && len(parts) != 4 {
			return nil, fmt.Errorf("invalid WATCH_POINTS entry %q: want name:lat:lon[:radius]", entry)
		}

		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("invalid latitude in WATCH_POINTS entry %q", entry)
		}
		lon, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("invalid longitude in WATCH_POINTS entry %q", entry)
		}

		radius := defaultRadius
		if len(parts) == 4 {
			radius, err = strconv.Atoi(parts[3])
			if err != nil || radius <= 0 {
				return nil, fmt.Errorf("invalid radius in WATCH_POINTS entry %q", entry)
			}
		}

		wps = append(wps, temperature.WatchPoint{
			Name:         strings.TrimSpace(parts[0]),
			Point:        temperature.GeoPoint{Lat: lat, Lon: lon},
			RadiusMeters: radius,
		})
	}
	return wps, nil
}

func parsePoint(s string) (temperature.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return temperature.GeoPoint{}, fmt.Errorf("want lat,lon")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return temperature.GeoPoint{}, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return temperature.GeoPoint{}, err
	}
	return temperature.GeoPoint{Lat: lat, Lon: lon}, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
