package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

// RemoteSource implements temperature.SampleSource against another instance's
// /api/v1/samples endpoint.
type RemoteSource struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewRemoteSource(client *http.Client, baseURL string) *RemoteSource {
	return &RemoteSource{
		name:    "remote",
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1/samples",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("remote"),
	}
}

func (s *RemoteSource) Name() string {
	return s.name
}

func (s *RemoteSource) FetchSamples(ctx context.Context, point temperature.GeoPoint, radiusMeters int) ([]temperature.RawSample, error) {
	if radiusMeters <= 0 {
		return nil, errInvalidRadius
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(point.Lon, 'f', -1, 64))
		values.Set("radius", strconv.Itoa(radiusMeters))

		u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Samples []temperature.RawSample `json:"samples"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode remote samples: %w", err)
	}
	return payload.Samples, nil
}
