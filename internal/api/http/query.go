package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/modis-temperature/internal/geocode"
	"github.com/i474232898/modis-temperature/internal/temperature"
)

// pointQuery holds the query parameters identifying a search area.
type pointQuery struct {
	Lat    *float64 `validate:"required,gte=-90,lte=90"`
	Lon    *float64 `validate:"required,gte=-180,lte=180"`
	Radius int      `validate:"gt=0"`
}

func (q pointQuery) point() temperature.GeoPoint {
	return temperature.GeoPoint{Lat: *q.Lat, Lon: *q.Lon}
}

// parsePointQuery reads lat, lon and the radius from radiusKey, falling back
// to defaultRadius when the radius is absent.
func parsePointQuery(c *fiber.Ctx, radiusKey string, defaultRadius int) (pointQuery, error) {
	var (
		q   pointQuery
		err error
	)
	if q.Lat, err = optionalFloat(c.Query("lat"), "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = optionalFloat(c.Query("lon"), "lon"); err != nil {
		return q, err
	}

	if q.Radius, err = parseRadius(c, radiusKey, defaultRadius); err != nil {
		return q, err
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func parseRadius(c *fiber.Ctx, key string, defaultRadius int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultRadius, nil
	}
	r, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer number of meters", key)
	}
	return r, nil
}

// addressQuery holds the optional address parameters of /api/v1/temperature.
type addressQuery struct {
	Street  string
	City    string
	State   string
	Country string
}

func parseAddressQuery(c *fiber.Ctx) addressQuery {
	return addressQuery{
		Street:  c.Query("street"),
		City:    c.Query("city"),
		State:   c.Query("state"),
		Country: c.Query("country"),
	}
}

func (a addressQuery) present() bool {
	return a.City != "" || a.Street != ""
}

func (a addressQuery) toAddress() geocode.Address {
	return geocode.Address{Street: a.Street, City: a.City, State: a.State, Country: a.Country}
}

func optionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be a decimal number", name)
	}
	return &v, nil
}

// historyQuery holds query parameters for the watch point history endpoints.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

// bind defaults to the last 24 hours when from and to are both absent.
func (h *historyQuery) bind(c *fiber.Ctx, now time.Time) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		h.From, h.To = now.Add(-24*time.Hour), now
		return nil
	}
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters must be given together")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return validate.Struct(h)
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
