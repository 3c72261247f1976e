package httpapi

import (
	"bytes"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/modis-temperature/internal/geocode"
	"github.com/i474232898/modis-temperature/internal/render"
	"github.com/i474232898/modis-temperature/internal/store"
	"github.com/i474232898/modis-temperature/internal/temperature"
)

var validate = validator.New()

// Options carries the optional collaborators of the HTTP layer.
type Options struct {
	// DefaultRadius is used when a request omits the radius, in meters.
	DefaultRadius int
	Geocoder      geocode.Geocoder
	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler fiber.Handler
	MapCenter      temperature.GeoPoint
	MapZoom        int
}

func (o Options) withDefaults() Options {
	if o.DefaultRadius <= 0 {
		o.DefaultRadius = 50000
	}
	if o.MapZoom <= 0 {
		o.MapZoom = 6
	}
	return o
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *temperature.Service, opts Options) {
	opts = opts.withDefaults()

	app.Get("/temperatura", func(c *fiber.Ctx) error {
		q, err := parsePointQuery(c, "radio", opts.DefaultRadius)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		e, err := service.EstimateAt(c.UserContext(), q.point(), q.Radius)
		if err != nil {
			return estimateError(err)
		}
		return c.JSON(newTemperatureResponse(e.Outcome))
	})

	app.Get("/wps", wpsHandler(service, opts.DefaultRadius))
	app.Post("/wps", wpsHandler(service, opts.DefaultRadius))

	app.Get("/mapa", mapHandler(opts.MapCenter, opts.MapZoom, opts.DefaultRadius))

	if opts.MetricsHandler != nil {
		app.Get("/metrics", opts.MetricsHandler)
	}

	v1 := app.Group("/api/v1")

	v1.Get("/temperature", func(c *fiber.Ctx) error {
		q, err := resolvePoint(c, opts)
		if err != nil {
			return err
		}

		e, err := service.EstimateAt(c.UserContext(), q.point(), q.Radius)
		if err != nil {
			return estimateError(err)
		}
		return c.JSON(newEstimateResponse(e))
	})

	v1.Get("/samples", func(c *fiber.Ctx) error {
		q, err := parsePointQuery(c, "radius", opts.DefaultRadius)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		samples, err := service.Samples(c.UserContext(), q.point(), q.Radius)
		if err != nil {
			return estimateError(err)
		}
		if samples == nil {
			samples = []temperature.RawSample{}
		}
		return c.JSON(fiber.Map{
			"lat":     *q.Lat,
			"lon":     *q.Lon,
			"radius":  q.Radius,
			"samples": samples,
		})
	})

	v1.Get("/samples/chart", func(c *fiber.Ctx) error {
		q, err := parsePointQuery(c, "radius", opts.DefaultRadius)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		samples, err := service.Samples(c.UserContext(), q.point(), q.Radius)
		if err != nil {
			return estimateError(err)
		}

		var buf bytes.Buffer
		if err := render.SamplesChart(&buf, q.point(), q.Radius, samples); err != nil {
			log.Printf("ERROR: render samples chart: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	})

	watch := v1.Group("/watch/:name")

	watch.Get("/latest", func(c *fiber.Ctx) error {
		e, err := service.GetLatest(c.Params("name"))
		if err != nil {
			return watchError(err, "no estimate for requested watch point")
		}
		return c.JSON(newEstimateResponse(e))
	})

	watch.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c, time.Now().UTC()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		estimates, err := service.GetRange(c.Params("name"), req.From, req.To)
		if err != nil {
			return watchError(err, "no estimate history for requested range")
		}

		out := make([]estimateResponse, 0, len(estimates))
		for _, e := range estimates {
			out = append(out, newEstimateResponse(e))
		}
		return c.JSON(fiber.Map{
			"watch_point": c.Params("name"),
			"from":       req.From,
			"to":         req.To,
			"estimates":  out,
		})
	})

	watch.Get("/plot.png", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c, time.Now().UTC()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		name := c.Params("name")
		estimates, err := service.GetRange(name, req.From, req.To)
		if err != nil {
			return watchError(err, "no estimate history for requested range")
		}

		var buf bytes.Buffer
		if err := render.HistoryPlot(&buf, name, estimates); err != nil {
			if errors.Is(err, render.ErrNoSuccessfulEstimates) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			log.Printf("ERROR: render history plot for %s: %v", name, err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render plot")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	})
}

// resolvePoint takes lat/lon when given and geocodes the address otherwise.
func resolvePoint(c *fiber.Ctx, opts Options) (pointQuery, error) {
	addr := parseAddressQuery(c)
	if c.Query("lat") != "" || c.Query("lon") != "" || !addr.present() {
		q, err := parsePointQuery(c, "radius", opts.DefaultRadius)
		if err != nil {
			return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return q, nil
	}

	if opts.Geocoder == nil {
		return pointQuery{}, fiber.NewError(fiber.StatusBadRequest, geocode.ErrDisabled.Error())
	}
	p, err := opts.Geocoder.Geocode(c.UserContext(), addr.toAddress())
	switch {
	case errors.Is(err, geocode.ErrDisabled), errors.Is(err, geocode.ErrEmptyAddress):
		return pointQuery{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	case err != nil:
		log.Printf("ERROR: geocode failed: %v", err)
		return pointQuery{}, fiber.NewError(fiber.StatusBadGateway, "failed to resolve address")
	}

	q := pointQuery{Lat: &p.Lat, Lon: &p.Lon}
	if q.Radius, err = parseRadius(c, "radius", opts.DefaultRadius); err == nil {
		err = validate.Struct(q)
	}
	if err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return q, nil
}

func estimateError(err error) error {
	switch {
	case errors.Is(err, temperature.ErrInvalidRadius):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, temperature.ErrNoSource):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("ERROR: sample fetch failed: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch samples")
	}
}

func watchError(err error, notFound string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFound)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read estimates")
}
