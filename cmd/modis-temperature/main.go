package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/modis-temperature/internal/api/http"
	"github.com/i474232898/modis-temperature/internal/config"
	"github.com/i474232898/modis-temperature/internal/db"
	"github.com/i474232898/modis-temperature/internal/geocode"
	"github.com/i474232898/modis-temperature/internal/observability"
	"github.com/i474232898/modis-temperature/internal/publish"
	"github.com/i474232898/modis-temperature/internal/scheduler"
	"github.com/i474232898/modis-temperature/internal/store"
	"github.com/i474232898/modis-temperature/internal/temperature"
	"github.com/i474232898/modis-temperature/internal/temperature/sources"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Sample source with resilience (backoff + circuit breaker).
	var source temperature.SampleSource
	switch cfg.SampleSource {
	case config.SourceRemote:
		source = sources.NewRemoteSource(httpClient, cfg.RemoteSourceURL)
	default:
		database, err := db.NewDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("failed to open sample database: %v", err)
		}
		defer database.Close()
		source = sources.NewDatabaseSource(database, cfg.SampleLimit)
	}
	log.Printf("INFO: using %s sample source", source.Name())

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	metrics := observability.NewMetrics()

	publisher := publish.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	// Core service orchestrating the source, store and publisher.
	opts := []temperature.Option{
		temperature.WithObserver(metrics),
		temperature.WithPower(cfg.Power),
	}
	if publisher != nil {
		opts = append(opts, temperature.WithPublisher(publisher))
	}
	service := temperature.NewService(source, memStore, opts...)

	// Scheduler that periodically estimates the watch points.
	sched := scheduler.New(cfg.WatchPoints, cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "modis-temperature",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "*",
	}))
	app.Use(metrics.Middleware())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "modis-temperature",
			"source":  source.Name(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, httpapi.Options{
		DefaultRadius:  cfg.DefaultRadius,
		Geocoder:       geocode.NewGoogleGeocoder(cfg.GeocoderAPIKey),
		MetricsHandler: metrics.Handler(),
		MapCenter:      cfg.MapCenter,
		MapZoom:        cfg.MapZoom,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
