package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/omedacore/someweather/internal/api/http"
	"github.com/omedacore/someweather/internal/config"
	"github.com/omedacore/someweather/internal/logger"
	"github.com/omedacore/someweather/internal/scheduler"
	"github.com/omedacore/someweather/internal/store"
	"github.com/omedacore/someweather/internal/upstream"
	"github.com/omedacore/someweather/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(os.Getenv("DEBUG") != "")
	defer func() { _ = zlog.Sync() }()

	// Cache store: Postgres when DATABASE_URL is set, SQLite otherwise.
	var cacheStore weather.Store
	if cfg.DatabaseURL != "" {
		cacheStore, err = store.ConnectPostgres(cfg.DatabaseURL)
	} else {
		cacheStore, err = store.ConnectSQLite(cfg.SQLitePath)
	}
	if err != nil {
		zlog.Fatalw("failed to open cache store", "error", err)
	}
	defer cacheStore.Close()

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var upstreamOpts []upstream.Option
	if cfg.ForecastURL != "" {
		upstreamOpts = append(upstreamOpts, upstream.WithForecastURL(cfg.ForecastURL))
	}
	if cfg.GeocodingURL != "" {
		upstreamOpts = append(upstreamOpts, upstream.WithGeocodingURL(cfg.GeocodingURL))
	}
	openMeteo := upstream.NewClient(httpClient, upstreamOpts...)

	service := weather.NewService(cacheStore, openMeteo, cfg.WeatherTTL, zlog)

	// Optional cache-hygiene sweep.
	sweeper := scheduler.New(service, cfg.SweepInterval, zlog)
	if err := sweeper.Start(); err != nil {
		zlog.Fatalw("failed to start cache sweeper", "error", err)
	}
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "someweather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	httpapi.RegisterRoutes(app, service, cfg.APIKey)

	go func() {
		zlog.Infow("someweather API listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Errorw("error during shutdown", "error", err)
	}
}
