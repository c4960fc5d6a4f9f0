package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is the backend's runtime configuration, read from the
// environment.
type AppConfig struct {
	Port string

	// APIKey is the shared secret clients must present in X-API-Key.
	APIKey string

	// DatabaseURL selects Postgres when set; otherwise the store falls
	// back to SQLite at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// HTTPTimeout bounds every outbound upstream call.
	HTTPTimeout time.Duration

	// WeatherTTL is the server-side forecast cache freshness window.
	WeatherTTL time.Duration

	// SweepInterval enables the background cache-hygiene sweep when > 0.
	SweepInterval time.Duration

	// Upstream endpoint overrides, mainly for tests and self-hosting.
	ForecastURL  string
	GeocodingURL string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "3000")
	cfg.APIKey = os.Getenv("WEATHER_API_KEY")
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY is required")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "someweather.db")

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	ttl, err := getenvDuration("WEATHER_CACHE_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.WeatherTTL = ttl

	sweep, err := getenvDuration("CACHE_SWEEP_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	cfg.SweepInterval = sweep

	cfg.ForecastURL = os.Getenv("FORECAST_URL")
	cfg.GeocodingURL = os.Getenv("GEOCODING_URL")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	// Accept bare minutes for operator convenience.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
