package weather

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when no row exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// Store is the contract the relational cache store (and the in-memory store)
// must satisfy. A (nil, ErrNotFound) result is a plain miss; any other error
// from a read is treated as a miss by the orchestrator as well.
type Store interface {
	GetCity(ctx context.Context, key string) (*CityEntry, error)
	UpsertCity(ctx context.Context, key string, results []byte) error

	GetWeather(ctx context.Context, coordKey, unitsKey string) (*WeatherEntry, error)
	UpsertWeather(ctx context.Context, coordKey, unitsKey string, payload []byte) error
	DeleteWeather(ctx context.Context, coordKey, unitsKey string) error

	// DeleteWeatherBefore removes forecast rows last updated before cutoff.
	// Used only by the optional hygiene sweep; the read path expires lazily.
	DeleteWeatherBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}
