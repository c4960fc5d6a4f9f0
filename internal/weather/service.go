package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/omedacore/someweather/internal/cache"
)

// DefaultSearchCount is the geocoding result count used when the caller
// does not specify one.
const DefaultSearchCount = 5

// Service orchestrates cache-or-fetch for geocoding and forecast lookups.
// City results are cached permanently (coordinates don't move); forecasts
// are cached per (coordinates, units) with a fixed TTL and expired lazily
// at read time.
type Service struct {
	store    Store
	upstream Upstream
	ttl      time.Duration
	now      func() time.Time
	log      *zap.SugaredLogger
}

// NewService creates a Service. A zero ttl falls back to the server default.
func NewService(store Store, up Upstream, ttl time.Duration, log *zap.SugaredLogger) *Service {
	if ttl <= 0 {
		ttl = cache.ServerWeatherTTL
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		store:    store,
		upstream: up,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Search resolves a city query, serving from the permanent geocoding cache
// when possible. The cache never expires: city coordinates don't change, so
// permanent caching is deliberate.
func (s *Service) Search(ctx context.Context, query string, count int) (json.RawMessage, error) {
	if count <= 0 {
		count = DefaultSearchCount
	}
	key := cache.CityKey(query)

	entry, err := s.store.GetCity(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		// Unreadable rows are misses; fetch fresh data instead.
		s.log.Warnw("city cache read failed", "key", key, "error", err)
	}
	if entry != nil {
		s.log.Debugw("city cache hit", "key", key)
		return entry.Results, nil
	}

	// Upstream gets the raw query; only the cache key is normalized.
	results, err := s.upstream.Geocode(ctx, query, count)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	if err := s.store.UpsertCity(ctx, key, results); err != nil {
		// A failed cache write must never fail the request.
		s.log.Errorw("city cache write failed", "key", key, "error", err)
	}

	return results, nil
}

// Forecast returns weather for the requested coordinates and units, serving
// from cache while the row is younger than the TTL. Stale rows are deleted
// on read, then refetched.
func (s *Service) Forecast(ctx context.Context, req ForecastRequest) (json.RawMessage, error) {
	coordKey := cache.CoordinateKey(req.Latitude, req.Longitude)
	unitsKey := cache.UnitsKey(req.TemperatureUnit, req.WindspeedUnit, req.PrecipitationUnit)

	entry, err := s.store.GetWeather(ctx, coordKey, unitsKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warnw("weather cache read failed", "coordinates", coordKey, "units", unitsKey, "error", err)
	}
	if entry != nil {
		if cache.Fresh(entry.UpdatedAt, s.ttl, s.now()) {
			s.log.Debugw("weather cache hit", "coordinates", coordKey, "units", unitsKey)
			return entry.Payload, nil
		}

		s.log.Debugw("weather cache expired, deleting", "coordinates", coordKey, "units", unitsKey)
		if err := s.store.DeleteWeather(ctx, coordKey, unitsKey); err != nil {
			s.log.Warnw("weather cache delete failed", "coordinates", coordKey, "error", err)
		}
	}

	payload, err := s.upstream.Forecast(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("forecast for %s: %w", coordKey, err)
	}

	if err := s.store.UpsertWeather(ctx, coordKey, unitsKey, payload); err != nil {
		s.log.Errorw("weather cache write failed", "coordinates", coordKey, "error", err)
	}

	return payload, nil
}

// SweepExpired deletes forecast rows older than the TTL. It backs the
// optional hygiene job; correctness never depends on it.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteWeatherBefore(ctx, s.now().Add(-s.ttl))
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
