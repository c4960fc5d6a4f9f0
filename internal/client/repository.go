package client

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/omedacore/someweather/internal/cache"
	"github.com/omedacore/someweather/internal/weather"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Backend is the slice of the API client the repository needs.
type Backend interface {
	Weather(ctx context.Context, req weather.ForecastRequest) (json.RawMessage, error)
	SearchCity(ctx context.Context, query string, count int) (json.RawMessage, error)
}

// Repository layers the client-side cache policy over the backend: a fresh
// local slot short-circuits the network, and a failed backend call falls
// back to a stale-but-matching payload rather than an error. A stale answer
// beats no answer for a weather app.
type Repository struct {
	api   Backend
	prefs *Prefs
	ttl   time.Duration
	now   func() time.Time
	log   *zap.SugaredLogger
}

// NewRepository creates a Repository with the client-tier TTL.
func NewRepository(api Backend, prefs *Prefs, log *zap.SugaredLogger) *Repository {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Repository{
		api:   api,
		prefs: prefs,
		ttl:   cache.ClientWeatherTTL,
		now:   time.Now,
		log:   log,
	}
}

// Weather returns the current-weather payload for coords.
func (r *Repository) Weather(ctx context.Context, coords Coordinates) (json.RawMessage, error) {
	cached, cachedAt, ok := r.prefs.CachedWeather()
	matches := ok && r.coordsMatch(coords)

	if matches && cache.Fresh(cachedAt, r.ttl, r.now()) {
		r.log.Debugw("local weather cache hit", "lat", coords.Lat, "lon", coords.Lon)
		return cached, nil
	}

	payload, err := r.api.Weather(ctx, r.forecastRequest(coords))
	if err != nil {
		if matches {
			// Degrade gracefully: expired-but-present beats an error.
			r.log.Warnw("backend call failed, serving stale cache", "error", err)
			return cached, nil
		}
		return nil, err
	}

	if err := r.prefs.SaveCoordinates(coords.Lat, coords.Lon); err != nil {
		r.log.Warnw("failed to persist coordinates", "error", err)
	}
	if err := r.prefs.SaveCachedWeather(payload); err != nil {
		r.log.Warnw("failed to persist weather cache", "error", err)
	}

	return payload, nil
}

// Forecast returns the forecast payload for coords, cached in its own slot
// under the same TTL and fallback policy.
func (r *Repository) Forecast(ctx context.Context, coords Coordinates) (json.RawMessage, error) {
	cached, cachedAt, ok := r.prefs.CachedForecast()
	matches := ok && r.coordsMatch(coords)

	if matches && cache.Fresh(cachedAt, r.ttl, r.now()) {
		return cached, nil
	}

	payload, err := r.api.Weather(ctx, r.forecastRequest(coords))
	if err != nil {
		if matches {
			r.log.Warnw("backend call failed, serving stale forecast", "error", err)
			return cached, nil
		}
		return nil, err
	}

	if err := r.prefs.SaveCoordinates(coords.Lat, coords.Lon); err != nil {
		r.log.Warnw("failed to persist coordinates", "error", err)
	}
	if err := r.prefs.SaveCachedForecast(payload); err != nil {
		r.log.Warnw("failed to persist forecast cache", "error", err)
	}

	return payload, nil
}

// SearchCity resolves a city query through the backend.
func (r *Repository) SearchCity(ctx context.Context, query string) (json.RawMessage, error) {
	return r.api.SearchCity(ctx, query, weather.DefaultSearchCount)
}

// SelectCity persists the chosen city and its coordinates as the active
// selection. The old cached payload dies naturally on the next Weather call
// via the coordinate mismatch.
func (r *Repository) SelectCity(name string, coords Coordinates) error {
	if err := r.prefs.SaveCityName(name); err != nil {
		return err
	}
	return r.prefs.SaveCoordinates(coords.Lat, coords.Lon)
}

// SavedCity returns the active city selection, if any.
func (r *Repository) SavedCity() (string, bool) {
	return r.prefs.CityName()
}

// SavedCoordinates returns the coordinates of the active selection, if any.
func (r *Repository) SavedCoordinates() (lat, lon float64, ok bool) {
	return r.prefs.Coordinates()
}

// UnitSystem returns the stored unit system (metric when unset).
func (r *Repository) UnitSystem() weather.UnitSystem {
	return r.prefs.UnitSystem()
}

// SetUnitSystem switches units, clears both cache slots (a payload cannot
// be reinterpreted under a different unit system), and eagerly refetches
// when a city is currently selected.
func (r *Repository) SetUnitSystem(ctx context.Context, u weather.UnitSystem) error {
	if err := r.prefs.SaveUnitSystem(u); err != nil {
		return err
	}
	if err := r.prefs.ClearCachedWeather(); err != nil {
		return err
	}
	if err := r.prefs.ClearCachedForecast(); err != nil {
		return err
	}

	if lat, lon, ok := r.prefs.Coordinates(); ok {
		if _, err := r.Weather(ctx, Coordinates{Lat: lat, Lon: lon}); err != nil {
			// The switch itself succeeded; the refetch is best effort.
			r.log.Warnw("eager refetch after unit switch failed", "error", err)
		}
	}
	return nil
}

func (r *Repository) coordsMatch(coords Coordinates) bool {
	lat, lon, ok := r.prefs.Coordinates()
	return ok && cache.CoordinatesEqual(lat, lon, coords.Lat, coords.Lon, cache.CoordinateEpsilon)
}

func (r *Repository) forecastRequest(coords Coordinates) weather.ForecastRequest {
	u := r.prefs.UnitSystem()
	return weather.ForecastRequest{
		Latitude:          coords.Lat,
		Longitude:         coords.Lon,
		TemperatureUnit:   u.TemperatureUnit(),
		WindspeedUnit:     u.WindspeedUnit(),
		PrecipitationUnit: u.PrecipitationUnit(),
		Current:           weather.DefaultCurrentParams,
		Hourly:            weather.DefaultHourlyParams,
		Daily:             weather.DefaultDailyParams,
		Timezone:          weather.DefaultTimezone,
	}
}

// WithClock overrides the repository clock. Tests only.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}
