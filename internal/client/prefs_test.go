package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omedacore/someweather/internal/weather"
)

func newTestPrefs(t *testing.T) *Prefs {
	t.Helper()

	p, err := NewPrefs(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	return p
}

func TestPrefsEmpty(t *testing.T) {
	p := newTestPrefs(t)

	_, ok := p.CityName()
	require.False(t, ok)

	_, _, ok = p.CachedWeather()
	require.False(t, ok)

	_, _, ok = p.Coordinates()
	require.False(t, ok)

	require.Equal(t, weather.UnitMetric, p.UnitSystem())
}

func TestPrefsRoundTrip(t *testing.T) {
	p := newTestPrefs(t)

	require.NoError(t, p.SaveCityName("London"))
	require.NoError(t, p.SaveUnitSystem(weather.UnitImperial))
	require.NoError(t, p.SaveCoordinates(51.5074, -0.1278))
	require.NoError(t, p.SaveCachedWeather(json.RawMessage(`{"ok":true}`)))

	city, ok := p.CityName()
	require.True(t, ok)
	require.Equal(t, "London", city)

	require.Equal(t, weather.UnitImperial, p.UnitSystem())

	lat, lon, ok := p.Coordinates()
	require.True(t, ok)
	require.InDelta(t, 51.5074, lat, 1e-9)
	require.InDelta(t, -0.1278, lon, 1e-9)

	payload, at, ok := p.CachedWeather()
	require.True(t, ok)
	require.JSONEq(t, `{"ok":true}`, string(payload))
	require.WithinDuration(t, time.Now(), at, 5*time.Second)
}

func TestPrefsClearWeatherKeepsSelection(t *testing.T) {
	p := newTestPrefs(t)

	require.NoError(t, p.SaveCityName("London"))
	require.NoError(t, p.SaveCachedWeather(json.RawMessage(`{"ok":true}`)))
	require.NoError(t, p.ClearCachedWeather())

	_, _, ok := p.CachedWeather()
	require.False(t, ok)

	city, ok := p.CityName()
	require.True(t, ok)
	require.Equal(t, "London", city)
}

func TestPrefsForecastSlotIndependent(t *testing.T) {
	p := newTestPrefs(t)

	require.NoError(t, p.SaveCachedWeather(json.RawMessage(`{"kind":"current"}`)))
	require.NoError(t, p.SaveCachedForecast(json.RawMessage(`{"kind":"forecast"}`)))

	require.NoError(t, p.ClearCachedWeather())

	forecast, _, ok := p.CachedForecast()
	require.True(t, ok)
	require.JSONEq(t, `{"kind":"forecast"}`, string(forecast))
}

func TestPrefsCorruptFileActsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs.json")
	p, err := NewPrefs(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, _, ok := p.CachedWeather()
	require.False(t, ok)
	require.Equal(t, weather.UnitMetric, p.UnitSystem())

	// Writes recover the file.
	require.NoError(t, p.SaveCityName("Paris"))
	city, ok := p.CityName()
	require.True(t, ok)
	require.Equal(t, "Paris", city)
}
