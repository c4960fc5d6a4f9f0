package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/omedacore/someweather/internal/weather"
)

// Prefs is the client's file-backed preference store: selected city, unit
// system, and the single-slot weather and forecast caches. At most one
// cached payload lives in each slot; switching cities invalidates it
// implicitly via the coordinate check, and unit changes clear it explicitly.
type Prefs struct {
	path string
	mu   sync.Mutex
}

type prefsData struct {
	CityName   string `json:"city_name,omitempty"`
	UnitSystem string `json:"unit_system,omitempty"`

	CachedWeather  json.RawMessage `json:"cached_weather,omitempty"`
	CacheTimestamp int64           `json:"cache_timestamp,omitempty"`

	CachedLatitude  *float64 `json:"cached_latitude,omitempty"`
	CachedLongitude *float64 `json:"cached_longitude,omitempty"`

	CachedForecast         json.RawMessage `json:"cached_forecast,omitempty"`
	ForecastCacheTimestamp int64           `json:"forecast_cache_timestamp,omitempty"`
}

// NewPrefs creates a preference store backed by the file at path.
func NewPrefs(path string) (*Prefs, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Prefs{path: path}, nil
}

// DefaultPrefsPath returns the per-user preference file location.
func DefaultPrefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "someweather", "prefs.json"), nil
}

func (p *Prefs) load() prefsData {
	var data prefsData
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return data
	}
	// Unreadable prefs behave like empty prefs.
	_ = json.Unmarshal(raw, &data)
	return data
}

func (p *Prefs) save(data prefsData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, raw, 0o644)
}

func (p *Prefs) update(mutate func(*prefsData)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.load()
	mutate(&data)
	return p.save(data)
}

// SaveCityName persists the selected city display name.
func (p *Prefs) SaveCityName(name string) error {
	return p.update(func(d *prefsData) { d.CityName = name })
}

// CityName returns the selected city, if any.
func (p *Prefs) CityName() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.load()
	return data.CityName, data.CityName != ""
}

// SaveUnitSystem persists the unit system.
func (p *Prefs) SaveUnitSystem(u weather.UnitSystem) error {
	return p.update(func(d *prefsData) { d.UnitSystem = string(u) })
}

// UnitSystem returns the stored unit system, defaulting to metric when
// absent or unparseable.
func (p *Prefs) UnitSystem() weather.UnitSystem {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.load()
	u, err := weather.ParseUnitSystem(data.UnitSystem)
	if err != nil {
		return weather.UnitMetric
	}
	return u
}

// SaveCachedWeather stores a payload in the weather slot, stamping it now.
func (p *Prefs) SaveCachedWeather(payload json.RawMessage) error {
	return p.update(func(d *prefsData) {
		d.CachedWeather = append(json.RawMessage(nil), payload...)
		d.CacheTimestamp = time.Now().UnixMilli()
	})
}

// CachedWeather returns the cached payload and its write time.
func (p *Prefs) CachedWeather() (json.RawMessage, time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.load()
	if len(data.CachedWeather) == 0 {
		return nil, time.Time{}, false
	}
	return data.CachedWeather, time.UnixMilli(data.CacheTimestamp), true
}

// ClearCachedWeather empties the weather slot.
func (p *Prefs) ClearCachedWeather() error {
	return p.update(func(d *prefsData) {
		d.CachedWeather = nil
		d.CacheTimestamp = 0
	})
}

// SaveCoordinates persists the coordinates the cached payload belongs to.
func (p *Prefs) SaveCoordinates(lat, lon float64) error {
	return p.update(func(d *prefsData) {
		d.CachedLatitude = &lat
		d.CachedLongitude = &lon
	})
}

// Coordinates returns the stored coordinate pair, if any.
func (p *Prefs) Coordinates() (lat, lon float64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.load()
	if data.CachedLatitude == nil || data.CachedLongitude == nil {
		return 0, 0, false
	}
	return *data.CachedLatitude, *data.CachedLongitude, true
}

// SaveCachedForecast stores a payload in the forecast slot.
func (p *Prefs) SaveCachedForecast(payload json.RawMessage) error {
	return p.update(func(d *prefsData) {
		d.CachedForecast = append(json.RawMessage(nil), payload...)
		d.ForecastCacheTimestamp = time.Now().UnixMilli()
	})
}

// CachedForecast returns the cached forecast payload and its write time.
func (p *Prefs) CachedForecast() (json.RawMessage, time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.load()
	if len(data.CachedForecast) == 0 {
		return nil, time.Time{}, false
	}
	return data.CachedForecast, time.UnixMilli(data.ForecastCacheTimestamp), true
}

// ClearCachedForecast empties the forecast slot.
func (p *Prefs) ClearCachedForecast() error {
	return p.update(func(d *prefsData) {
		d.CachedForecast = nil
		d.ForecastCacheTimestamp = 0
	})
}
