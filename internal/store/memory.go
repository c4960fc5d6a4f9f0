package store

import (
	"context"
	"sync"
	"time"

	"github.com/omedacore/someweather/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory implementation of
// weather.Store. The cache survives only as long as the process; it backs
// tests and throwaway local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	cities  map[string]weather.CityEntry
	entries map[string]weather.WeatherEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cities:  make(map[string]weather.CityEntry),
		entries: make(map[string]weather.WeatherEntry),
	}
}

func weatherKey(coordKey, unitsKey string) string {
	return coordKey + "|" + unitsKey
}

func (s *MemoryStore) GetCity(_ context.Context, key string) (*weather.CityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cities[key]
	if !ok {
		return nil, weather.ErrNotFound
	}
	return &entry, nil
}

func (s *MemoryStore) UpsertCity(_ context.Context, key string, results []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cities[key]
	if !ok {
		entry = weather.CityEntry{Query: key, CreatedAt: time.Now().UTC()}
	}
	entry.Results = append([]byte(nil), results...)
	s.cities[key] = entry
	return nil
}

func (s *MemoryStore) GetWeather(_ context.Context, coordKey, unitsKey string) (*weather.WeatherEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[weatherKey(coordKey, unitsKey)]
	if !ok {
		return nil, weather.ErrNotFound
	}
	return &entry, nil
}

func (s *MemoryStore) UpsertWeather(_ context.Context, coordKey, unitsKey string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[weatherKey(coordKey, unitsKey)] = weather.WeatherEntry{
		Coordinates: coordKey,
		Units:       unitsKey,
		Payload:     append([]byte(nil), payload...),
		UpdatedAt:   time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) DeleteWeather(_ context.Context, coordKey, unitsKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, weatherKey(coordKey, unitsKey))
	return nil
}

func (s *MemoryStore) DeleteWeatherBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, entry := range s.entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// SetWeatherUpdatedAt backdates a weather row's timestamp. Tests only.
func (s *MemoryStore) SetWeatherUpdatedAt(coordKey, unitsKey string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := weatherKey(coordKey, unitsKey)
	if entry, ok := s.entries[key]; ok {
		entry.UpdatedAt = at
		s.entries[key] = entry
	}
}
