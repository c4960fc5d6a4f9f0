package weather

import (
	"context"
	"encoding/json"
)

// Upstream abstracts the Open-Meteo APIs the orchestrator fetches from on a
// cache miss.
type Upstream interface {
	// Forecast fetches weather for the exact parameters supplied by the
	// caller and returns the raw response body.
	Forecast(ctx context.Context, req ForecastRequest) (json.RawMessage, error)

	// Geocode resolves a free-text place name to candidate locations and
	// returns the raw response body.
	Geocode(ctx context.Context, query string, count int) (json.RawMessage, error)
}
