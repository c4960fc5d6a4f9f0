package weather

import (
	"encoding/json"
	"time"
)

// CityEntry is a row in the permanent geocoding cache. The results blob is
// the raw upstream JSON, stored and returned verbatim.
type CityEntry struct {
	Query     string
	Results   json.RawMessage
	CreatedAt time.Time
}

// WeatherEntry is a row in the time-boxed forecast cache, unique on
// (Coordinates, Units).
type WeatherEntry struct {
	Coordinates string
	Units       string
	Payload     json.RawMessage
	UpdatedAt   time.Time
}

// ForecastRequest carries every parameter the backend forwards to the
// upstream forecast API. The server is pass-through: it does not hardcode
// which weather fields to request, because different client generations send
// different field lists.
type ForecastRequest struct {
	Latitude          float64
	Longitude         float64
	TemperatureUnit   string
	WindspeedUnit     string
	PrecipitationUnit string
	Current           string
	Hourly            string
	Daily             string
	Timezone          string
}
