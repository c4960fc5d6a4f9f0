// Package client consumes the SomeWeather backend the way the phone and
// watch apps do: a thin API client, a single-slot local cache with a short
// TTL, and a stale-on-error fallback.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/omedacore/someweather/internal/weather"
)

// DefaultTimeout is the default HTTP timeout for backend requests.
const DefaultTimeout = 10 * time.Second

// Config holds everything needed to reach a backend instance.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is an explicitly constructed backend API client. Callers build one
// and pass it around; there is no process-wide lazily-initialized instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Weather fetches a forecast payload from the backend.
func (c *Client) Weather(ctx context.Context, req weather.ForecastRequest) (json.RawMessage, error) {
	body := map[string]any{
		"latitude":           req.Latitude,
		"longitude":          req.Longitude,
		"temperature_unit":   req.TemperatureUnit,
		"windspeed_unit":     req.WindspeedUnit,
		"precipitation_unit": req.PrecipitationUnit,
		"current":            req.Current,
		"hourly":             req.Hourly,
		"daily":              req.Daily,
		"timezone":           req.Timezone,
	}
	return c.post(ctx, "/weather", body)
}

// SearchCity resolves a city query through the backend, which caches the
// geocoding results permanently.
func (c *Client) SearchCity(ctx context.Context, query string, count int) (json.RawMessage, error) {
	if count <= 0 {
		count = weather.DefaultSearchCount
	}
	return c.post(ctx, "/search", map[string]any{"query": query, "count": count})
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("backend %s: %s", path, apiErr.Message)
		}
		return nil, fmt.Errorf("backend %s: status %d", path, resp.StatusCode)
	}

	return data, nil
}
