// Package upstream talks to the Open-Meteo forecast and geocoding APIs. It
// is a parameter pass-through: callers supply the exact field lists and unit
// selectors, and responses come back as raw JSON.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/omedacore/someweather/internal/weather"
)

const (
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
)

// APIError is a domain error reported by Open-Meteo itself (reachable, but
// e.g. coordinates out of range). It maps to 502 at the HTTP edge and is
// never cached.
type APIError struct {
	Reason string
}

func (e *APIError) Error() string {
	if e.Reason == "" {
		return "upstream reported an error"
	}
	return "upstream reported an error: " + e.Reason
}

// Client implements weather.Upstream against Open-Meteo.
type Client struct {
	forecastURL  string
	geocodingURL string
	httpCfg      HTTPClientConfig
	forecastCB   *gobreaker.CircuitBreaker
	geocodeCB    *gobreaker.CircuitBreaker
}

// Option customizes a Client.
type Option func(*Client)

// WithForecastURL overrides the forecast endpoint (tests, self-hosted API).
func WithForecastURL(u string) Option {
	return func(c *Client) { c.forecastURL = u }
}

// WithGeocodingURL overrides the geocoding endpoint.
func WithGeocodingURL(u string) Option {
	return func(c *Client) { c.geocodingURL = u }
}

// NewClient creates an Open-Meteo client using the given HTTP client. The
// caller owns the http.Client and its timeout.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		forecastURL:  DefaultForecastURL,
		geocodingURL: DefaultGeocodingURL,
		httpCfg: HTTPClientConfig{
			Client: httpClient,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		forecastCB: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openmeteo-forecast",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		geocodeCB: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openmeteo-geocoding",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forecast fetches weather for the exact parameters supplied by the caller.
func (c *Client) Forecast(ctx context.Context, req weather.ForecastRequest) (json.RawMessage, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
		values.Set("current", req.Current)
		values.Set("hourly", req.Hourly)
		values.Set("daily", req.Daily)
		values.Set("temperature_unit", req.TemperatureUnit)
		values.Set("windspeed_unit", req.WindspeedUnit)
		values.Set("precipitation_unit", req.PrecipitationUnit)
		values.Set("timezone", req.Timezone)

		u := fmt.Sprintf("%s?%s", c.forecastURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	return c.fetch(ctx, c.forecastCB, buildRequest)
}

// Geocode resolves a free-text place name to candidate locations.
func (c *Client) Geocode(ctx context.Context, query string, count int) (json.RawMessage, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", query)
		values.Set("count", strconv.Itoa(count))

		u := fmt.Sprintf("%s?%s", c.geocodingURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	return c.fetch(ctx, c.geocodeCB, buildRequest)
}

func (c *Client) fetch(ctx context.Context, cb *gobreaker.CircuitBreaker, buildRequest func() (*http.Request, error)) (json.RawMessage, error) {
	resp, err := doRequestWithResilience(ctx, c.httpCfg, cb, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	// Open-Meteo signals domain errors with {"error":true,"reason":...} in
	// the body; probe for that without decoding the full payload.
	var probe struct {
		Error  bool   `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}
	if probe.Error {
		return nil, &APIError{Reason: probe.Reason}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	return body, nil
}
