package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/omedacore/someweather/internal/store"
	"github.com/omedacore/someweather/internal/upstream"
	"github.com/omedacore/someweather/internal/weather"
)

const testAPIKey = "test-secret"

type stubUpstream struct {
	forecastCalls int
	geocodeCalls  int
	forecastBody  json.RawMessage
	geocodeBody   json.RawMessage
	err           error
}

func (s *stubUpstream) Forecast(context.Context, weather.ForecastRequest) (json.RawMessage, error) {
	s.forecastCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.forecastBody, nil
}

func (s *stubUpstream) Geocode(context.Context, string, int) (json.RawMessage, error) {
	s.geocodeCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.geocodeBody, nil
}

func newTestApp(up *stubUpstream) *fiber.App {
	app := fiber.New()
	svc := weather.NewService(store.NewMemoryStore(), up, 0, nil)
	RegisterRoutes(app, svc, testAPIKey)
	return app
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	return req
}

const validWeatherBody = `{
	"latitude": 51.5074,
	"longitude": -0.1278,
	"temperature_unit": "celsius",
	"windspeed_unit": "ms",
	"precipitation_unit": "mm",
	"current": "temperature_2m",
	"hourly": "temperature_2m",
	"daily": "weathercode",
	"timezone": "auto"
}`

func TestHealthNoAuth(t *testing.T) {
	app := newTestApp(&stubUpstream{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("timestamp missing")
	}
}

func TestMissingAPIKeyRejected(t *testing.T) {
	app := newTestApp(&stubUpstream{})

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"Paris"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestWrongAPIKeyRejected(t *testing.T) {
	app := newTestApp(&stubUpstream{})

	req := httptest.NewRequest(http.MethodPost, "/weather", strings.NewReader(validWeatherBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "wrong")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestWeatherMissingFieldRejected(t *testing.T) {
	up := &stubUpstream{forecastBody: json.RawMessage(`{}`)}
	app := newTestApp(up)

	// timezone omitted
	body := `{
		"latitude": 51.5074,
		"longitude": -0.1278,
		"temperature_unit": "celsius",
		"windspeed_unit": "ms",
		"precipitation_unit": "mm",
		"current": "temperature_2m",
		"hourly": "temperature_2m",
		"daily": "weathercode"
	}`
	resp, err := app.Test(authedRequest(http.MethodPost, "/weather", body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "timezone") {
		t.Errorf("error message should list required fields, got %s", data)
	}
	if up.forecastCalls != 0 {
		t.Errorf("validation failure must not reach upstream, got %d calls", up.forecastCalls)
	}
}

func TestWeatherZeroCoordinatesAccepted(t *testing.T) {
	up := &stubUpstream{forecastBody: json.RawMessage(`{"ok":true}`)}
	app := newTestApp(up)

	// (0, 0) is a legitimate coordinate, not a missing field.
	body := strings.Replace(validWeatherBody, "51.5074", "0", 1)
	body = strings.Replace(body, "-0.1278", "0", 1)
	resp, err := app.Test(authedRequest(http.MethodPost, "/weather", body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestWeatherUpstreamErrorMapsTo502(t *testing.T) {
	up := &stubUpstream{err: &upstream.APIError{Reason: "unknown location"}}
	app := newTestApp(up)

	resp, err := app.Test(authedRequest(http.MethodPost, "/weather", validWeatherBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "unknown location" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestWeatherServedAndCached(t *testing.T) {
	up := &stubUpstream{forecastBody: json.RawMessage(`{"current":{"temperature_2m":18.5}}`)}
	app := newTestApp(up)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(authedRequest(http.MethodPost, "/weather", validWeatherBody))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
		}
		data, _ := io.ReadAll(resp.Body)
		if string(data) != `{"current":{"temperature_2m":18.5}}` {
			t.Errorf("body = %s", data)
		}
	}
	if up.forecastCalls != 1 {
		t.Errorf("second request should be served from cache, got %d upstream calls", up.forecastCalls)
	}
}

func TestSearchMissingQueryRejected(t *testing.T) {
	up := &stubUpstream{geocodeBody: json.RawMessage(`{}`)}
	app := newTestApp(up)

	resp, err := app.Test(authedRequest(http.MethodPost, "/search", `{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if up.geocodeCalls != 0 {
		t.Errorf("validation failure must not reach upstream, got %d calls", up.geocodeCalls)
	}
}

func TestSearchCachedOnRepeat(t *testing.T) {
	up := &stubUpstream{geocodeBody: json.RawMessage(`{"results":[{"name":"Paris"}]}`)}
	app := newTestApp(up)

	var bodies []string
	for i := 0; i < 2; i++ {
		resp, err := app.Test(authedRequest(http.MethodPost, "/search", `{"query":"Paris"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
		}
		data, _ := io.ReadAll(resp.Body)
		bodies = append(bodies, string(data))
	}

	if up.geocodeCalls != 1 {
		t.Errorf("repeat search should be served from cache, got %d upstream calls", up.geocodeCalls)
	}
	if bodies[0] != bodies[1] {
		t.Errorf("cached response differs: %s vs %s", bodies[0], bodies[1])
	}
}

func TestSearchTransportErrorMapsTo500(t *testing.T) {
	up := &stubUpstream{err: io.ErrUnexpectedEOF}
	app := newTestApp(up)

	resp, err := app.Test(authedRequest(http.MethodPost, "/search", `{"query":"Paris"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, resp.StatusCode)
	}
}
