package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/omedacore/someweather/internal/weather"
)

func testClient(srv *httptest.Server) *Client {
	return NewClient(
		&http.Client{Timeout: 5 * time.Second},
		WithForecastURL(srv.URL+"/v1/forecast"),
		WithGeocodingURL(srv.URL+"/v1/search"),
	)
}

func TestForecastPassesParametersThrough(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":18.5}}`))
	}))
	defer srv.Close()

	req := weather.ForecastRequest{
		Latitude:          51.5074,
		Longitude:         -0.1278,
		TemperatureUnit:   "celsius",
		WindspeedUnit:     "ms",
		PrecipitationUnit: "mm",
		Current:           "temperature_2m,weathercode",
		Hourly:            "temperature_2m",
		Daily:             "weathercode",
		Timezone:          "auto",
	}

	body, err := testClient(srv).Forecast(context.Background(), req)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if string(body) != `{"current":{"temperature_2m":18.5}}` {
		t.Errorf("body = %s", body)
	}

	// The client must forward the caller's field lists untouched.
	want := map[string]string{
		"latitude":           "51.5074",
		"longitude":          "-0.1278",
		"current":            "temperature_2m,weathercode",
		"hourly":             "temperature_2m",
		"daily":              "weathercode",
		"temperature_unit":   "celsius",
		"windspeed_unit":     "ms",
		"precipitation_unit": "mm",
		"timezone":           "auto",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestForecastUpstreamDomainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).Forecast(context.Background(), weather.ForecastRequest{Latitude: 123})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Reason != "Latitude must be in range of -90 to 90" {
		t.Errorf("Reason = %q", apiErr.Reason)
	}
}

func TestGeocodeSendsRawQuery(t *testing.T) {
	var gotName, gotCount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		gotCount = r.URL.Query().Get("count")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"name":"Paris","latitude":48.85,"longitude":2.35}]}`))
	}))
	defer srv.Close()

	body, err := testClient(srv).Geocode(context.Background(), " Paris ", 5)
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("empty body")
	}

	// The raw query goes upstream; normalization is cache-key-only.
	if gotName != " Paris " {
		t.Errorf("name = %q, want raw query", gotName)
	}
	if gotCount != "5" {
		t.Errorf("count = %q, want 5", gotCount)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	body, err := testClient(srv).Geocode(context.Background(), "Paris", 5)
	if err != nil {
		t.Fatalf("Geocode failed after retries: %v", err)
	}
	if string(body) != `{"results":[]}` {
		t.Errorf("body = %s", body)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
