// Command someweatherctl is a terminal consumer of the SomeWeather backend,
// exercising the same cache policy the phone and watch apps use.
//
// Usage:
//
//	someweatherctl search <query>
//	someweatherctl city <name>
//	someweatherctl weather
//	someweatherctl forecast
//	someweatherctl units <metric|imperial>
//
// Environment:
//
//	SOMEWEATHER_URL      Backend base URL (default http://localhost:3000)
//	SOMEWEATHER_API_KEY  Backend API key
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/omedacore/someweather/internal/client"
	"github.com/omedacore/someweather/internal/weather"
)

const usage = "usage: someweatherctl <search|city|weather|forecast|units> [args]\n"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	repo, err := buildRepository()
	if err != nil {
		fmt.Fprintf(os.Stderr, "someweatherctl: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, repo, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "someweatherctl: %v\n", err)
		os.Exit(1)
	}
}

func buildRepository() (*client.Repository, error) {
	baseURL := os.Getenv("SOMEWEATHER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	api, err := client.New(client.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("SOMEWEATHER_API_KEY"),
	})
	if err != nil {
		return nil, err
	}

	prefsPath, err := client.DefaultPrefsPath()
	if err != nil {
		return nil, err
	}
	prefs, err := client.NewPrefs(prefsPath)
	if err != nil {
		return nil, err
	}

	return client.NewRepository(api, prefs, nil), nil
}

func run(ctx context.Context, repo *client.Repository, cmd string, args []string) error {
	switch cmd {
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("search needs a query")
		}
		results, err := repo.SearchCity(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(results)

	case "city":
		if len(args) == 0 {
			return fmt.Errorf("city needs a name")
		}
		return selectCity(ctx, repo, strings.Join(args, " "))

	case "weather":
		coords, err := savedCoordinates(repo)
		if err != nil {
			return err
		}
		payload, err := repo.Weather(ctx, coords)
		if err != nil {
			return err
		}
		return printJSON(payload)

	case "forecast":
		coords, err := savedCoordinates(repo)
		if err != nil {
			return err
		}
		payload, err := repo.Forecast(ctx, coords)
		if err != nil {
			return err
		}
		return printJSON(payload)

	case "units":
		if len(args) == 0 {
			fmt.Println(repo.UnitSystem())
			return nil
		}
		u, err := weather.ParseUnitSystem(args[0])
		if err != nil {
			return err
		}
		return repo.SetUnitSystem(ctx, u)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
		return nil
	}
}

func selectCity(ctx context.Context, repo *client.Repository, name string) error {
	results, err := repo.SearchCity(ctx, name)
	if err != nil {
		return err
	}

	var geo struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.Unmarshal(results, &geo); err != nil {
		return fmt.Errorf("decode geocoding results: %w", err)
	}
	if len(geo.Results) == 0 {
		return fmt.Errorf("no results for %q", name)
	}

	first := geo.Results[0]
	if err := repo.SelectCity(first.Name, client.Coordinates{Lat: first.Latitude, Lon: first.Longitude}); err != nil {
		return err
	}
	fmt.Printf("selected %s, %s (%.4f, %.4f)\n", first.Name, first.Country, first.Latitude, first.Longitude)
	return nil
}

func savedCoordinates(repo *client.Repository) (client.Coordinates, error) {
	city, ok := repo.SavedCity()
	if !ok {
		return client.Coordinates{}, fmt.Errorf("no city selected; run: someweatherctl city <name>")
	}
	lat, lon, ok := repo.SavedCoordinates()
	if !ok {
		return client.Coordinates{}, fmt.Errorf("no coordinates saved for %s; reselect the city", city)
	}
	return client.Coordinates{Lat: lat, Lon: lon}, nil
}

func printJSON(raw json.RawMessage) error {
	var buf map[string]any
	if err := json.Unmarshal(raw, &buf); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}
