// Package cache holds the key-normalization and freshness policies shared by
// the server and client cache tiers. Everything here is a pure function of
// its inputs so both tiers stay trivially testable.
package cache

import (
	"fmt"
	"math"
	"strings"
)

// CityKey normalizes a free-text city query into a cache key. "London" and
// " london " must land in the same cache slot.
func CityKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// CoordinateKey derives a cache key from a coordinate pair, rounded to four
// decimal places. Rounding bounds cache cardinality and absorbs float jitter
// from repeated geocoding of the same city.
func CoordinateKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// UnitsKey combines the three upstream unit selectors into a single cache
// key component, e.g. "celsius_ms_mm".
func UnitsKey(temperatureUnit, windspeedUnit, precipitationUnit string) string {
	return temperatureUnit + "_" + windspeedUnit + "_" + precipitationUnit
}

// CoordinatesEqual reports whether two coordinate pairs refer to the same
// place within eps degrees. Geocoded and device-stored coordinates for the
// same city differ in trailing precision, so exact float comparison is wrong.
func CoordinatesEqual(aLat, aLon, bLat, bLon, eps float64) bool {
	return math.Abs(aLat-bLat) < eps && math.Abs(aLon-bLon) < eps
}
