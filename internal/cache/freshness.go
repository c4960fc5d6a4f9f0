package cache

import "time"

const (
	// ServerWeatherTTL is how long the backend serves a cached forecast
	// before refetching from upstream.
	ServerWeatherTTL = 30 * time.Minute

	// ClientWeatherTTL is how long the client trusts its local slot before
	// asking the backend again.
	ClientWeatherTTL = 5 * time.Minute

	// CoordinateEpsilon is the tolerance (in degrees) for deciding that a
	// cached coordinate pair matches a requested one.
	CoordinateEpsilon = 0.01
)

// Fresh reports whether an entry written at entryTime is still usable at
// now, given ttl. Expiry is checked lazily at read time; there is no
// sliding window and no background requirement.
func Fresh(entryTime time.Time, ttl time.Duration, now time.Time) bool {
	return now.Sub(entryTime) < ttl
}
