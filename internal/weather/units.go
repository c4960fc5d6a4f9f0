package weather

import "fmt"

// UnitSystem is the single internal representation of the user's unit
// choice. Everything that talks to the upstream API converts from this enum;
// raw unit strings are never threaded through the layers.
type UnitSystem string

const (
	UnitMetric   UnitSystem = "metric"
	UnitImperial UnitSystem = "imperial"
)

// ParseUnitSystem parses a stored or user-supplied unit-system tag.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(s) {
	case UnitMetric, UnitImperial:
		return UnitSystem(s), nil
	}
	return "", fmt.Errorf("unknown unit system %q", s)
}

// TemperatureUnit returns the upstream temperature selector.
func (u UnitSystem) TemperatureUnit() string {
	if u == UnitImperial {
		return "fahrenheit"
	}
	return "celsius"
}

// WindspeedUnit returns the upstream windspeed selector.
func (u UnitSystem) WindspeedUnit() string {
	if u == UnitImperial {
		return "mph"
	}
	return "ms"
}

// PrecipitationUnit returns the upstream precipitation selector.
func (u UnitSystem) PrecipitationUnit() string {
	if u == UnitImperial {
		return "inch"
	}
	return "mm"
}

// Default parameter lists requested from the forecast API. The server never
// inspects these; they are the field lists the bundled client sends.
const (
	DefaultCurrentParams = "temperature_2m,relative_humidity_2m,weathercode,wind_speed_10m,wind_direction_10m,wind_gusts_10m,pressure_msl,visibility,is_day"
	DefaultHourlyParams  = "temperature_2m,relative_humidity_2m,weathercode,wind_speed_10m,wind_direction_10m,wind_gusts_10m,precipitation,precipitation_probability"
	DefaultDailyParams   = "weathercode,temperature_2m_max,temperature_2m_min,sunrise,sunset"
	DefaultTimezone      = "auto"
)
