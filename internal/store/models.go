// Package store persists the two cache namespaces in a relational database:
// the permanent city-geocoding cache and the time-boxed weather cache.
package store

import "time"

// CityCache is the permanent geocoding cache. Rows are only removed by an
// explicit cache clear.
type CityCache struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Query     string    `gorm:"size:255;not null;uniqueIndex" json:"query"`
	Results   string    `gorm:"type:text;not null" json:"results"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CityCache) TableName() string {
	return "city_cache"
}

// WeatherCache is the time-boxed forecast cache, unique on
// (coordinates, units).
type WeatherCache struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Coordinates string    `gorm:"size:64;not null;uniqueIndex:idx_weather_coord_units" json:"coordinates"`
	Units       string    `gorm:"size:64;not null;uniqueIndex:idx_weather_coord_units" json:"units"`
	Data        string    `gorm:"type:text;not null" json:"data"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (WeatherCache) TableName() string {
	return "weather_cache"
}
