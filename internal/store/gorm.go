package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/omedacore/someweather/internal/weather"
)

// GormStore implements weather.Store on top of GORM. Production runs on
// Postgres; dev and tests use the pure-Go SQLite driver.
type GormStore struct {
	db *gorm.DB
}

// ConnectPostgres opens a Postgres-backed store.
func ConnectPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	return newGormStore(db)
}

// ConnectSQLite opens a SQLite-backed store at path (":memory:" works).
func ConnectSQLite(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*GormStore, error) {
	// The schema is two idempotent create-tables; AutoMigrate covers it.
	if err := db.AutoMigrate(&CityCache{}, &WeatherCache{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) GetCity(ctx context.Context, key string) (*weather.CityEntry, error) {
	var row CityCache
	err := s.db.WithContext(ctx).Where("query = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, weather.ErrNotFound
		}
		return nil, err
	}
	return &weather.CityEntry{
		Query:     row.Query,
		Results:   json.RawMessage(row.Results),
		CreatedAt: row.CreatedAt,
	}, nil
}

func (s *GormStore) UpsertCity(ctx context.Context, key string, results []byte) error {
	row := CityCache{Query: key, Results: string(results), CreatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query"}},
		DoUpdates: clause.AssignmentColumns([]string{"results"}),
	}).Create(&row).Error
}

func (s *GormStore) GetWeather(ctx context.Context, coordKey, unitsKey string) (*weather.WeatherEntry, error) {
	var row WeatherCache
	err := s.db.WithContext(ctx).
		Where("coordinates = ? AND units = ?", coordKey, unitsKey).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, weather.ErrNotFound
		}
		return nil, err
	}
	return &weather.WeatherEntry{
		Coordinates: row.Coordinates,
		Units:       row.Units,
		Payload:     json.RawMessage(row.Data),
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func (s *GormStore) UpsertWeather(ctx context.Context, coordKey, unitsKey string, payload []byte) error {
	row := WeatherCache{
		Coordinates: coordKey,
		Units:       unitsKey,
		Data:        string(payload),
		UpdatedAt:   time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "coordinates"}, {Name: "units"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

func (s *GormStore) DeleteWeather(ctx context.Context, coordKey, unitsKey string) error {
	return s.db.WithContext(ctx).
		Where("coordinates = ? AND units = ?", coordKey, unitsKey).
		Delete(&WeatherCache{}).Error
}

func (s *GormStore) DeleteWeatherBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&WeatherCache{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
