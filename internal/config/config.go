package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"execedge/internal/storage"
)

type Config struct {
	Env         string `validate:"oneof=development staging production"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	LogFile     string
	Backend     string `validate:"oneof=sqlite postgres memory"`
	SQLitePath  string `validate:"required_if=Backend sqlite"`
	PostgresDSN string `validate:"required_if=Backend postgres"`
	HTTPAddr    string `validate:"required,hostname_port"`
	CatalogFile string
	Timezone    string `validate:"required"`
	UserID      string `validate:"required"`

	location *time.Location
}

var validate = validator.New()

// Load reads the environment, after applying a .env file when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	sqlitePath, err := storage.DefaultDBPath()
	if err != nil {
		sqlitePath = ".execedge.db"
	}

	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		Backend:     getEnv("STORAGE_BACKEND", "sqlite"),
		SQLitePath:  getEnv("SQLITE_PATH", sqlitePath),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8088"),
		CatalogFile: getEnv("CATALOG_FILE", ""),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		UserID:      getEnv("EXECEDGE_USER", storage.MainUserID),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid config: APP_TIMEZONE: %w", err)
	}
	c.location = loc
	return nil
}

// Location is the zone that defines the calendar day. Valid after Validate.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// DSN returns the data source for the configured SQL backend.
func (c *Config) DSN() (storage.Dialect, string) {
	if c.Backend == "postgres" {
		return storage.DialectPostgres, c.PostgresDSN
	}
	return storage.DialectSQLite, c.SQLitePath
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
