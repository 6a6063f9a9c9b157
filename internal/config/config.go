package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application-wide settings.
type Config struct {
	Port string // server port

	// DatabaseURL, when set, replaces the discrete postgres settings.
	DatabaseURL string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	AppEnv string // development/production
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		AppEnv: getenv("APP_ENV", "development"),
	}

	// required checks
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	switch cfg.AppEnv {
	case "development", "production":
	default:
		return Config{}, fmt.Errorf("APP_ENV must be development or production")
	}

	if cfg.DatabaseURL != "" {
		return cfg, nil
	}

	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}
	cfg.PostgresPort = pgPort

	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
