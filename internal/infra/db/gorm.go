package db

import (
	"fmt"

	"warehouse/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres connection and returns a *gorm.DB.
func Connect(cfg config.Config) (*gorm.DB, error) {
	// DATABASE_URL wins over the discrete settings
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser,
		cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}
