package database

import (
	"fmt"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the configured database and applies the connection pool settings
func New(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		logging.Info().Str("path", cfg.SQLitePath).Msg("opening sqlite database")
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on")
	default:
		// connection string is not logged, it carries the password
		logging.Info().
			Str("host", cfg.DBHost).
			Str("port", cfg.DBPort).
			Str("user", cfg.DBUser).
			Msg("connecting to postgres")
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := Open(dialector, !config.IsProduction())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	logging.Info().Str("driver", cfg.DBDriver).Msg("database connected")
	return db, nil
}

// Open wraps gorm.Open with the settings shared by the server and tests.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, verbose bool) (*gorm.DB, error) {
	level := logger.Silent
	if verbose {
		level = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return db, nil
}

// HealthCheck checks if the database is accessible
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
