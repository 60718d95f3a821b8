package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last applied migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	dsn, migrationsDir, err := settings(*dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := ensureTable(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to prepare schema_migrations")
	}

	if *rollback {
		name, err := rollbackLast(db, migrationsDir)
		if err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		logging.Info().Str("migration", name).Msg("rolled back")
		return
	}

	applied, err := applyPending(db, migrationsDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
	logging.Info().Int("applied", applied).Msg("all migrations applied")
}

// settings prefers DATABASE_URL and falls back to the application config.
func settings(dir string) (string, string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" && dir != "" {
		return dsn, dir, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return "", "", err
	}
	if dsn == "" {
		dsn = cfg.DSN()
	}
	if dir == "" {
		dir = cfg.MigrationsDir
	}
	return dsn, dir, nil
}

func ensureTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func applyPending(db *sql.DB, dir string) (int, error) {
	files, err := database.MigrationFiles(dir)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, name := range files {
		var exists bool
		if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)", name).Scan(&exists); err != nil {
			return applied, fmt.Errorf("failed to check migration %s: %w", name, err)
		}
		if exists {
			logging.Debug().Str("migration", name).Msg("already applied")
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if err := inTx(db, string(content), "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		logging.Info().Str("migration", name).Msg("applied")
		applied++
	}
	return applied, nil
}

func rollbackLast(db *sql.DB, dir string) (string, error) {
	var name string
	err := db.QueryRow("SELECT name FROM schema_migrations ORDER BY id DESC LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	path := filepath.Join(dir, strings.TrimSuffix(name, ".sql")+"_rollback.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file: %w", err)
	}
	if err := inTx(db, string(content), "DELETE FROM schema_migrations WHERE name = $1", name); err != nil {
		return "", err
	}
	return name, nil
}

// inTx runs script and then the bookkeeping statement in one transaction.
func inTx(db *sql.DB, script, record, name string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(record, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
