package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

const batchSize = 500

func main() {
	ingredientsFile := flag.String("ingredients", "data/ingredients.json", "JSON file with ingredients")
	tagsFile := flag.String("tags", "data/tags.json", "JSON file with tags")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	var ingredients []models.Ingredient
	if err := loadJSON(*ingredientsFile, &ingredients); err != nil {
		logging.Fatal().Err(err).Msg("failed to read ingredients")
	}
	n, err := seed(db, ingredients)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to seed ingredients")
	}
	logging.Info().Int64("created", n).Int("total", len(ingredients)).Msg("ingredients seeded")

	var tags []models.Tag
	if err := loadJSON(*tagsFile, &tags); err != nil {
		logging.Fatal().Err(err).Msg("failed to read tags")
	}
	n, err = seed(db, tags)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to seed tags")
	}
	logging.Info().Int64("created", n).Int("total", len(tags)).Msg("tags seeded")
}

func loadJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// seed inserts rows, skipping any that collide with a unique key, and returns
// how many were created.
func seed[T any](db *gorm.DB, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, batchSize)
	return result.RowsAffected, result.Error
}
