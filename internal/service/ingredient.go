package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// List returns the ingredients whose name starts with namePrefix, ignoring case.
func (s *IngredientService) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name").Order("id")
	if namePrefix = strings.TrimSpace(namePrefix); namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(namePrefix))+"%")
	}

	ingredients := []models.Ingredient{}
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ing, nil
}

func (s *IngredientService) Create(ctx context.Context, req *types.IngredientRequest) (*models.Ingredient, error) {
	ing := models.Ingredient{Name: req.Name, MeasurementUnit: req.MeasurementUnit}
	if err := s.save(ctx, &ing); err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *IngredientService) Update(ctx context.Context, id uint, req *types.IngredientRequest) (*models.Ingredient, error) {
	ing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ing.Name, ing.MeasurementUnit = req.Name, req.MeasurementUnit
	if err := s.save(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

// Delete removes an ingredient that no recipe uses. Recipes must keep at
// least one ingredient, so a used ingredient is refused.
func (s *IngredientService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return newValidationError("non_field_errors",
				fmt.Sprintf("The ingredient is used in %d recipe(s) and cannot be deleted.", used))
		}
		return tx.Delete(&models.Ingredient{}, id).Error
	})
}

func (s *IngredientService) save(ctx context.Context, ing *models.Ingredient) error {
	db := s.db.WithContext(ctx)
	const msg = "An ingredient with this name and measurement unit already exists."

	var count int64
	if err := db.Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ? AND id <> ?", ing.Name, ing.MeasurementUnit, ing.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return newValidationError("non_field_errors", msg)
	}

	if err := db.Save(ing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("non_field_errors", msg)
		}
		return fmt.Errorf("failed to save ingredient: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
