package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// recipeRelation adds and removes (user, recipe) rows of one relation table.
// Favorites and the shopping cart share it.
type recipeRelation struct {
	db       *gorm.DB
	name     string
	newEntry func(userID, recipeID uint) interface{}
	model    interface{}
}

func (r *recipeRelation) add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	db := r.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err)
	}

	var count int64
	if err := db.Model(r.model).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, relationErr(ErrAlreadyExists, "Recipe %q is already in %s.", recipe.Name, r.name)
	}

	if err := db.Create(r.newEntry(userID, recipeID)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, relationErr(ErrAlreadyExists, "Recipe %q is already in %s.", recipe.Name, r.name)
		}
		return nil, fmt.Errorf("failed to add to %s: %w", r.name, err)
	}
	return &recipe, nil
}

func (r *recipeRelation) remove(ctx context.Context, userID, recipeID uint) error {
	db := r.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		return notFound(err)
	}

	res := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(r.model)
	if res.Error != nil {
		return fmt.Errorf("failed to remove from %s: %w", r.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return relationErr(ErrNotInRelation, "Recipe %q is not in %s.", recipe.Name, r.name)
	}
	return nil
}
