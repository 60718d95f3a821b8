package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

type FavoriteService struct {
	rel *recipeRelation
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{rel: &recipeRelation{
		db:    db,
		name:  "favorites",
		model: &models.Favorite{},
		newEntry: func(userID, recipeID uint) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}}
}

// Add marks the recipe as a favorite of userID and returns it.
func (s *FavoriteService) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.rel.add(ctx, userID, recipeID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID uint) error {
	return s.rel.remove(ctx, userID, recipeID)
}
