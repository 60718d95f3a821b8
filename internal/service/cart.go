package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
)

type CartService struct {
	db  *gorm.DB
	rel *recipeRelation
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{
		db: db,
		rel: &recipeRelation{
			db:    db,
			name:  "the shopping cart",
			model: &models.CartItem{},
			newEntry: func(userID, recipeID uint) interface{} {
				return &models.CartItem{UserID: userID, RecipeID: recipeID}
			},
		},
	}
}

func (s *CartService) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.rel.add(ctx, userID, recipeID)
}

func (s *CartService) Remove(ctx context.Context, userID, recipeID uint) error {
	return s.rel.remove(ctx, userID, recipeID)
}

// Recipes returns the cart in the order recipes were added, with ingredient
// rows in their stored order.
func (s *CartService) Recipes(ctx context.Context, userID uint) ([]models.Recipe, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Recipe").
		Preload("Recipe.Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Recipe.Ingredients.Ingredient").
		Where("user_id = ?", userID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, len(items))
	for i, item := range items {
		recipes[i] = item.Recipe
	}
	return recipes, nil
}

// ShoppingList aggregates the ingredients of every recipe in the cart.
func (s *CartService) ShoppingList(ctx context.Context, userID uint) (*shoppinglist.List, error) {
	recipes, err := s.Recipes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return shoppinglist.Build(recipes), nil
}
