package service

import (
	"context"
	"math"
	"time"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.CreateUserRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	GenerateToken(user *models.User) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uint, current, next string) error
}

// IUserService defines the interface for user account operations
type IUserService interface {
	List(ctx context.Context, viewerID uint, page PageRequest) ([]UserView, int64, error)
	Get(ctx context.Context, viewerID, id uint) (*UserView, error)
	Update(ctx context.Context, actorID, id uint, req *types.UpdateUserRequest) (*UserView, error)
	Delete(ctx context.Context, actorID, id uint) error
}

// ITagService defines the interface for tag catalogue operations
type ITagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	Get(ctx context.Context, id uint) (*models.Tag, error)
	Create(ctx context.Context, req *types.TagRequest) (*models.Tag, error)
	Update(ctx context.Context, id uint, req *types.TagRequest) (*models.Tag, error)
	Delete(ctx context.Context, id uint) error
}

// IIngredientService defines the interface for ingredient catalogue operations
type IIngredientService interface {
	List(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	Get(ctx context.Context, id uint) (*models.Ingredient, error)
	Create(ctx context.Context, req *types.IngredientRequest) (*models.Ingredient, error)
	Update(ctx context.Context, id uint, req *types.IngredientRequest) (*models.Ingredient, error)
	Delete(ctx context.Context, id uint) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, viewerID uint, filter *types.RecipeFilter, page PageRequest) ([]RecipeView, int64, error)
	Get(ctx context.Context, viewerID, id uint) (*RecipeView, error)
	Create(ctx context.Context, authorID uint, req *types.RecipeRequest) (*RecipeView, error)
	Update(ctx context.Context, actorID, id uint, req *types.RecipeRequest) (*RecipeView, error)
	Delete(ctx context.Context, actorID, id uint) error
}

// IFavoriteService defines the interface for favorite operations
type IFavoriteService interface {
	Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	Remove(ctx context.Context, userID, recipeID uint) error
}

// ICartService defines the interface for shopping cart operations
type ICartService interface {
	Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	Remove(ctx context.Context, userID, recipeID uint) error
	Recipes(ctx context.Context, userID uint) ([]models.Recipe, error)
	ShoppingList(ctx context.Context, userID uint) (*shoppinglist.List, error)
}

// ISubscriptionService defines the interface for following authors
type ISubscriptionService interface {
	Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*AuthorView, error)
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	List(ctx context.Context, userID uint, page PageRequest, recipesLimit int) ([]AuthorView, int64, error)
}

// ImageStorage stores an uploaded recipe image and returns its public URL.
// Delete removes an object that was stored for a write that did not commit.
type ImageStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// TokenRevoker remembers logged-out token ids until they expire
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// PageRequest selects one page of a list. Page is 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

// offset saturates at math.MaxInt32 instead of overflowing.
func (p PageRequest) offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt32/p.Limit {
		return math.MaxInt32
	}
	return (p.Page - 1) * p.Limit
}

// limit returns -1, meaning no limit, when Limit is unset.
func (p PageRequest) limit() int {
	if p.Limit < 1 {
		return -1
	}
	return p.Limit
}
