package api

import (
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func userResponse(u models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func userViews(views []service.UserView) []types.UserResponse {
	out := make([]types.UserResponse, len(views))
	for i, v := range views {
		out[i] = userResponse(v.User, v.IsSubscribed)
	}
	return out
}

func recipeResponse(v *service.RecipeView) types.RecipeResponse {
	tags := v.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	ingredients := make([]types.RecipeIngredientResponse, len(v.Ingredients))
	for i, row := range v.Ingredients {
		ingredients[i] = types.RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		}
	}

	return types.RecipeResponse{
		ID:               v.ID,
		Tags:             tags,
		Author:           userResponse(v.Author, v.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      v.IsFavorited,
		IsInShoppingCart: v.IsInShoppingCart,
		Name:             v.Name,
		Image:            v.Image,
		Text:             v.Text,
		CookingTime:      v.CookingTime,
	}
}

func recipeViews(views []service.RecipeView) []types.RecipeResponse {
	out := make([]types.RecipeResponse, len(views))
	for i := range views {
		out[i] = recipeResponse(&views[i])
	}
	return out
}

func shortRecipe(r *models.Recipe) types.ShortRecipeResponse {
	return types.ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func authorResponse(v *service.AuthorView) types.SubscriptionResponse {
	recipes := make([]types.ShortRecipeResponse, len(v.Recipes))
	for i := range v.Recipes {
		recipes[i] = shortRecipe(&v.Recipes[i])
	}
	return types.SubscriptionResponse{
		UserResponse: userResponse(v.User, v.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: v.RecipesCount,
	}
}

func authorViews(views []service.AuthorView) []types.SubscriptionResponse {
	out := make([]types.SubscriptionResponse, len(views))
	for i := range views {
		out[i] = authorResponse(&views[i])
	}
	return out
}
