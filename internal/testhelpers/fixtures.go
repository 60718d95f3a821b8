package testhelpers

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the plain password of every user made by CreateUser.
const TestPassword = "password123"

// CreateUser inserts a user named username with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateTag inserts a tag whose slug is its name.
func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()

	tag := &models.Tag{Name: name, Color: "#49B64E", Slug: name}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ing
}

// CreateRecipe inserts a recipe by author. amounts match ingredients by
// position; a missing amount is 1.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, ingredients []*models.Ingredient, amounts ...int) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        fmt.Sprintf("How to cook %s", name),
		CookingTime: 10,
	}
	for _, tag := range tags {
		recipe.Tags = append(recipe.Tags, *tag)
	}
	for i, ing := range ingredients {
		amount := 1
		if i < len(amounts) {
			amount = amounts[i]
		}
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			IngredientID: ing.ID,
			Amount:       amount,
		})
	}

	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}
