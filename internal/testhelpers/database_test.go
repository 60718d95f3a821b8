package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
)

func TestDatabaseSetup(t *testing.T) {
	db := SetupTestDB(t)
	require.NotNil(t, db)

	author := CreateUser(t, db, "chef")
	assert.NotZero(t, author.ID)

	tag := CreateTag(t, db, "breakfast")
	flour := CreateIngredient(t, db, "flour", "g")
	egg := CreateIngredient(t, db, "egg", "pcs")

	recipe := CreateRecipe(t, db, author, "Pancakes", []*models.Tag{tag}, []*models.Ingredient{flour, egg}, 200)

	var loaded models.Recipe
	require.NoError(t, db.Preload("Tags").Preload("Ingredients").First(&loaded, recipe.ID).Error)
	assert.Equal(t, author.ID, loaded.AuthorID)
	require.Len(t, loaded.Tags, 1)
	assert.Equal(t, "breakfast", loaded.Tags[0].Slug)
	require.Len(t, loaded.Ingredients, 2)
	assert.Equal(t, 200, loaded.Ingredients[0].Amount)
	assert.Equal(t, 1, loaded.Ingredients[1].Amount)
}

func TestDatabasesAreIsolated(t *testing.T) {
	first := SetupTestDB(t)
	second := SetupTestDB(t)

	CreateUser(t, first, "only_here")

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestForeignKeysAreEnforced(t *testing.T) {
	db := SetupTestDB(t)

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	chef := CreateUser(t, db, "chef")
	egg := CreateIngredient(t, db, "egg", "pcs")
	recipe := CreateRecipe(t, db, chef, "Omelette", nil, []*models.Ingredient{egg})

	assert.Error(t, db.Create(&models.Favorite{UserID: 999, RecipeID: recipe.ID}).Error)
	assert.Error(t, db.Create(&models.CartItem{UserID: chef.ID, RecipeID: 999}).Error)
	assert.Error(t, db.Create(&models.Subscription{UserID: chef.ID, AuthorID: 999}).Error)
}
