package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

var pngDataURI = "data:image/png;base64," +
	base64.StdEncoding.EncodeToString(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...))

type recipeFixture struct {
	db     *gorm.DB
	svc    *service.RecipeService
	author *models.User
	other  *models.User
	tag    *models.Tag
	flour  *models.Ingredient
	egg    *models.Ingredient
}

func setupRecipes(t *testing.T, images service.ImageStorage) *recipeFixture {
	db := testhelpers.SetupTestDB(t)
	return &recipeFixture{
		db:     db,
		svc:    service.NewRecipeService(db, images),
		author: testhelpers.CreateUser(t, db, "author"),
		other:  testhelpers.CreateUser(t, db, "other"),
		tag:    testhelpers.CreateTag(t, db, "breakfast"),
		flour:  testhelpers.CreateIngredient(t, db, "flour", "g"),
		egg:    testhelpers.CreateIngredient(t, db, "egg", "pcs"),
	}
}

func (f *recipeFixture) request(name string) *types.RecipeRequest {
	return &types.RecipeRequest{
		Ingredients: []types.IngredientAmount{{ID: f.flour.ID, Amount: 200}, {ID: f.egg.ID, Amount: 2}},
		Tags:        []uint{f.tag.ID},
		Name:        name,
		Text:        "Mix and fry.",
		CookingTime: 15,
	}
}

func TestCreateRecipe(t *testing.T) {
	f := setupRecipes(t, nil)

	view, err := f.svc.Create(context.Background(), f.author.ID, f.request("Pancakes"))
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", view.Name)
	assert.Equal(t, f.author.ID, view.Author.ID)
	require.Len(t, view.Tags, 1)
	assert.Equal(t, "breakfast", view.Tags[0].Slug)
	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, "flour", view.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 200, view.Ingredients[0].Amount)
	assert.False(t, view.IsFavorited)
}

func TestCreateRecipeValidatesReferences(t *testing.T) {
	f := setupRecipes(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.author.ID, f.request("Pancakes"))
	require.NoError(t, err)

	req := f.request("Pancakes")
	req.Tags = []uint{999}
	req.Ingredients = append(req.Ingredients, types.IngredientAmount{ID: 999, Amount: 1})

	_, err = f.svc.Create(ctx, f.author.ID, req)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "tags")
	assert.Contains(t, verr.Fields, "ingredients")
}

func TestCreateRecipeUploadsImage(t *testing.T) {
	images := new(testhelpers.MockImageStorage)
	f := setupRecipes(t, images)

	images.On("Put", mock.Anything,
		mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "recipes/") && strings.HasSuffix(key, ".png")
		}),
		"image/png", mock.Anything,
	).Return("https://cdn.example.com/recipes/pancakes.png", nil).Once()

	req := f.request("Pancakes")
	req.Image = pngDataURI
	view, err := f.svc.Create(context.Background(), f.author.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/recipes/pancakes.png", view.Image)

	images.AssertExpectations(t)
}

func TestCreateRecipeRemovesImageWhenSaveFails(t *testing.T) {
	images := new(testhelpers.MockImageStorage)
	f := setupRecipes(t, images)

	var uploadedKey string
	images.On("Put", mock.Anything, mock.AnythingOfType("string"), "image/png", mock.Anything).
		Run(func(args mock.Arguments) {
			uploadedKey = args.String(1)
			// another request takes the name between the checks and the insert
			require.NoError(t, f.db.Create(&models.Recipe{
				AuthorID: f.other.ID, Name: "Pancakes", Text: "Theirs.", CookingTime: 5,
			}).Error)
		}).
		Return("https://cdn.example.com/recipes/pancakes.png", nil).Once()
	images.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	req := f.request("Pancakes")
	req.Image = pngDataURI
	_, err := f.svc.Create(context.Background(), f.author.ID, req)

	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")

	images.AssertExpectations(t)
	images.AssertCalled(t, "Delete", mock.Anything, uploadedKey)
}

func TestCreateRecipeImageWithoutStorage(t *testing.T) {
	f := setupRecipes(t, nil)

	req := f.request("Pancakes")
	req.Image = pngDataURI
	_, err := f.svc.Create(context.Background(), f.author.ID, req)

	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "image")
}

func TestUpdateRecipe(t *testing.T) {
	f := setupRecipes(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.author.ID, f.request("Pancakes"))
	require.NoError(t, err)

	req := f.request("Crepes")
	req.Ingredients = []types.IngredientAmount{{ID: f.egg.ID, Amount: 3}}
	req.Tags = nil

	_, err = f.svc.Update(ctx, f.other.ID, created.ID, req)
	assert.ErrorIs(t, err, service.ErrForbidden)

	updated, err := f.svc.Update(ctx, f.author.ID, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Crepes", updated.Name)
	assert.Empty(t, updated.Tags)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, 3, updated.Ingredients[0].Amount)

	var rows int64
	require.NoError(t, f.db.Model(&models.RecipeIngredient{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := setupRecipes(t, nil)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.author.ID, f.request("Pancakes"))
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.other.ID, RecipeID: created.ID}).Error)
	require.NoError(t, f.db.Create(&models.CartItem{UserID: f.other.ID, RecipeID: created.ID}).Error)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.other.ID, created.ID), service.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.author.ID, created.ID))

	_, err = f.svc.Get(ctx, 0, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	for _, model := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.CartItem{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
	var tagRows int64
	require.NoError(t, f.db.Table("recipe_tags").Count(&tagRows).Error)
	assert.Zero(t, tagRows)
}

func TestListRecipesFilters(t *testing.T) {
	f := setupRecipes(t, nil)
	ctx := context.Background()
	lunch := testhelpers.CreateTag(t, f.db, "lunch")

	pancakes := testhelpers.CreateRecipe(t, f.db, f.author, "Pancakes", []*models.Tag{f.tag}, []*models.Ingredient{f.flour})
	soup := testhelpers.CreateRecipe(t, f.db, f.other, "Soup", []*models.Tag{lunch}, []*models.Ingredient{f.egg})
	testhelpers.CreateRecipe(t, f.db, f.other, "Omelette", []*models.Tag{f.tag, lunch}, []*models.Ingredient{f.egg})
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.author.ID, RecipeID: soup.ID}).Error)
	require.NoError(t, f.db.Create(&models.CartItem{UserID: f.author.ID, RecipeID: pancakes.ID}).Error)

	names := func(views []service.RecipeView) []string {
		out := make([]string, len(views))
		for i, v := range views {
			out[i] = v.Name
		}
		return out
	}

	all, total, err := f.svc.List(ctx, 0, nil, service.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"Omelette", "Soup", "Pancakes"}, names(all))

	byTag, _, err := f.svc.List(ctx, 0, &types.RecipeFilter{Tags: []string{"breakfast"}}, service.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pancakes", "Omelette"}, names(byTag))

	byAuthor, _, err := f.svc.List(ctx, 0, &types.RecipeFilter{AuthorID: f.other.ID}, service.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Soup", "Omelette"}, names(byAuthor))

	byName, _, err := f.svc.List(ctx, 0, &types.RecipeFilter{Name: "OME"}, service.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Omelette"}, names(byName))

	favorites, _, err := f.svc.List(ctx, f.author.ID, &types.RecipeFilter{IsFavorited: true}, service.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []string{"Soup"}, names(favorites))
	assert.True(t, favorites[0].IsFavorited)

	cart, _, err := f.svc.List(ctx, f.author.ID, &types.RecipeFilter{IsInShoppingCart: true}, service.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []string{"Pancakes"}, names(cart))
	assert.True(t, cart[0].IsInShoppingCart)

	anonymous, total, err := f.svc.List(ctx, 0, &types.RecipeFilter{IsFavorited: true}, service.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, anonymous)
}

func TestListRecipesPagination(t *testing.T) {
	f := setupRecipes(t, nil)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		testhelpers.CreateRecipe(t, f.db, f.author, name, nil, []*models.Ingredient{f.flour})
	}

	page, total, err := f.svc.List(context.Background(), 0, nil, service.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].Name)
	assert.Equal(t, "B", page[1].Name)
}

func TestGetRecipeMarksSubscription(t *testing.T) {
	f := setupRecipes(t, nil)
	recipe := testhelpers.CreateRecipe(t, f.db, f.author, "Pancakes", nil, []*models.Ingredient{f.flour})
	require.NoError(t, f.db.Create(&models.Subscription{UserID: f.other.ID, AuthorID: f.author.ID}).Error)

	view, err := f.svc.Get(context.Background(), f.other.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, view.AuthorSubscribed)

	view, err = f.svc.Get(context.Background(), 0, recipe.ID)
	require.NoError(t, err)
	assert.False(t, view.AuthorSubscribed)
}
