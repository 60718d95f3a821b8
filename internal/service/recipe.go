package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeView is a recipe annotated for the viewer.
type RecipeView struct {
	models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images ImageStorage
}

// NewRecipeService creates a new RecipeService instance. images may be nil
// when uploads are disabled.
func NewRecipeService(db *gorm.DB, images ImageStorage) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// List returns a page of recipes, newest first. viewerID 0 is anonymous; the
// favorite and cart filters then match nothing.
func (s *RecipeService) List(ctx context.Context, viewerID uint, filter *types.RecipeFilter, page PageRequest) ([]RecipeView, int64, error) {
	db := s.db.WithContext(ctx)
	filtered := func() *gorm.DB {
		return filterRecipes(db, viewerID, filter)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	if err := preloadRecipe(filtered()).
		Order("recipes.created_at DESC").Order("recipes.id DESC").
		Offset(page.offset()).Limit(page.limit()).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	views, err := annotate(db, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RecipeService) Get(ctx context.Context, viewerID, id uint) (*RecipeView, error) {
	db := s.db.WithContext(ctx)

	recipe, err := loadRecipe(db, id)
	if err != nil {
		return nil, err
	}
	views, err := annotate(db, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create stores a recipe of authorID with its tags and ingredient rows.
func (s *RecipeService) Create(ctx context.Context, authorID uint, req *types.RecipeRequest) (*RecipeView, error) {
	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if err := s.write(ctx, &recipe, req); err != nil {
		return nil, err
	}

	logging.Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.Get(ctx, authorID, recipe.ID)
}

// Update replaces the recipe's fields, tags and ingredients. Only the author
// may update; an empty image keeps the stored one.
func (s *RecipeService) Update(ctx context.Context, actorID, id uint, req *types.RecipeRequest) (*RecipeView, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	if recipe.AuthorID != actorID {
		return nil, ErrForbidden
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime

	if err := s.write(ctx, &recipe, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, actorID, recipe.ID)
}

// Delete removes the recipe and everything that references it.
func (s *RecipeService) Delete(ctx context.Context, actorID, id uint) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return notFound(err)
	}
	if recipe.AuthorID != actorID {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRecipes(tx, []uint{id})
	}); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	logging.Info().Uint("recipe_id", id).Msg("recipe deleted")
	return nil
}

// write validates references, uploads the image and saves recipe with its
// tag and ingredient rows in one transaction.
func (s *RecipeService) write(ctx context.Context, recipe *models.Recipe, req *types.RecipeRequest) error {
	db := s.db.WithContext(ctx)

	if err := s.checkRecipe(db, recipe, req); err != nil {
		return err
	}

	var imageKey string
	if req.Image != "" {
		key, url, err := s.storeImage(ctx, req.Image)
		if err != nil {
			return err
		}
		imageKey = key
		recipe.Image = url
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients", "Author").Save(recipe).Error; err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipe.ID).Error; err != nil {
			return err
		}
		for _, tagID := range req.Tags {
			if err := tx.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipe.ID, tagID).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		rows := make([]models.RecipeIngredient, len(req.Ingredients))
		for i, item := range req.Ingredients {
			rows[i] = models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: item.ID, Amount: item.Amount}
		}
		return tx.Omit("Ingredient").Create(&rows).Error
	})
	if err != nil {
		if imageKey != "" {
			s.discardImage(ctx, imageKey)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("name", "A recipe with this name already exists.")
		}
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// checkRecipe reports a taken name and unknown tag or ingredient ids.
func (s *RecipeService) checkRecipe(db *gorm.DB, recipe *models.Recipe, req *types.RecipeRequest) error {
	verr := &ValidationError{Fields: map[string][]string{}}

	var count int64
	if err := db.Model(&models.Recipe{}).Where("name = ? AND id <> ?", recipe.Name, recipe.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		verr.Fields["name"] = []string{"A recipe with this name already exists."}
	}

	if len(req.Tags) > 0 {
		if err := db.Model(&models.Tag{}).Where("id IN ?", req.Tags).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(req.Tags) {
			verr.Fields["tags"] = []string{"Unknown tag id."}
		}
	}

	ids := make([]uint, len(req.Ingredients))
	for i, item := range req.Ingredients {
		ids[i] = item.ID
	}
	if err := db.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		verr.Fields["ingredients"] = []string{"Unknown ingredient id."}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// storeImage uploads the data URI and returns the object key and public URL.
func (s *RecipeService) storeImage(ctx context.Context, uri string) (string, string, error) {
	img, err := DecodeDataURI(uri)
	if err != nil {
		return "", "", err
	}
	if s.images == nil {
		return "", "", newValidationError("image", ErrStorageDisabled.Error())
	}
	key := img.ObjectKey()
	url, err := s.images.Put(ctx, key, img.ContentType, img.Data)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// discardImage removes an upload whose recipe was not saved.
func (s *RecipeService) discardImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("recipe not saved; uploaded image is orphaned")
	}
}

func filterRecipes(db *gorm.DB, viewerID uint, filter *types.RecipeFilter) *gorm.DB {
	query := db.Model(&models.Recipe{})
	if filter == nil {
		return query
	}

	if len(filter.Tags) > 0 {
		query = query.Where("recipes.id IN (?)", db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags))
	}
	if filter.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		query = query.Where("LOWER(recipes.name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(name))+"%")
	}
	if filter.IsFavorited {
		query = query.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).
			Select("recipe_id").Where("user_id = ?", viewerID))
	}
	if filter.IsInShoppingCart {
		query = query.Where("recipes.id IN (?)", db.Model(&models.CartItem{}).
			Select("recipe_id").Where("user_id = ?", viewerID))
	}
	return query
}

func preloadRecipe(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func loadRecipe(db *gorm.DB, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(db).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

// annotate marks the recipes the viewer favorited or carted and whether the
// viewer follows each author.
func annotate(db *gorm.DB, viewerID uint, recipes []models.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i] = RecipeView{Recipe: recipes[i]}
	}
	if viewerID == 0 || len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	favorited, err := recipeSet(db, &models.Favorite{}, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	carted, err := recipeSet(db, &models.CartItem{}, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedAuthors(db, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range views {
		views[i].IsFavorited = favorited[views[i].ID]
		views[i].IsInShoppingCart = carted[views[i].ID]
		views[i].AuthorSubscribed = subscribed[views[i].AuthorID]
	}
	return views, nil
}

// recipeSet returns the ids among recipeIDs that userID has in the relation
// table of model.
func recipeSet(db *gorm.DB, model interface{}, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	var ids []uint
	if err := db.Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// deleteRecipes removes recipes with their rows, tags, favorites and cart
// entries. It must run inside a transaction.
func deleteRecipes(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id IN ?", ids).Error; err != nil {
		return err
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&models.Favorite{}).Error; err != nil {
		return err
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Recipe{}, ids).Error
}
