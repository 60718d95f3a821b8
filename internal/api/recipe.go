package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "cart.txt"

type RecipeHandler struct {
	authService     service.IAuthService
	recipeService   service.IRecipeService
	favoriteService service.IFavoriteService
	cartService     service.ICartService
	createLimiter   *middleware.RateLimiter
	pageSize        int
}

// NewRecipeHandler creates the recipe handler. createLimiter may be nil to
// leave recipe creation unthrottled.
func NewRecipeHandler(
	authService service.IAuthService,
	recipeService service.IRecipeService,
	favoriteService service.IFavoriteService,
	cartService service.ICartService,
	createLimiter *middleware.RateLimiter,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		authService:     authService,
		recipeService:   recipeService,
		favoriteService: favoriteService,
		cartService:     cartService,
		createLimiter:   createLimiter,
		pageSize:        pageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	create := []gin.HandlerFunc{auth}
	if h.createLimiter != nil {
		create = append(create, h.createLimiter.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", create...)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.PATCH("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", auth, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", auth, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", auth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var filter types.RecipeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid filter parameters."})
		return
	}

	page := pageRequest(c, h.pageSize)
	views, total, err := h.recipeService.List(c.Request.Context(), middleware.UserID(c), &filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, recipeViews(views)))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.recipeService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeResponse(view))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.recipeService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeResponse(view))
}

// UpdateRecipe serves both PUT and PATCH; the body is always a full recipe.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.recipeService.Update(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeResponse(view))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipeService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.favoriteService.Add(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shortRecipe(recipe))
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.favoriteService.Remove(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.cartService.Add(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shortRecipe(recipe))
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.cartService.Remove(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated shopping list as a text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID := middleware.UserID(c)
	list, err := h.cartService.ShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RecordShoppingListDownload(len(list.Items))
	logging.Debug().Uint("user_id", userID).Int("recipes", len(list.Recipes)).Msg("shopping list generated")

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+shoppingListFilename)
	c.Status(http.StatusOK)
	if _, err := list.WriteTo(c.Writer); err != nil {
		logging.Warn().Err(err).Msg("failed to write shopping list")
	}
}
