package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientHandler struct {
	authService service.IAuthService
	ingredientService  service.IIngredientService
}

func NewIngredientHandler(authService service.IAuthService, ingredientService service.IIngredientService) *IngredientHandler {
	return &IngredientHandler{authService: authService, ingredientService: ingredientService}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)

		admin := ingredients.Group("", middleware.AuthMiddleware(h.authService), middleware.RequireAdmin())
		admin.POST("", h.CreateIngredient)
		admin.PUT("/:id", h.UpdateIngredient)
		admin.PATCH("/:id", h.UpdateIngredient)
		admin.DELETE("/:id", h.DeleteIngredient)
	}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ing, err := h.ingredientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req types.IngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	ing, err := h.ingredientService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func (h *IngredientHandler) UpdateIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.IngredientRequest
	if !bindJSON(c, &req) {
		return
	}
	ing, err := h.ingredientService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ingredientService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
