package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type TagHandler struct {
	authService service.IAuthService
	tagService  service.ITagService
}

func NewTagHandler(authService service.IAuthService, tagService service.ITagService) *TagHandler {
	return &TagHandler{authService: authService, tagService: tagService}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)

		admin := tags.Group("", middleware.AuthMiddleware(h.authService), middleware.RequireAdmin())
		admin.POST("", h.CreateTag)
		admin.PUT("/:id", h.UpdateTag)
		admin.PATCH("/:id", h.UpdateTag)
		admin.DELETE("/:id", h.DeleteTag)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := h.tagService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req types.TagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tagService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.TagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tagService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tagService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
