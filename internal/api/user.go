package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	authService         service.IAuthService
	userService         service.IUserService
	subscriptionService service.ISubscriptionService
	pageSize            int
}

func NewUserHandler(authService service.IAuthService, userService service.IUserService, subscriptionService service.ISubscriptionService, pageSize int) *UserHandler {
	return &UserHandler{
		authService:         authService,
		userService:         userService,
		subscriptionService: subscriptionService,
		pageSize:            pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/me", auth, h.Me)
		users.POST("/set_password", auth, h.SetPassword)
		users.GET("/subscriptions", auth, h.Subscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.PUT("/:id", auth, h.UpdateUser)
		users.PATCH("/:id", auth, h.UpdateUser)
		users.DELETE("/:id", auth, h.DeleteUser)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := pageRequest(c, h.pageSize)
	views, total, err := h.userService.List(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, userViews(views)))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(*user, false))
}

func (h *UserHandler) Me(c *gin.Context) {
	view, err := h.userService.Get(c.Request.Context(), 0, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(view.User, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.userService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(view.User, view.IsSubscribed))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.userService.Update(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(view.User, false))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.SetPassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	page := pageRequest(c, h.pageSize)
	views, total, err := h.subscriptionService.List(c.Request.Context(), middleware.UserID(c), page, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, total, authorViews(views)))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.subscriptionService.Subscribe(c.Request.Context(), middleware.UserID(c), id, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authorResponse(view))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads recipes_limit; -1 means every recipe.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
