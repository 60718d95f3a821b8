package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles everything the HTTP layer needs. RecipeCreateLimiter is
// optional.
type Services struct {
	DB                  *gorm.DB
	Auth                service.IAuthService
	Users               service.IUserService
	Tags                service.ITagService
	Ingredients         service.IIngredientService
	Recipes             service.IRecipeService
	Favorites           service.IFavoriteService
	Cart                service.ICartService
	Subscriptions       service.ISubscriptionService
	RecipeCreateLimiter *middleware.RateLimiter
	PageSize            int
}

// HealthCheck reports whether the API and its database are reachable
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := database.HealthCheck(db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, s Services) {
	router.GET("/health", HealthCheck(s.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v := router.Group("/api")
	NewAuthHandler(s.Auth).RegisterRoutes(v)
	NewUserHandler(s.Auth, s.Users, s.Subscriptions, s.PageSize).RegisterRoutes(v)
	NewTagHandler(s.Auth, s.Tags).RegisterRoutes(v)
	NewIngredientHandler(s.Auth, s.Ingredients).RegisterRoutes(v)
	NewRecipeHandler(s.Auth, s.Recipes, s.Favorites, s.Cart, s.RecipeCreateLimiter, s.PageSize).RegisterRoutes(v)

	router.NoRoute(middleware.NotFound())
}
