package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Dependencies holds the services and limiters the handlers are built from.
type Dependencies struct {
	DB            *gorm.DB
	Tokens        middleware.TokenValidator
	Recipes       service.IRecipeService
	Favorites     service.IRecipeListService
	ShoppingCart  service.IRecipeListService
	ShoppingList  service.IShoppingListService
	Subscriptions service.ISubscriptionService
	Users         service.IUserService
	Catalog       service.ICatalogService
	Images        service.IImageResolver
	CreateLimiter *middleware.RateLimiter
	ModifyLimiter *middleware.RateLimiter
	PageSize      int
}

// NewDependencies builds the production services on top of db. A nil
// redisClient disables rate limiting and a nil images resolver serves
// stored image values as they are.
func NewDependencies(db *gorm.DB, cfg *config.Config, redisClient *redis.Client, images service.IImageResolver) (*Dependencies, error) {
	reportDB, err := database.NewReportDB(db)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		DB:            db,
		Tokens:        service.NewTokenService(cfg.JWTSecret),
		Recipes:       service.NewRecipeService(db),
		Favorites:     service.NewFavoriteService(db),
		ShoppingCart:  service.NewShoppingCartService(db),
		ShoppingList:  service.NewShoppingListService(reportDB),
		Subscriptions: service.NewSubscriptionService(db),
		Users:         service.NewUserService(db),
		Catalog:       service.NewCatalogService(db),
		Images:        images,
		PageSize:      cfg.PageSize,
	}
	if redisClient != nil {
		deps.CreateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, cfg.RateLimitWindow)
		deps.ModifyLimiter = middleware.NewRecipeModificationRateLimiter(redisClient, cfg.RecipeModifyLimit, cfg.RateLimitWindow)
	}
	return deps, nil
}

// HealthCheck returns the health status of the API
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "ok",
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps *Dependencies) {
	router.GET("/health", HealthCheck(deps.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	group := router.Group("/api")
	NewRecipeHandler(deps).RegisterRoutes(group)
	NewUserHandler(deps).RegisterRoutes(group)
	NewCatalogHandler(deps).RegisterRoutes(group)
}
