package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/api/handlers"
	"meal-planner/internal/api/handlers/health"
	"meal-planner/internal/api/handlers/plan"
	recipeHandler "meal-planner/internal/api/handlers/recipe"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/budget"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/repository"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

const (
	// 超時設置
	timeoutDuration = 60 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// Services 路由使用的服務
type Services struct {
	Repository  *repository.Repository
	Recommender *budget.Recommender
	Fast        *budget.FastEngine
	Queue       *queue.Manager
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) (*gin.Engine, error) {
	if svc.Repository == nil || svc.Recommender == nil || svc.Fast == nil {
		return nil, errors.New("router requires repository, recommender and fast engine")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.BodySizeLimit(maxBodySize))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.NewDeduplicator(cfg.DedupWindow).Middleware())

	// 設置超時並注入服務
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set(handlers.ContextConfig, cfg)
		c.Set(health.ContextRepository, svc.Repository)
		c.Set(health.ContextQueue, svc.Queue)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ToResponse(common.ErrGatewayTimeout, false))
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	recipes := recipeHandler.NewHandler(svc.Repository, svc.Recommender.Costs())
	plans := plan.NewHandler(svc.Recommender, svc.Fast)
	cache := handlers.NewCacheHandler(svc.Repository, svc.Fast, svc.Queue)

	api := router.Group("/api/v1")
	{
		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("/goal/:goal", recipes.ByGoal)
			recipeGroup.GET("/popular", recipes.Popular)
			recipeGroup.GET("/search", recipes.Search)
			recipeGroup.GET("/statistics", recipes.Statistics)
			recipeGroup.GET("/:id", recipes.ByID)
			recipeGroup.GET("/:id/cost", recipes.Cost)
		}

		api.POST("/ingredients/parse", recipes.ParseIngredients)
		api.POST("/nutrition/targets", plans.Targets)

		recommendGroup := api.Group("/recommendations")
		{
			recommendGroup.POST("", plans.Recommend)
			recommendGroup.POST("/fast", plans.Fast)
			recommendGroup.POST("/personalized", plans.Personalized)
		}

		api.GET("/cache", cache.Status)
		api.DELETE("/cache", cache.Clear)
	}

	router.NoRoute(func(c *gin.Context) {
		handlers.Error(c, common.ErrNotFound)
	})

	common.LogInfo("Router setup completed",
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)
	return router, nil
}
