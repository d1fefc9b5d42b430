package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ewait/docs"
	"ewait/internal/analytics"
	"ewait/internal/auth"
	"ewait/internal/locations"
	"ewait/internal/notifications"
	"ewait/internal/payments"
	"ewait/internal/queues"
	"ewait/internal/shared/config"
	"ewait/internal/shared/database"
	"ewait/internal/shared/middleware"
	"ewait/internal/users"
	"ewait/pkg/cache"
	"ewait/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	db           *database.DB
	dispatcher   notifications.Dispatcher
	analytics    analytics.Service
	cacheService cache.Service
}

// NewRouter creates a new router instance. dispatcher and analyticsService are shared with
// the background workers started by main.
func NewRouter(cfg *config.Config, db *database.DB, dispatcher notifications.Dispatcher, analyticsService analytics.Service) *Router {
	r := &Router{
		config:     cfg,
		db:         db,
		dispatcher: dispatcher,
		analytics:  analyticsService,
	}
	if client := db.GetRedisClient(); client != nil {
		r.cacheService = cache.NewService(client)
		analyticsService.SetCacheService(r.cacheService)
	}
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)
	if !r.config.IsProduction() {
		r.setupSwagger(engine)
	}

	requireAuth := middleware.JWTAuth(r.config.JWT.Secret)
	staff := []gin.HandlerFunc{requireAuth, middleware.RequireStaff()}

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api, requireAuth)
		queueRepo := r.setupQueueRoutes(api, staff)
		r.setupLocationRoutes(api, queueRepo, staff)
		r.setupPaymentRoutes(api, requireAuth)
		analytics.SetupAnalyticsRoutes(api, analytics.NewController(r.analytics), requireAuth)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ewait-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ewait-backend",
			"redis":     r.cacheService != nil,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

func (r *Router) setupSwagger(engine *gin.Engine) {
	docs.SwaggerInfo.BasePath = r.config.GetAPIBasePath()
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logger.GetDefault().Info("Swagger UI available", "path", "/swagger/index.html")
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	authService := auth.NewService(auth.NewRepository(r.db.GetPostgreSQL()), r.config.JWT, r.analytics)
	if r.cacheService != nil {
		authService.SetCacheService(r.cacheService)
	}
	auth.SetupAuthRoutes(rg, auth.NewController(authService), requireAuth)
}

func (r *Router) setupQueueRoutes(rg *gin.RouterGroup, staff []gin.HandlerFunc) queues.Repository {
	queueRepo := queues.NewRepository(r.db.GetPostgreSQL())
	queueService := queues.NewService(queueRepo, r.dispatcher, r.analytics, queues.Options{
		NotifyOnJoin: r.config.Notifications.NotifyOnJoin,
		Logger:       logger.GetDefault(),
	})
	if r.cacheService != nil {
		queueService.SetCacheService(r.cacheService)
	}
	queues.SetupQueueRoutes(rg, queues.NewController(queueService), staff...)
	return queueRepo
}

func (r *Router) setupLocationRoutes(rg *gin.RouterGroup, queueRepo queues.Repository, staff []gin.HandlerFunc) {
	locationService := locations.NewService(locations.NewRepository(r.db.GetPostgreSQL()), queueRepo, r.analytics)
	if r.cacheService != nil {
		locationService.SetCacheService(r.cacheService)
	}
	locations.SetupLocationRoutes(rg, locations.NewController(locationService), staff...)
}

func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	pg := r.db.GetPostgreSQL()
	paymentService := payments.NewService(
		payments.NewRepository(pg),
		users.NewRepository(pg),
		payments.NewPaystackClient(r.config.Paystack),
		r.analytics,
		r.config,
	)
	if r.cacheService != nil {
		paymentService.SetCacheService(r.cacheService)
	}
	payments.SetupPaymentRoutes(rg, payments.NewController(paymentService), requireAuth)
}
