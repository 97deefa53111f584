// Package router sets up the HTTP routing for the application.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/categorizer/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                   *gin.Engine
	healthController         *controller.HealthController
	classificationController *controller.ClassificationController
	loaderController         *controller.LoaderController
	ruleController           *controller.RuleController
	categoryController       *controller.CategoryController
	authMiddleware           *middleware.AuthMiddleware
	rateLimiter              *middleware.RateLimiter
	metricsHandler           http.Handler
}

// NewRouter creates a new router instance with all dependencies.
// metricsHandler may be nil, in which case /metrics is not served.
func NewRouter(
	healthController *controller.HealthController,
	classificationController *controller.ClassificationController,
	loaderController *controller.LoaderController,
	ruleController *controller.RuleController,
	categoryController *controller.CategoryController,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		healthController:         healthController,
		classificationController: classificationController,
		loaderController:         loaderController,
		ruleController:           ruleController,
		categoryController:       categoryController,
		authMiddleware:           authMiddleware,
		rateLimiter:              rateLimiter,
		metricsHandler:           metricsHandler,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check and scrape endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
	if r.metricsHandler != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metricsHandler))
	}
}

// throttle returns the rate limiting middleware, or a no-op when limiting is disabled.
func (r *Router) throttle() gin.HandlerFunc {
	if r.rateLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return r.rateLimiter.Middleware()
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	// API v1 group; every route requires authentication
	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())
	{
		// Classification and learning
		v1.POST("/classify", r.throttle(), r.classificationController.Classify)
		v1.POST("/corrections", r.classificationController.RecordCorrection)
		v1.PATCH("/transactions/:id/classification", r.classificationController.CorrectTransaction)

		// Staging intake and loads
		v1.POST("/staging/batches", r.throttle(), r.loaderController.StageBatch)
		v1.POST("/loads", r.throttle(), r.loaderController.Load)
		v1.GET("/loads/status", r.loaderController.Status)

		// Rule management
		rules := v1.Group("/rules")
		{
			rules.GET("", r.ruleController.List)
			rules.POST("", r.ruleController.Create)
			rules.POST("/test", r.ruleController.TestPattern)
			rules.DELETE("/:id", r.ruleController.Deactivate)
		}

		// Category taxonomy; reads are open, writes are operator-only
		categories := v1.Group("/categories")
		{
			categories.GET("", r.categoryController.List)
			categories.POST("", middleware.RequireOps(), r.categoryController.Create)
			categories.PATCH("/:code", middleware.RequireOps(), r.categoryController.Update)
			categories.POST("/:code/subcategories", middleware.RequireOps(), r.categoryController.CreateSubcategory)
		}

		// Operator maintenance
		ops := v1.Group("/ops")
		ops.Use(middleware.RequireOps())
		{
			ops.POST("/reenrich", r.loaderController.Reenrich)
		}
	}
}
