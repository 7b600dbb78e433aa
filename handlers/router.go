// Package handlers exposes the salary service over HTTP with gin.
package handlers

import (
	"context"

	"github.com/SaranyaKannan28/summer-internship/metrics"
	"github.com/SaranyaKannan28/summer-internship/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router wires into its handlers.
type Deps struct {
	Auth     *services.AuthService
	Salaries *services.SalaryService
	FeedHub  *services.FeedHub // nil without a broker
	Metrics  *metrics.Metrics  // nil disables /metrics
	Ping     func(context.Context) error
	Log      zerolog.Logger

	StaticDir     string
	AuthRateLimit float64
	AuthRateBurst int
}

// NewRouter builds the gin engine with every route of the service.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		Recovery(d.Log),
		RequestLogger(d.Log),
		corsMiddleware(),
		corsFallback(),
		d.Metrics.Middleware(),
	)

	authHandler := NewAuthHandler(d.Auth, d.Log)
	salaryHandler := NewSalaryHandler(d.Salaries, d.Log)
	feedHandler := NewFeedHandler(d.FeedHub, d.Log)
	requireAuth := AuthMiddleware(d.Auth, d.Log, false)

	// Health check
	router.GET("/health", Health(d.Ping))

	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// WebSocket route for the live salary feed (outside /api group)
	router.GET("/ws/salaries", feedHandler.RequireHub, AuthMiddleware(d.Auth, d.Log, true), feedHandler.HandleFeedWebSocket)

	api := router.Group("/api")
	{
		api.GET("/feeds/stats", requireAuth, feedHandler.GetFeedStats)

		limited := RateLimit(d.AuthRateLimit, d.AuthRateBurst)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", limited, authHandler.Signup)
			authRoutes.POST("/login", limited, authHandler.Login)
			authRoutes.GET("/profile", requireAuth, authHandler.Profile)
		}

		salaries := api.Group("/salaries", requireAuth)
		{
			salaries.POST("", salaryHandler.CreateSalary)
			salaries.GET("", salaryHandler.GetSalaries)
			salaries.GET("/stats", salaryHandler.GetSalaryStats)
			salaries.GET("/:id", salaryHandler.GetSalary)
			salaries.PUT("/:id", salaryHandler.UpdateSalary)
			salaries.DELETE("/:id", salaryHandler.DeleteSalary)
		}
	}

	router.NoRoute(noRoute(d.StaticDir))
	return router
}
