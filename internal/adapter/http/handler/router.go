package handler

import (
	"paycrypt-gateway/internal/adapter/http/middleware"
	"paycrypt-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ConfirmSvc     ports.ConfirmationService
	EventRepo      ports.WebhookEventRepository
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes
	v1 := r.Group("/api/v1")

	confirmationHandler := NewConfirmationHandler(deps.ConfirmSvc)
	confirmations := v1.Group("/confirmations")
	{
		confirmations.POST("/crypto", confirmationHandler.ConfirmCrypto)
	}

	eventHandler := NewEventHandler(deps.EventRepo)
	{
		v1.GET("/events/:id", eventHandler.GetEvent)
		v1.GET("/payments/:id/events", eventHandler.ListPaymentEvents)
	}

	return r
}
