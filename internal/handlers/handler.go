package handlers

import (
	"solar_monitor/internal/logger"
	"solar_monitor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging. The web layer only
// reads cached state and stored history; it never drives the poller.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Dashboard page and health endpoint
	router.GET("/", h.index)
	router.GET("/health", h.health)

	// Read-only JSON API
	api := router.Group("/api/v1")
	{
		api.GET("/status", h.getStatus)
		api.GET("/history", h.getHistory)
		api.GET("/alerts", h.getAlerts)
	}

	// Live status stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}
