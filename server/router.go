package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	// ServiceName enables the OTel middleware when set
	ServiceName string
}

// NewRouter builds the engine with its middleware and routes.
func NewRouter(cfg RouterConfig, h *Handler) *gin.Engine {
	router := gin.New()

	// OTel creates the span, Recovery catches panics, then request ids and
	// access logs see the trace context
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(Recovery())
	router.Use(RequestID())
	router.Use(Logger())

	SetupRoutes(router, h)
	return router
}

func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/gloss", h.Gloss)
		v1.POST("/resolve", h.Resolve)
		v1.POST("/timeline", h.Timeline)
		v1.GET("/dictionary/keys", h.Keys)
	}
}
