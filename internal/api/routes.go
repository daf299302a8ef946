package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jroosing/stubns/internal/api/handlers"
	"github.com/jroosing/stubns/internal/api/middleware"
	"github.com/jroosing/stubns/internal/config"
)

// RegisterRoutes mounts the admin API under /api/v1. Health stays
// unauthenticated; everything else goes through the API key check.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg *config.Config) {
	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Health)

	authed := v1.Group("")
	authed.Use(middleware.RequireAPIKey(cfg.API.APIKey))
	authed.GET("/stats", h.Stats)
	authed.GET("/entries", h.ListEntries)
	authed.GET("/queries", h.ListQueries)
}
