package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/infrastructure/persistence"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	db *persistence.Database
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(db *persistence.Database, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
	}
}

// RegisterRoutes registers unauthenticated health routes
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Live)
	rg.GET("/health/ready", h.Ready)
}

// Live reports that the process is up
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database is reachable
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
