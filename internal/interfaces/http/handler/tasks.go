package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/infrastructure/config"
	"github.com/sitefund/backend/internal/interfaces/http/middleware"
)

// DueGenerator runs the daily recurring due generation pass
type DueGenerator interface {
	GenerateDaily(ctx context.Context, now time.Time) (*appfinance.GenerationResult, error)
}

// TasksHandler serves scheduler-invoked task endpoints. These routes sit
// outside the JWT-protected API group; the cron middleware is their only
// guard.
type TasksHandler struct {
	BaseHandler
	generator  DueGenerator
	cronConfig config.CronConfig
}

// NewTasksHandler creates a TasksHandler
func NewTasksHandler(generator DueGenerator, cronConfig config.CronConfig, logger *zap.Logger) *TasksHandler {
	return &TasksHandler{
		BaseHandler: NewBaseHandler(logger),
		generator:   generator,
		cronConfig:  cronConfig,
	}
}

// RegisterRoutes registers task routes behind the trusted-cron guard
func (h *TasksHandler) RegisterRoutes(rg *gin.RouterGroup, logger *zap.Logger) {
	tasks := rg.Group("/tasks", middleware.TrustedCron(h.cronConfig, logger))
	{
		tasks.POST("/generate-dues", h.GenerateDues)
	}
}

// GenerateDues runs the daily recurring due generation pass. The run is
// idempotent per calendar day, so the scheduler retrying after a timeout
// is safe. The calendar day is UTC regardless of the host timezone.
func (h *TasksHandler) GenerateDues(c *gin.Context) {
	result, err := h.generator.GenerateDaily(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
