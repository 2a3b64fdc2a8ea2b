package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/infrastructure/config"
)

type fakeDueGenerator struct {
	now    time.Time
	result *appfinance.GenerationResult
	err    error
}

func (g *fakeDueGenerator) GenerateDaily(ctx context.Context, now time.Time) (*appfinance.GenerationResult, error) {
	g.now = now
	return g.result, g.err
}

func newTasksEngine(generator *fakeDueGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewTasksHandler(generator, config.CronConfig{}, zap.NewNop())
	h.RegisterRoutes(engine.Group(""), zap.NewNop())
	return engine
}

func TestTasksHandler_GenerateDues_UsesUTC(t *testing.T) {
	generator := &fakeDueGenerator{result: &appfinance.GenerationResult{}}
	engine := newTasksEngine(generator)

	req := httptest.NewRequest(http.MethodPost, "/tasks/generate-dues", nil)
	req.Header.Set("X-Appengine-Cron", "true")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, generator.now.IsZero())
	// The generation day is a UTC calendar day regardless of host timezone
	assert.Equal(t, time.UTC, generator.now.Location())
}

func TestTasksHandler_GenerateDues_RejectsUntrustedCaller(t *testing.T) {
	generator := &fakeDueGenerator{result: &appfinance.GenerationResult{}}
	engine := newTasksEngine(generator)

	req := httptest.NewRequest(http.MethodPost, "/tasks/generate-dues", nil)
	req.RemoteAddr = "203.0.113.7:44210"
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, generator.now.IsZero())
}
