package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/infrastructure/auth"
	"github.com/sitefund/backend/internal/infrastructure/config"
	"github.com/sitefund/backend/internal/interfaces/http/handler"
	"github.com/sitefund/backend/internal/interfaces/http/middleware"
)

// Config holds everything the router needs to assemble the HTTP surface
type Config struct {
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
	CronConfig config.CronConfig
	Logger     *zap.Logger

	Health        *handler.HealthHandler
	Ledger        *handler.LedgerHandler
	Dues          *handler.DuesHandler
	Expenses      *handler.ExpenseHandler
	RecurringRule *handler.RecurringRuleHandler
	Tasks         *handler.TasksHandler
}

// New assembles the gin engine. Three route classes exist: unauthenticated
// health probes, scheduler-guarded task endpoints, and the JWT-protected
// API under /api/v1.
func New(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
		middleware.Secure(),
		middleware.CORS(),
	)

	root := engine.Group("")
	cfg.Health.RegisterRoutes(root)

	// Task routes carry no JWT; the platform scheduler does not
	// authenticate. The cron middleware is the whole guard.
	tasks := engine.Group("", middleware.BodyLimit(middleware.DefaultMaxBodySize))
	cfg.Tasks.RegisterRoutes(tasks, logger)

	api := engine.Group("/api/v1",
		middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService: cfg.JWTService,
			Blacklist:  cfg.Blacklist,
			Logger:     logger,
		}),
	)

	// Receipt and invoice uploads need the larger body cap; everything
	// else stays at the JSON limit.
	uploads := api.Group("", middleware.BodyLimit(middleware.DefaultMaxUploadSize))
	cfg.Dues.RegisterRoutes(uploads)
	cfg.Expenses.RegisterRoutes(uploads)

	// Ledger reads are the residents' transparency view; the handler gates
	// its write route itself.
	jsonAPI := api.Group("", middleware.BodyLimit(middleware.DefaultMaxBodySize))
	cfg.Ledger.RegisterRoutes(jsonAPI)
	cfg.RecurringRule.RegisterRoutes(jsonAPI.Group("", middleware.RequireAdmin()))

	return engine
}
