package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appfinance "github.com/sitefund/backend/internal/application/finance"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/infrastructure/auth"
	"github.com/sitefund/backend/internal/infrastructure/cache"
	"github.com/sitefund/backend/internal/infrastructure/config"
	"github.com/sitefund/backend/internal/infrastructure/event"
	"github.com/sitefund/backend/internal/infrastructure/extraction"
	"github.com/sitefund/backend/internal/infrastructure/logger"
	"github.com/sitefund/backend/internal/infrastructure/notification"
	"github.com/sitefund/backend/internal/infrastructure/persistence"
	"github.com/sitefund/backend/internal/infrastructure/scheduler"
	"github.com/sitefund/backend/internal/infrastructure/storage"
	"github.com/sitefund/backend/internal/interfaces/http/handler"
	"github.com/sitefund/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env))

	db, err := persistence.NewDatabaseWithZapLogger(&cfg.Database, log, gormlogger.Warn)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Repositories
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	dueRepo := persistence.NewGormDueRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	ruleRepo := persistence.NewGormRecurringRuleRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	residentRepo := persistence.NewGormResidentRepository(db.DB)

	// Event bus
	bus := event.NewInMemoryEventBus(log)

	// Idempotency store: Redis when configured, otherwise in-process.
	// The in-process store loses run markers on restart, which the
	// per-due dedup makes safe.
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		idempotencyStore = redisStore
		log.Info("using redis idempotency store")
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Warn("redis not configured, using in-memory idempotency store")
	}
	defer func() { _ = idempotencyStore.Close() }()

	// Object storage for receipts and invoices
	var objectStorage appfinance.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		objectStorage = s3Storage
	} else {
		objectStorage = storage.NewInMemoryObjectStorage()
		log.Warn("object storage not configured, documents are held in memory")
	}

	// Receipt extraction. Without an extraction backend every receipt
	// lands in the manual review queue.
	var extractor appfinance.ReceiptExtractionService
	if cfg.Extraction.BaseURL != "" {
		httpExtractor, err := extraction.NewHTTPExtractor(&cfg.Extraction, log)
		if err != nil {
			return fmt.Errorf("init extraction client: %w", err)
		}
		extractor = httpExtractor
	} else {
		extractor = extraction.NewStubExtractor()
		log.Warn("extraction not configured, receipts go to manual review")
	}

	// Application services
	ledgerService := appfinance.NewLedgerService(ledgerRepo, bus, log)
	duesService := appfinance.NewDuesService(appfinance.DuesServiceConfig{
		DueRepo:        dueRepo,
		ResidentRepo:   residentRepo,
		Storage:        objectStorage,
		EventPublisher: bus,
		Logger:         log,
	})
	expenseService := appfinance.NewExpenseService(expenseRepo, objectStorage, bus, log)
	recurringService := appfinance.NewRecurringService(appfinance.RecurringServiceConfig{
		RuleRepo:         ruleRepo,
		DueRepo:          dueRepo,
		ResidentRepo:     residentRepo,
		IdempotencyStore: idempotencyStore,
		EventPublisher:   bus,
		Logger:           log,
	})
	reconciliationService := appfinance.NewReconciliationService(appfinance.ReconciliationServiceConfig{
		DueRepo:        dueRepo,
		TenantRepo:     tenantRepo,
		Storage:        objectStorage,
		Extraction:     extractor,
		EventPublisher: bus,
		Logger:         log,
		ExtractTimeout: cfg.Extraction.Timeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	// Push notifications
	var dispatcher *notification.Dispatcher
	if cfg.Notification.Enabled {
		tokens := notification.NewTokenCache(func(ctx context.Context) (string, error) {
			return cfg.Notification.ServiceToken, nil
		}, cfg.Notification.TokenTTL)
		sender := notification.NewHTTPPushSender(&cfg.Notification, tokens, log)
		dispatcher = notification.NewDispatcher(residentRepo, sender, cfg.Notification.Workers, log)
		dispatcher.Start(ctx)
		defer dispatcher.Stop()

		// Deduplicated so a re-published event cannot push twice
		bus.Subscribe(event.NewIdempotentHandler(dispatcher, idempotencyStore, log))
		log.Info("push notifications enabled")
	}

	// Local deployments without a managed scheduler run the generation
	// pass from an in-process trigger. In production the platform cron
	// calls the tasks endpoint instead.
	if cfg.Cron.AllowLocal {
		trigger := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{}, generationRunner{recurringService}, log)
		if err := trigger.Start(ctx); err != nil {
			return fmt.Errorf("start cron trigger: %w", err)
		}
		defer func() { _ = trigger.Stop(context.Background()) }()
	}

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis blacklist: %w", err)
		}
		blacklist = redisBlacklist
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	engine := router.New(router.Config{
		JWTService:    jwtService,
		Blacklist:     blacklist,
		CronConfig:    cfg.Cron,
		Logger:        log,
		Health:        handler.NewHealthHandler(db, log),
		Ledger:        handler.NewLedgerHandler(ledgerService, log),
		Dues:          handler.NewDuesHandler(duesService, reconciliationService, log),
		Expenses:      handler.NewExpenseHandler(expenseService, log),
		RecurringRule: handler.NewRecurringRuleHandler(recurringService, log),
		Tasks:         handler.NewTasksHandler(recurringService, cfg.Cron, log),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("stopped")
	return nil
}

// generationRunner adapts RecurringService to the scheduler's interface
type generationRunner struct {
	service *appfinance.RecurringService
}

func (r generationRunner) GenerateDaily(ctx context.Context, now time.Time) error {
	_, err := r.service.GenerateDaily(ctx, now)
	return err
}
