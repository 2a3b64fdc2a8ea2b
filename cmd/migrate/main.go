package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/infrastructure/config"
	"github.com/sitefund/backend/internal/infrastructure/logger"
	"github.com/sitefund/backend/internal/infrastructure/persistence"
	"github.com/sitefund/backend/internal/infrastructure/persistence/models"
)

func main() {
	var drop bool
	flag.BoolVar(&drop, "drop", false, "drop all tables before migrating (destructive, refuses in production)")
	flag.Parse()

	if err := run(drop); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(drop bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tables := []interface{}{
		&models.TenantModel{},
		&models.ResidentModel{},
		&models.LedgerEntryModel{},
		&models.DueModel{},
		&models.ExpenseModel{},
		&models.RecurringRuleModel{},
	}

	if drop {
		if cfg.App.Env == "production" {
			return fmt.Errorf("refusing to drop tables in production")
		}
		log.Warn("dropping all tables")
		// Reverse order so foreign keys drop cleanly
		for i := len(tables) - 1; i >= 0; i-- {
			if err := db.DB.Migrator().DropTable(tables[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
	}

	log.Info("running migrations")
	if err := db.DB.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info("migrations complete", zap.Int("tables", len(tables)))
	return nil
}
