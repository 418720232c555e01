package main

import (
	"context"
	"fmt"
	"os"

	"verisure/adapters/store"
	"verisure/internal/config"
	"verisure/internal/logging"
	"verisure/internal/migration"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Usage: migrate [database_url]
// Without an argument DATABASE_URL (or the configured default) is used.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		cfg.Database.URL = os.Args[1]
	}

	logger, err := logging.New(cfg.Logging, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	runner := migration.NewRunner()
	logger.Info("running migrations",
		zap.String("driver", store.Driver(cfg.Database.URL)),
		zap.String("version", runner.Version()))

	if err := runner.Run(ctx, db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migrations complete")
}
