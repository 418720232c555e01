package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"verisure/internal/config"
	"verisure/internal/container"
	"verisure/internal/errors"
	"verisure/internal/logging"
	"verisure/ui"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	logger, err := logging.New(appConfig.Logging, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Debug("no .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		return err
	}
	if err := appContainer.Open(ctx, nil); err != nil {
		return errors.Wrap(err, "failed to initialize container")
	}
	defer appContainer.Close()

	server := ui.NewServer(appConfig.Server, appContainer.Auth, appContainer.Issuance, appContainer.Approval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	g.Go(func() error {
		return appContainer.Approval.Supervise(gctx)
	})

	logger.Info("verisure console started",
		zap.String("port", appConfig.Server.Port),
		zap.String("api", appConfig.API.URL),
		zap.String("profile", appConfig.Profile))

	return g.Wait()
}
