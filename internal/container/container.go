package container

import (
	"context"
	"fmt"

	"verisure/adapters/store"
	"verisure/adapters/verisure"
	"verisure/app"
	"verisure/internal/config"
	"verisure/internal/confirm"
	"verisure/internal/migration"
	"verisure/ports"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB  *sqlx.DB
	API ports.VeriSureAPI

	// Repositories (data access layer)
	SessionRepo ports.SessionRepository
	HistoryRepo ports.HistoryRepository

	// Services
	Gate     *confirm.Gate
	Auth     *app.AuthService
	Issuance *app.IssuanceService
	Approval *app.ApprovalWatcher
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Container{
		Config: cfg,
		Logger: logger,
	}, nil
}

// Open connects to the configured database, migrates it and wires every
// component. api may be nil, in which case the HTTP client for the
// configured endpoint is used.
func (c *Container) Open(ctx context.Context, api ports.VeriSureAPI) error {
	db, err := store.Open(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	if err := c.InitWithDatabase(ctx, db, api); err != nil {
		_ = db.Close()
		return err
	}
	return nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB, api ports.VeriSureAPI) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.initRepositories()

	c.API = api
	if c.API == nil {
		c.API = verisure.NewClient(c.Config.API, c.Logger)
	}

	c.initServices()

	c.Logger.Info("container initialized",
		zap.String("driver", db.DriverName()),
		zap.String("migration", runner.Version()),
		zap.String("profile", c.Config.Profile))
	return nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories() {
	c.SessionRepo = store.NewSessionRepository(c.DB, c.Logger)
	c.HistoryRepo = store.NewHistoryRepository(c.DB)
}

// initServices wires the issuer flows to the repositories and the API
func (c *Container) initServices() {
	profile := c.Config.Profile
	c.Gate = confirm.NewGate(c.Logger)
	c.Auth = app.NewAuthService(c.API, c.SessionRepo, profile, c.Logger)
	c.Issuance = app.NewIssuanceService(c.SessionRepo, c.API, c.HistoryRepo, c.Gate, c.Config.Issuance, profile, c.Logger)
	c.Approval = app.NewApprovalWatcher(c.API, c.SessionRepo, profile, c.Config.Approval.PollInterval, c.Logger)
}

// Close releases the database connection
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
