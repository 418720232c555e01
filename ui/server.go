package ui

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"verisure/app"
	"verisure/internal/config"
	"verisure/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server is the issuer console: a JSON API over the issuance services that
// holds the upload session, the confirmation dialog and the button states
// on behalf of the browser
type Server struct {
	router   *gin.Engine
	cfg      config.ServerConfig
	auth     *app.AuthService
	issuance *app.IssuanceService
	approval *app.ApprovalWatcher
	logger   *zap.Logger
}

// NewServer creates a new console server instance
func NewServer(cfg config.ServerConfig, auth *app.AuthService, issuance *app.IssuanceService, approval *app.ApprovalWatcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	metrics.Register()

	s := &Server{
		router:   gin.New(),
		cfg:      cfg,
		auth:     auth,
		issuance: issuance,
		approval: approval,
		logger:   logger.Named("console"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("issuer console listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("issuer console stopped")
	return nil
}
