package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"verisure/adapters/devapi"
	"verisure/internal/config"
	"verisure/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port        string
		autoApprove bool
		verbose     bool
		seeds       []string
	)

	cmd := &cobra.Command{
		Use:   "verisure-devapi",
		Short: "Run an in-memory VeriSure API for local development",
		Long: `Run an in-memory VeriSure API for local development.

Seeded accounts use the form role:email:password[:name[:status]], e.g.
  verisure-devapi --seed issuer:admin@lbs.edu:pw:LBS:approved`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(config.LoggingConfig{Level: "info", Development: true}, verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			api := devapi.New(logger)
			api.AutoApprove = autoApprove
			for _, s := range seeds {
				parts := strings.Split(s, ":")
				if len(parts) < 3 {
					return fmt.Errorf("invalid --seed %q: want role:email:password[:name[:status]]", s)
				}
				parts = append(parts, "", "")
				id := api.SeedAccount(parts[0], parts[1], parts[2], parts[3], parts[4])
				logger.Info("seeded account",
					zap.String("role", parts[0]),
					zap.String("email", parts[1]),
					zap.String("entity_id", id))
			}

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("dev API listening", zap.String("addr", srv.Addr+devapi.Path))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "8787", "Port to listen on")
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Approve new issuer accounts at signup")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().StringArrayVar(&seeds, "seed", nil, "Seed an account (repeatable)")
	return cmd
}
