package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"verisure/app"
	"verisure/internal/config"
	"verisure/internal/container"
	"verisure/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	verbose bool
	profile string
	apiURL  string
	dbURL   string
}

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
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "verisure",
		Short:         "VeriSure issuer tools: templates, previews and credential issuance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.profile, "profile", "", "Session profile (default from VERISURE_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "VeriSure API endpoint (default from VERISURE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.dbURL, "db", "", "Local store (default from DATABASE_URL)")

	rootCmd.AddCommand(
		newTemplateCmd(),
		newPreviewCmd(flags),
		newIssueBatchCmd(flags),
		newIssueCmd(flags),
		newHistoryCmd(flags),
		newLoginCmd(flags),
		newSignupCmd(flags),
		newLogoutCmd(flags),
		newWhoamiCmd(flags),
		newStatusCmd(flags),
	)
	return rootCmd
}

// open loads configuration, applies the global flags and wires the
// container. The returned func releases it.
func open(ctx context.Context, flags *globalFlags) (*container.Container, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if flags.profile != "" {
		cfg.Profile = flags.profile
	}
	if flags.apiURL != "" {
		cfg.API.URL = flags.apiURL
	}
	if flags.dbURL != "" {
		cfg.Database.URL = flags.dbURL
	}

	logger, err := logging.New(cfg.Logging, flags.verbose)
	if err != nil {
		return nil, nil, err
	}

	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Open(ctx, nil); err != nil {
		return nil, nil, err
	}

	return c, func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
		_ = logger.Sync()
	}, nil
}

func printNotice(w io.Writer, n app.Notice) {
	fmt.Fprintln(w, n.Title)
	if n.Message != "" {
		fmt.Fprintln(w, n.Message)
	}
}
