package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"RepoScout/internal/app"
	"RepoScout/internal/config"
	"RepoScout/internal/domain"
	"RepoScout/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		mode     string
		industry string
	)

	cmd := &cobra.Command{
		Use:           "reposcout <query>",
		Short:         "Discover and rank GitHub repositories for a research query",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is the normal case in production.
			_ = godotenv.Load()

			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("init application: %w", err)
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			query := strings.Join(args, " ")
			projectType := domain.ParseProjectType(mode)
			if _, err := application.Run(ctx, query, projectType, industry); err != nil {
				return fmt.Errorf("run query: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "project filter: all, personal or industry")
	cmd.Flags().StringVarP(&industry, "industry", "i", "", "industry context for tag expansion")
	return cmd
}
