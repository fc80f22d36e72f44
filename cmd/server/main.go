package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pollchat-server/internal/app"
	"github.com/vovakirdan/pollchat-server/internal/config"
	"github.com/vovakirdan/pollchat-server/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:           "pollchat-server",
		Short:         "Multi-room chat relay over a minimal HTTP polling protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrapLogger := log.New(overrides.LogLevel)
			cfg, path, err := config.Load(bootstrapLogger, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.UpdateFrom(overrides)

			logger := log.New(cfg.LogLevel)
			logger.Info().
				Str("config", path).
				Str("chat_addr", cfg.ChatAddr).
				Str("admin_addr", cfg.AdminAddr).
				Int("workers", cfg.Workers).
				Msg("starting pollchat server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.New(cfg, logger).Run(ctx); err != nil {
				return fmt.Errorf("server exited: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&overrides.ChatAddr, "addr", "", "chat listen address")
	cmd.Flags().StringVar(&overrides.AdminAddr, "admin-addr", "", "admin listen address")
	cmd.Flags().IntVar(&overrides.Workers, "workers", 0, "worker pool size")
	cmd.Flags().IntVar(&overrides.QueueCapacity, "queue-capacity", 0, "pending connection queue capacity")
	cmd.Flags().DurationVar(&overrides.ConnTimeout, "conn-timeout", 0, "per-connection I/O deadline")
	cmd.Flags().DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	cmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	return cmd
}
