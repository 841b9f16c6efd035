package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go-message-board/internal/config"
	"go-message-board/internal/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "board",
		Short:         "Message board authentication backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newUsersCmd())
	return root
}

// loadConfig reads the full serving configuration and installs the process
// logger it describes as the slog default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	return withLogger(config.Load())
}

// loadStoreConfig is loadConfig for operator commands that never sign
// tokens, so the JWT settings may be absent.
func loadStoreConfig() (*config.Config, *slog.Logger, error) {
	return withLogger(config.LoadStore())
}

func withLogger(cfg *config.Config, err error) (*config.Config, *slog.Logger, error) {
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	return cfg, log, nil
}
