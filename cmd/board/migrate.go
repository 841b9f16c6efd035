package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"go-message-board/internal/config"
	"go-message-board/internal/database"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all up migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				dsn, err := postgresURL()
				if err != nil {
					return err
				}
				return database.MigrateUp(dsn)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				dsn, err := postgresURL()
				if err != nil {
					return err
				}
				return database.MigrateDown(dsn)
			},
		},
	)

	return migrateCmd
}

func postgresURL() (string, error) {
	cfg, _, err := loadStoreConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return "", errors.New("migrations require STORE_DRIVER=postgres")
	}
	return cfg.DatabaseURL, nil
}
