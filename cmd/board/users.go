package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"go-message-board/internal/app"
	"go-message-board/internal/auth"
	"go-message-board/internal/config"
	"go-message-board/internal/model"
	"go-message-board/internal/service"
)

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage board users",
	}

	usersCmd.AddCommand(newGrantRoleCmd())
	return usersCmd
}

func newGrantRoleCmd() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "grant-role",
		Short: "Grant a role to an existing user",
		Long: `Grant a role to an existing user. Tokens issued before the grant keep
their old roles until the next refresh. Only the store settings
(STORE_DRIVER, DATABASE_URL) are read; JWT settings are not needed. Usage:

	board users grant-role --email admin@example.com --role ADMIN
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, ok := model.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q: want %s or %s", role, model.RoleUser, model.RoleAdmin)
			}

			cfg, _, err := loadStoreConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.StoreDriver == config.StoreDriverMemory {
				return errors.New("grant-role needs a persistent store; set STORE_DRIVER=postgres")
			}

			store, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
			if err != nil {
				return err
			}

			user, err := service.NewUserService(store.Users, hasher, nil).GrantRole(cmd.Context(), email, parsed)
			if err != nil {
				return fmt.Errorf("grant %s to %s: %w", parsed, email, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s now has roles %v\n", user.Email, user.Roles)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user")
	cmd.Flags().StringVar(&role, "role", "", "role to grant (USER or ADMIN)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
