package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	authmodels "romportal/internal/auth/models"
	"romportal/internal/auth/secrets"
)

func createAdminCommand() *cobra.Command {
	var email, password, role string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			parsedRole, err := authmodels.ParseRole(role)
			if err != nil {
				return err
			}
			generated := password == ""
			if generated {
				if password, err = secrets.Generate(); err != nil {
					return err
				}
			}

			a, err := newApp(cmd.Context(), cfg, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.migrate(cmd.Context()); err != nil {
				return err
			}

			user, err := a.auth.CreateAdmin(cmd.Context(), authmodels.CreateAdmin{
				Email:    email,
				Password: password,
				Role:     parsedRole,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.ID)
			if generated {
				fmt.Fprintf(cmd.OutOrStdout(), "generated password: %s\n", password)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&password, "password", "", "admin password; generated when empty")
	cmd.Flags().StringVar(&role, "role", "admin", "admin or encoder")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
