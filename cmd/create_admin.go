package cmd

import (
	"errors"
	"fmt"

	"event-ticketing/internal/services"

	"github.com/spf13/cobra"
)

// newCreateAdminCmd registers the first admin, or any admin when the API is
// not reachable. It runs against the bootstrapped app database.
func newCreateAdminCmd(credentials *services.CredentialService) *cobra.Command {
	var in services.CreateAdminInput

	command := &cobra.Command{
		Use:          "create-admin",
		Short:        "Creates an admin account",
		SilenceUsage: true,
		RunE: func(command *cobra.Command, args []string) error {
			if in.Email == "" || in.Password == "" {
				return errors.New("--email and --password are required")
			}

			admin, err := credentials.Create(command.Context(), in)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			fmt.Fprintf(command.OutOrStdout(), "Admin %s created (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}

	command.Flags().StringVar(&in.Email, "email", "", "admin email")
	command.Flags().StringVar(&in.Password, "password", "", "admin password")
	command.Flags().StringVar(&in.FullName, "name", "", "admin full name")
	command.Flags().StringVar(&in.BrandName, "brand", "", "brand or organizer name")
	command.Flags().StringVar(&in.Phone, "phone", "", "phone number")

	return command
}
