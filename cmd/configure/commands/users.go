package commands

import (
	"context"
	"fmt"

	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/spf13/cobra"
)

// NewUsersCmd manages known users.
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
		Long:  "List known users or change a user's role.",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersSetRoleCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db *database.DB) error {
				users, err := database.NewUserRepository(db).List(ctx)
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				if len(users) == 0 {
					fmt.Println("No users found")
					return nil
				}
				fmt.Println("Known users:")
				for _, u := range users {
					fmt.Printf("  - %s <%s> (%s)\n", u.Name, u.Email, u.Role)
				}
				return nil
			})
		},
	}
}

func newUsersSetRoleCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "set-role <email>",
		Short: "Change a user's role",
		Long:  "Change a user's role. Valid roles: member, admin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			parsed := models.Role(role)
			if parsed != models.RoleMember && parsed != models.RoleAdministrator {
				return fmt.Errorf("invalid role %q (valid: member, admin)", role)
			}
			return withDB(func(ctx context.Context, db *database.DB) error {
				user, err := database.NewUserRepository(db).SetRole(ctx, email, parsed)
				if err != nil {
					return fmt.Errorf("set role: %w", err)
				}
				fmt.Printf("Updated %s to role %s\n", user.Email, user.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "New role (member or admin) (required)")
	return cmd
}
