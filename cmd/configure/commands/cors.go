package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd manages the database-stored CORS policy.
func NewCorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List or update the CORS allowed origins and options stored in the database.",
	}
	cmd.AddCommand(newCorsListCmd())
	cmd.AddCommand(newCorsSetCmd())
	return cmd
}

func newCorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the current CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db *database.DB) error {
				c, err := database.NewCorsConfigRepository(db).Get(ctx)
				if err != nil {
					return fmt.Errorf("get cors config: %w", err)
				}
				if c == nil {
					fmt.Println("No CORS configuration in database. Use 'cors set' to add one.")
					return nil
				}
				fmt.Println("CORS configuration:")
				fmt.Printf("  Allowed origins: %s\n", c.AllowedOrigins)
				fmt.Printf("  Allow credentials: %v\n", c.AllowCredentials)
				fmt.Printf("  Max-Age: %d\n", c.MaxAge)
				return nil
			})
		},
	}
}

func newCorsSetCmd() *cobra.Command {
	var (
		origins    string
		allowCreds bool
		maxAge     int
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			origins = strings.TrimSpace(origins)
			if origins == "" {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			return withDB(func(ctx context.Context, db *database.DB) error {
				err := database.NewCorsConfigRepository(db).Set(ctx, &models.CorsConfig{
					AllowedOrigins:   origins,
					AllowCredentials: allowCreds,
					MaxAge:           maxAge,
				})
				if err != nil {
					return fmt.Errorf("set cors config: %w", err)
				}
				fmt.Println("CORS configuration updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age (seconds)")
	return cmd
}
