package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/models"
	"github.com/spf13/cobra"
)

// NewRatelimitCmd manages the database-stored rate limit.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update the request rate limit stored in the database.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the current rate limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db *database.DB) error {
				c, err := database.NewRatelimitConfigRepository(db).Get(ctx)
				if err != nil {
					return fmt.Errorf("get ratelimit config: %w", err)
				}
				if c == nil {
					fmt.Println("No rate limit configuration in database. Use 'ratelimit set' to add one.")
					return nil
				}
				fmt.Printf("Rate limit: %s\n", c.Rate)
				return nil
			})
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the rate limit",
		Long:  "Update the rate limit, in count-period notation such as 5-S, 100-M, or 1000-H.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}
			return withDB(func(ctx context.Context, db *database.DB) error {
				err := database.NewRatelimitConfigRepository(db).Set(ctx, &models.RatelimitConfig{Rate: rate})
				if err != nil {
					return fmt.Errorf("set ratelimit config: %w", err)
				}
				fmt.Println("Rate limit configuration updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate in count-period notation (required)")
	return cmd
}
