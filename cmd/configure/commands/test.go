package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/notehq/notehub/internal/config"
	"github.com/notehq/notehub/internal/database"
	"github.com/notehq/notehub/internal/middleware"
	"github.com/notehq/notehub/internal/queue"
	"github.com/spf13/cobra"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test backing service connectivity",
		Long:  "Verify that the database, Redis, and RabbitMQ configured in the environment are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			fmt.Println("Testing database connection...")
			db, err := database.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()
			fmt.Println("✓ Database is reachable")

			fmt.Println("\nTesting Redis connection...")
			redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("redis connection failed: %w", err)
			}
			defer func() {
				if err := redisLimiter.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close redis: %v\n", err)
				}
			}()
			fmt.Println("✓ Redis is reachable")

			fmt.Println("\nTesting RabbitMQ connection...")
			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("rabbitmq connection failed: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close rabbitmq: %v\n", err)
				}
			}()
			if err := jobQueue.HealthCheck(ctx); err != nil {
				return fmt.Errorf("rabbitmq health check failed: %w", err)
			}
			fmt.Println("✓ RabbitMQ is reachable")

			fmt.Println("\n✓ All backing services are reachable")
			return nil
		},
	}

	return cmd
}
