package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/notehq/notehub/internal/config"
	"github.com/notehq/notehub/internal/database"
)

// withDB loads the environment config, opens the database, runs fn, and
// closes the connection. Every subcommand that touches the database goes
// through here.
func withDB(fn func(ctx context.Context, db *database.DB) error) error {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()
	return fn(ctx, db)
}
