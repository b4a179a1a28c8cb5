package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tradepros/tradepro-agents/internal/config"
	"github.com/tradepros/tradepro-agents/internal/database"
	"github.com/tradepros/tradepro-agents/internal/handlers"
	"github.com/tradepros/tradepro-agents/internal/middleware"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and dependencies",
		Long:  "Load the configuration, verify the static directory and OpenAPI document, and test database and Redis connectivity when configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runChecks(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	return cmd
}

// runChecks reports every check and fails if any required one failed.
func runChecks(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	failed := 0
	report := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(out, "✓ %s\n", name)
	}

	fmt.Fprintf(out, "Listen address: %s\n", cfg.Addr())

	_, err := handlers.NewStaticHandler(cfg.StaticDir, "/static/", false)
	report("static directory "+cfg.StaticDir, err)

	if _, err := handlers.NewOpenAPIHandler(cfg.OpenAPIPath); err != nil {
		fmt.Fprintf(out, "! OpenAPI document: %v (served without docs)\n", err)
	} else {
		fmt.Fprintln(out, "✓ OpenAPI document")
	}

	if cfg.DatabaseURL == "" {
		fmt.Fprintln(out, "- database: not configured, in-memory ledger")
	} else {
		db, err := database.New(cfg.DatabaseURL)
		if err == nil {
			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = db.EnsureSchema(checkCtx)
			cancel()
			_ = db.Close()
		}
		report("database", err)
	}

	if cfg.RedisURL == "" {
		fmt.Fprintln(out, "- redis: not configured, in-memory rate limit store")
	} else {
		client, err := middleware.NewRedisClient(cfg.RedisURL)
		if err == nil {
			_ = client.Close()
		}
		report("redis", err)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
