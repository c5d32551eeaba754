package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/kerfich/athlete-context-mcp/internal"
	pkgconfig "github.com/kerfich/athlete-context-mcp/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		// A missing config file is fine: run on defaults.
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid default config: %w", err)
		}
	}

	if cmd.Bool("http") {
		cfg.App.Mode = internal.ModeHTTP
	}
	if dir := cmd.String("data-dir"); dir != "" {
		cfg.Data.Dir = dir
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "athlete-context",
		Usage:  "Personal athlete context service: versioned profile/goals/policies, subjective notes with signal extraction, and a derived readiness state",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "http",
				Usage:   "Serve the REST API instead of MCP on stdio",
				Sources: cli.EnvVars("APP_HTTP"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory for the SQLite database (created if missing)",
				Sources: cli.EnvVars("APP_DATA_DIR"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
