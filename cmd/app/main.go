package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkimber/ka-lite/internal"
	"github.com/pkimber/ka-lite/internal/pipeline"
	pkgconfig "github.com/pkimber/ka-lite/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	err := pkgconfig.Load(cmd.String("config"), cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file: run on defaults.
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("default config invalid: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runUpdate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithPipelineOptions(pipeline.Options{
			KeepNewExercises: cmd.Bool("keep-new-exercises"),
			ForceIcons:       cmd.Bool("force-icons"),
		}),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{internal.WithConfig(cfg)}

	if cmd.Bool("mcp") {
		return internal.RunMCP(ctx, opts...)
	}
	return internal.RunServe(ctx, opts...)
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("KALITE_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "kalite-sync",
		Usage: "Derive the local KA Lite dataset from the Khan Academy topic tree",
		Commands: []*cli.Command{
			{
				Name:   "update",
				Usage:  "Download the topic tree and rebuild all derived artifacts",
				Action: runUpdate,
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:    "keep-new-exercises",
						Aliases: []string{"k"},
						Usage:   "Keep exercises that have no local content yet",
					},
					&cli.BoolFlag{
						Name:    "force-icons",
						Aliases: []string{"i"},
						Usage:   "Re-download knowledge-map icons even when present",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the generated dataset over HTTP with live reload",
				Action: runServe,
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "mcp",
						Usage: "Serve dataset lookup tools over MCP stdio instead of HTTP",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
