// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkimber/ka-lite/internal/khan"
	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/pipeline"
	"github.com/pkimber/ka-lite/internal/storage"
)

// Run executes the update pipeline with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("khan_base_url", cfg.Khan.BaseURL),
		slog.String("data_path", cfg.Data.Path),
		slog.String("exercises_path", cfg.Exercises.Path),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the data directory exists.
	if err := os.MkdirAll(cfg.Data.Path, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	exercises, err := storage.NewExerciseDir(cfg.Exercises.Path)
	if err != nil {
		return fmt.Errorf("init exercise checker: %w", err)
	}

	cache, err := khan.OpenCache(cfg.Cache.Path, cfg.Cache.TTL)
	if err != nil {
		return fmt.Errorf("init response cache: %w", err)
	}
	defer cache.Close()

	client := khan.NewClient(cfg.Khan.BaseURL, cfg.Khan.Timeout, cache, logger)

	p := pipeline.New(client, exercises, client, store, logger, app.pipeline)
	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		return err
	}

	fmt.Fprintf(os.Stdout, "Downloaded topictree data for %d topics, %d videos, %d exercises\n",
		len(res.Cache[models.KindTopic]),
		len(res.Cache[models.KindVideo]),
		len(res.Cache[models.KindExercise]))
	return nil
}

// newLogger installs the structured JSON logger as the process default.
func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
