package internal

import "github.com/pkimber/ka-lite/internal/pipeline"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	pipeline pipeline.Options
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPipelineOptions sets the user-facing pipeline toggles.
func WithPipelineOptions(opts pipeline.Options) Option {
	return func(a *application) {
		a.pipeline = opts
	}
}
