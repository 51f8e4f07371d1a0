package concurrent

import (
	"log/slog"

	"github.com/KjellKod/concurrent/pkg/api"
)

// Config controls the identity and instrumentation of an Object.
type Config struct {
	// Name labels the object in logs and observer events. Defaults to the
	// worker's type name.
	Name string

	// Logger receives lifecycle and panic records. Defaults to slog.Default().
	Logger *slog.Logger

	// Observer receives per-object and per-task events. Defaults to
	// api.NoopObserver.
	Observer api.Observer
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Logger:   slog.Default(),
		Observer: api.NoopObserver{},
	}
}

// Option customizes Config.
type Option func(*Config)

// WithName sets the object's name.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithObserver sets the observer. Passing several observers through
// api.NewCompositeObserver is the way to attach more than one.
func WithObserver(obs api.Observer) Option {
	return func(c *Config) {
		if obs != nil {
			c.Observer = obs
		}
	}
}

func buildConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
