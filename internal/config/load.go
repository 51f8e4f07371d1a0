package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// CONCURRENT_STORE_BACKEND.
const EnvPrefix = "CONCURRENT"

var defaults = map[string]any{
	"server.addr":              ":8080",
	"server.log_level":         "info",
	"server.shutdown_timeout":  "10s",
	"server.metrics_namespace": "kvserver",

	"store.backend":      "sqlite",
	"store.sqlite_path":  "kv.db",
	"store.postgres_url": "",
	"store.redis_addr":   "",
	"store.mongo_uri":    "",
	"store.table":        "kv",
	"store.database":     "concurrent",
	"store.prefix":       "concurrent:kv:",
}

// Load reads configuration. path names an optional YAML file; an empty path
// skips the file. Environment variables take precedence over the file, which
// takes precedence over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}
