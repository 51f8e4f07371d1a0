// Package config loads kvserver configuration from defaults, an optional
// YAML file, and CONCURRENT_* environment variables.
package config

import "time"

// Config holds all kvserver configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Store  StoreConfig  `mapstructure:"store" validate:"required"`
}

// ServerConfig contains HTTP and process settings.
type ServerConfig struct {
	Addr             string        `mapstructure:"addr" validate:"required"`
	LogLevel         string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MetricsNamespace string        `mapstructure:"metrics_namespace" validate:"required,alphanum"`
}

// StoreConfig selects and configures the key/value backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=memory sqlite postgres redis mongo"`

	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Backend sqlite"`
	PostgresURL string `mapstructure:"postgres_url" validate:"required_if=Backend postgres"`
	RedisAddr   string `mapstructure:"redis_addr" validate:"required_if=Backend redis"`
	MongoURI    string `mapstructure:"mongo_uri" validate:"required_if=Backend mongo"`

	// Table is the SQL table (sqlite, postgres) or Mongo collection name.
	Table    string `mapstructure:"table"`
	Database string `mapstructure:"database"`
	Prefix   string `mapstructure:"prefix"`
}
