// Package config loads pulsar's runtime configuration from viper.
package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Identifier generator names accepted in the id_generator key.
const (
	GeneratorSHA256  = "sha256"
	GeneratorCommand = "command"
)

// StoreConfig holds settings for the result store.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
}

// Config holds all runtime configuration for a pulsar invocation.
// Values are populated from .pulsar.yaml, PULSAR_* env vars, and CLI flags.
type Config struct {
	Alpha         float64     `mapstructure:"alpha"`
	Iterations    int         `mapstructure:"iterations"`
	Tolerance     float64     `mapstructure:"tolerance"`
	Threads       int         `mapstructure:"threads"`
	IDGenerator   string      `mapstructure:"id_generator"`
	HashCommand   string      `mapstructure:"hash_command"`
	TelemetryPath string      `mapstructure:"telemetry_path"`
	Top           int         `mapstructure:"top"`
	Verbose       bool        `mapstructure:"verbose"`
	Store         StoreConfig `mapstructure:"store"`
}

// SetDefaults registers built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("alpha", 0.85)
	viper.SetDefault("iterations", 100)
	viper.SetDefault("tolerance", 1e-6)
	viper.SetDefault("threads", runtime.NumCPU())
	viper.SetDefault("id_generator", GeneratorSHA256)
	viper.SetDefault("hash_command", "sha256sum -")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("top", 10)
	viper.SetDefault("verbose", false)
	viper.SetDefault("store.enabled", false)
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.dsn", ".pulsar/results.db")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates it.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return fmt.Errorf("config: alpha %g must be in (0, 1)", c.Alpha)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("config: iterations %d must not be negative", c.Iterations)
	}
	if !(c.Tolerance > 0) {
		return fmt.Errorf("config: tolerance %g must be positive", c.Tolerance)
	}
	if c.Threads < 1 {
		return fmt.Errorf("config: threads %d must be positive", c.Threads)
	}
	switch c.IDGenerator {
	case GeneratorSHA256, GeneratorCommand:
	default:
		return fmt.Errorf("config: unknown id_generator %q (want %q or %q)", c.IDGenerator, GeneratorSHA256, GeneratorCommand)
	}
	if c.Top < 0 {
		return fmt.Errorf("config: top %d must not be negative", c.Top)
	}
	return nil
}
