package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// These tests mutate viper's global state and therefore do not run in parallel.

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Alpha != 0.85 {
		t.Errorf("Alpha = %g, want 0.85", cfg.Alpha)
	}
	if cfg.Iterations != 100 {
		t.Errorf("Iterations = %d, want 100", cfg.Iterations)
	}
	if cfg.Tolerance != 1e-6 {
		t.Errorf("Tolerance = %g, want 1e-6", cfg.Tolerance)
	}
	if cfg.Threads < 1 {
		t.Errorf("Threads = %d, want positive", cfg.Threads)
	}
	if cfg.IDGenerator != GeneratorSHA256 {
		t.Errorf("IDGenerator = %q, want %q", cfg.IDGenerator, GeneratorSHA256)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Enabled {
		t.Errorf("Store = %+v, want disabled sqlite", cfg.Store)
	}
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("alpha", 0.5)
	viper.Set("threads", 3)
	viper.Set("store.enabled", true)
	viper.Set("store.dsn", "/tmp/x.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Alpha != 0.5 || cfg.Threads != 3 {
		t.Errorf("Alpha, Threads = %g, %d, want 0.5, 3", cfg.Alpha, cfg.Threads)
	}
	if !cfg.Store.Enabled || cfg.Store.DSN != "/tmp/x.db" {
		t.Errorf("Store = %+v, want enabled with /tmp/x.db", cfg.Store)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Alpha: 0.85, Iterations: 10, Tolerance: 1e-6, Threads: 2, IDGenerator: GeneratorSHA256, Top: 5}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"alpha too large", func(c *Config) { c.Alpha = 1 }, "alpha"},
		{"negative iterations", func(c *Config) { c.Iterations = -1 }, "iterations"},
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }, "tolerance"},
		{"zero threads", func(c *Config) { c.Threads = 0 }, "threads"},
		{"unknown generator", func(c *Config) { c.IDGenerator = "md5" }, "id_generator"},
		{"negative top", func(c *Config) { c.Top = -1 }, "top"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
