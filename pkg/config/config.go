// Package config loads a single shard process's configuration: data
// directory, HTTP port, optional JWT secret, and log level. Values come from
// a YAML file with environment-variable overrides, following the teacher's
// env-var-first pattern (pkg/api/server_config.go) collapsed into one
// loadable struct for a thin shard process.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Shard holds everything cmd/shard needs to start one shard process.
type Shard struct {
	// Name is this shard's own identifier, used as the prefix of its three
	// backing files (`<name>.properties`, `<name>.node_ids`, `<name>.edges`).
	Name string `yaml:"name"`
	// DataDir is the directory the backing files live under.
	DataDir string `yaml:"data_dir"`
	// ListenAddr is the address the HTTP server binds, e.g. ":8080".
	ListenAddr string `yaml:"listen_addr"`
	// JWTSecret, if set, requires Authorization: Bearer <jwt> on every route
	// except /ping, /healthz and /metrics.
	JWTSecret string `yaml:"jwt_secret"`
	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level"`
	// MaxVisitedQueries bounds pkg/xshard.VisitedSet's LRU eviction.
	MaxVisitedQueries int `yaml:"max_visited_queries"`
}

// Defaults returns the configuration a shard runs with when no file or
// environment override is given.
func Defaults() Shard {
	return Shard{
		Name:              "shard",
		DataDir:           "./data",
		ListenAddr:        ":8080",
		LogLevel:          "info",
		MaxVisitedQueries: 4096,
	}
}

// Load reads path (if non-empty) as YAML over the defaults, then applies
// environment-variable overrides, then validates.
func Load(path string) (Shard, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Shard{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Shard{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Shard{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Shard) {
	if v := os.Getenv("SHARD_NAME"); v != "" {
		cfg.Name = v
	}
	if v := os.Getenv("SHARD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SHARD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SHARD_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("SHARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SHARD_MAX_VISITED_QUERIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxVisitedQueries = n
		}
	}
}

// Validate reports whether the configuration is well-formed enough to start
// a shard process.
func (c Shard) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen_addr must not be empty")
	}
	return nil
}
