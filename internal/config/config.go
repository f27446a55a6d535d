// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. The --config flag on the command line
//  2. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//
// With neither, values come from environment variables and the
// env-default tags below, so the tool also runs with no file at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Environments.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// ConfigPathEnv names the environment variable holding the config path.
const ConfigPathEnv = "CONFIG_PATH"

var (
	ErrInvalidEnv     = errors.New("env must be one of: dev, staging, prod")
	ErrInvalidBackend = errors.New("storage backend must be one of: sqlite, file, memory")
	ErrMissingPath    = errors.New("storage path must be set for sqlite and file backends")
	ErrMissingKey     = errors.New("storage key must not be empty")
	ErrMissingAddr    = errors.New("http server address must not be empty")
	ErrInvalidTimeout = errors.New("shutdown timeout must be positive")
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage    Storage    `yaml:"storage"`
	HTTPServer HTTPServer `yaml:"http_server"`
}

// Storage selects where the record list blob lives.
type Storage struct {
	// Backend is one of sqlite, file, memory.
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"sqlite"`

	// Path is the SQLite .db file for the sqlite backend, or the
	// directory holding one file per key for the file backend.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/students.db"`

	// Key is the single key the whole list is stored under.
	Key string `yaml:"key" env:"STORAGE_KEY" env-default:"students"`

	// ResetOnCorrupt starts with an empty list instead of refusing to
	// start when the stored blob cannot be parsed.
	ResetOnCorrupt bool `yaml:"reset_on_corrupt" env:"STORAGE_RESET_ON_CORRUPT" env-default:"false"`
}

// HTTPServer holds settings specific to the HTTP view.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`

	// Metrics exposes /metrics. It has no env-default: cleanenv fills
	// defaults into zero-valued fields, which would turn an explicit
	// "metrics: false" back on.
	Metrics bool `yaml:"metrics" env:"HTTP_SERVER_METRICS"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load reads the config at path (or CONFIG_PATH when path is empty) and
// validates it. When neither names a file, only the environment is read.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
	} else {
		// Verify the file exists before trying to read it, so the
		// message names the path instead of a bare "no such file".
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config.Load: config file does not exist: %s", path)
		}

		// cleanenv.ReadConfig reads the YAML file, then applies env
		// overrides and env-default values.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return ErrInvalidEnv
	}

	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
		if c.Storage.Path == "" {
			return ErrMissingPath
		}
	case BackendMemory:
	default:
		return ErrInvalidBackend
	}

	if c.Storage.Key == "" {
		return ErrMissingKey
	}

	if c.HTTPServer.Addr == "" {
		return ErrMissingAddr
	}

	if c.HTTPServer.ShutdownTimeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}
