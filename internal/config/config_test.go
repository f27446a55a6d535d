package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
storage:
  backend: "file"
  path: "/var/lib/students"
  key: "roster"
  reset_on_corrupt: true
http_server:
  address: ":9000"
  metrics: false
  shutdown_timeout: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/students", cfg.Storage.Path)
	assert.Equal(t, "roster", cfg.Storage.Key)
	assert.True(t, cfg.Storage.ResetOnCorrupt)
	assert.Equal(t, ":9000", cfg.HTTPServer.Addr)
	assert.False(t, cfg.HTTPServer.Metrics)
	assert.Equal(t, 2*time.Second, cfg.HTTPServer.ShutdownTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "env: dev\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "storage/students.db", cfg.Storage.Path)
	assert.Equal(t, "students", cfg.Storage.Key)
	assert.False(t, cfg.Storage.ResetOnCorrupt)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
	assert.False(t, cfg.HTTPServer.Metrics)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "env: dev\nstorage:\n  backend: sqlite\n")
	t.Setenv("STORAGE_BACKEND", BackendMemory)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	path := writeConfig(t, "env: staging\n")
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EnvStaging, cfg.Env)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "unknown env", body: "env: qa\n", wantErr: ErrInvalidEnv},
		{name: "unknown backend", body: "env: dev\nstorage:\n  backend: redis\n", wantErr: ErrInvalidBackend},
		{name: "bad timeout", body: "env: dev\nhttp_server:\n  shutdown_timeout: -1s\n", wantErr: ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env: EnvDev,
			Storage: Storage{
				Backend: BackendSQLite,
				Path:    "x.db",
				Key:     "students",
			},
			HTTPServer: HTTPServer{Addr: ":8082", ShutdownTimeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "memory needs no path", mutate: func(c *Config) {
			c.Storage.Backend = BackendMemory
			c.Storage.Path = ""
		}},
		{name: "file needs path", mutate: func(c *Config) {
			c.Storage.Backend = BackendFile
			c.Storage.Path = ""
		}, wantErr: ErrMissingPath},
		{name: "empty key", mutate: func(c *Config) { c.Storage.Key = "" }, wantErr: ErrMissingKey},
		{name: "empty addr", mutate: func(c *Config) { c.HTTPServer.Addr = "" }, wantErr: ErrMissingAddr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
