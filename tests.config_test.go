package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

const testConfigYAML = `
is_production: false
log_level: debug
log_folder: ./logs/
log_max_size: 5
ops_endpoints_enable: true
server:
  host: 127.0.0.1
  port: 8080
  read_timeout: 5s
  write_timeout: 10s
  request_timeout: 5s
  shutdown_timeout: 30s
store:
  file_path: ./data/books.json
redis:
  enabled: false
`

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("should pass: valid yaml", func(t *testing.T) {
		cfg, err := LoadConfigFile(writeTestFile(t, "config.yml", testConfigYAML))
		require.NoError(t, err)
		assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
		assert.Equal(t, 5, cfg.LogMaxSize)
		assert.True(t, cfg.OpsEndpointsEnable)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
		assert.Equal(t, "./data/books.json", cfg.Store.FilePath)
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("should fail: missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("should fail: invalid yaml", func(t *testing.T) {
		_, err := LoadConfigFile(writeTestFile(t, "config.yml", "server: [host"))
		assert.Error(t, err)
	})
}

func TestInitConfig(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "127.0.0.1", Port: "8080"},
			Store:  StoreConfig{FilePath: "./data/books.json"},
		}
	}

	t.Run("should pass: defaults and build values", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, InitConfig(cfg, "abc123", "v1.0.0", "2023-07-02"))
		assert.Equal(t, "abc123", cfg.GitCommit)
		assert.Equal(t, "v1.0.0", cfg.GitTag)
		assert.Equal(t, "2023-07-02", cfg.BuildTime)
		assert.Equal(t, 10, cfg.LogMaxSize)
		assert.Equal(t, "./logs", cfg.LogFolder)
	})

	t.Run("should pass: empty build values keep config", func(t *testing.T) {
		cfg := validConfig()
		cfg.GitTag = "v0.9.0"
		require.NoError(t, InitConfig(cfg, "", "", ""))
		assert.Equal(t, "v0.9.0", cfg.GitTag)
	})

	testCases := []struct {
		name   string
		update func(*Config)
	}{
		{"missing server host", func(c *Config) { c.Server.Host = "" }},
		{"missing server port", func(c *Config) { c.Server.Port = "" }},
		{"missing store path", func(c *Config) { c.Store.FilePath = "" }},
		{"redis enabled without address", func(c *Config) { c.Redis.Enabled = true }},
	}
	for _, tc := range testCases {
		t.Run("should fail: "+tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.update(cfg)
			assert.Error(t, InitConfig(cfg, "", "", ""))
		})
	}
}

func TestLoadAndInitConfigs(t *testing.T) {
	configFile := writeTestFile(t, "config.yml", testConfigYAML)

	t.Run("should pass: missing env file ignored", func(t *testing.T) {
		cfg, err := LoadAndInitConfigs(configFile, filepath.Join(t.TempDir(), "config.env"), "abc123", "", "")
		require.NoError(t, err)
		assert.Equal(t, "abc123", cfg.GitCommit)
		assert.Equal(t, "8080", cfg.Server.Port)
	})

	t.Run("should pass: environment overrides file", func(t *testing.T) {
		t.Setenv("BJAP_SERVER_PORT", "9090")
		t.Setenv("BJAP_STORE_FILE_PATH", "/tmp/books.json")
		cfg, err := LoadAndInitConfigs(configFile, filepath.Join(t.TempDir(), "config.env"), "", "", "")
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "/tmp/books.json", cfg.Store.FilePath)
	})

	t.Run("should fail: invalid env value", func(t *testing.T) {
		t.Setenv("BJAP_LOG_MAX_SIZE", "big")
		_, err := LoadAndInitConfigs(configFile, filepath.Join(t.TempDir(), "config.env"), "", "", "")
		assert.Error(t, err)
	})

	t.Run("should fail: missing config file", func(t *testing.T) {
		_, err := LoadAndInitConfigs(filepath.Join(t.TempDir(), "missing.yml"), "", "", "", "")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
