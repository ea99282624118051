package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "access.log*", cfg.NginxPattern)
	assert.Equal(t, "log_analysis.db", cfg.DBPath)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 3, cfg.MaxArchiveDepth)
	assert.Equal(t, int64(1<<30), cfg.MaxFileBytes)
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: custom.db
batch_size: 250
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep their defaults
	assert.Equal(t, 1000, cfg.ChunkSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOGMCP_DB_PATH", "env.db")
	t.Setenv("LOGMCP_BATCH_SIZE", "42")
	t.Setenv("LOGMCP_LOG_JSON", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env.db", cfg.DBPath)
	assert.Equal(t, 42, cfg.BatchSize)
	assert.True(t, cfg.LogJSON)
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("LOGMCP_BATCH_SIZE", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.BatchSize)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with no dirs", func(c *Config) {}, false},
		{"existing dirs", func(c *Config) { c.NginxDir = dir; c.NexusDir = dir }, false},
		{"missing nginx dir", func(c *Config) { c.NginxDir = "/does/not/exist" }, true},
		{"nginx path is a file", func(c *Config) {
			f := filepath.Join(dir, "file")
			os.WriteFile(f, []byte("x"), 0o644)
			c.NginxDir = f
		}, true},
		{"depth too small", func(c *Config) { c.MaxArchiveDepth = 0 }, true},
		{"depth too large", func(c *Config) { c.MaxArchiveDepth = 11 }, true},
		{"privileged port", func(c *Config) { c.WebPort = 80 }, true},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, true},
		{"max limit below default", func(c *Config) { c.QueryMaxLimit = 10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPatternSplitting(t *testing.T) {
	cfg := Default()
	cfg.NexusPattern = "request*.log*, nexus_logs_*.tar ,,nexus_logs_*.tar.gz"

	patterns := cfg.NexusPatterns()
	assert.Equal(t, []string{"request*.log*", "nexus_logs_*.tar", "nexus_logs_*.tar.gz"}, patterns)
}
