// Package config provides configuration loading and validation for the
// log analysis application. Settings come from three layers, later layers
// winning: built-in defaults, an optional YAML file, then environment
// variables (LOGMCP_* prefix). Command flags override on top of all three.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envPrefix namespaces the environment variable overrides
const envPrefix = "LOGMCP_"

// Config holds all application configuration
type Config struct {
	// Log source directories
	NginxDir string `yaml:"nginx_dir"`
	NexusDir string `yaml:"nexus_dir"`

	// Comma-separated filename glob patterns per log type
	NginxPattern string `yaml:"nginx_pattern"`
	NexusPattern string `yaml:"nexus_pattern"`

	// Database
	DBPath string `yaml:"db_path"`

	// Processing
	ChunkSize       int   `yaml:"chunk_size"`        // lines scanned per read chunk
	BatchSize       int   `yaml:"batch_size"`        // parsed rows per bulk insert
	MaxArchiveDepth int   `yaml:"max_archive_depth"` // nested archive recursion limit
	MaxFileBytes    int64 `yaml:"max_file_bytes"`    // decompressed per-member byte limit

	// Query guardrails
	QueryDefaultLimit int `yaml:"query_default_limit"`
	QueryMaxLimit     int `yaml:"query_max_limit"`

	// Web server
	WebPort int `yaml:"web_port"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Default returns the built-in configuration defaults
func Default() *Config {
	return &Config{
		NginxPattern:      "access.log*",
		NexusPattern:      "request*.log*,nexus_logs_*.tar,nexus_logs_*.tar.gz",
		DBPath:            "log_analysis.db",
		ChunkSize:         1000,
		BatchSize:         1000,
		MaxArchiveDepth:   3,
		MaxFileBytes:      1 << 30, // 1 GiB
		QueryDefaultLimit: 100,
		QueryMaxLimit:     1000,
		WebPort:           8000,
		LogLevel:          "info",
		LogJSON:           false,
	}
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file at path (if path is non-empty), overlaid by environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays LOGMCP_* environment variables onto the config
func (c *Config) applyEnvOverrides() {
	setString(&c.NginxDir, "NGINX_DIR")
	setString(&c.NexusDir, "NEXUS_DIR")
	setString(&c.NginxPattern, "NGINX_PATTERN")
	setString(&c.NexusPattern, "NEXUS_PATTERN")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setInt(&c.ChunkSize, "CHUNK_SIZE")
	setInt(&c.BatchSize, "BATCH_SIZE")
	setInt(&c.MaxArchiveDepth, "MAX_ARCHIVE_DEPTH")
	setInt(&c.QueryDefaultLimit, "QUERY_DEFAULT_LIMIT")
	setInt(&c.QueryMaxLimit, "QUERY_MAX_LIMIT")
	setInt(&c.WebPort, "WEB_PORT")
	setInt64(&c.MaxFileBytes, "MAX_FILE_BYTES")
	setBool(&c.LogJSON, "LOG_JSON")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate checks the configuration for values that would fail later in
// confusing ways: missing directories, absurd ports, runaway recursion
func (c *Config) Validate() error {
	for _, dir := range []struct{ label, path string }{
		{"nginx", c.NginxDir},
		{"nexus", c.NexusDir},
	} {
		if dir.path == "" {
			continue // the orchestrator skips unconfigured log types
		}
		info, err := os.Stat(dir.path)
		if err != nil {
			return fmt.Errorf("%s directory does not exist: %s", dir.label, dir.path)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s path is not a directory: %s", dir.label, dir.path)
		}
	}

	if c.MaxArchiveDepth < 1 || c.MaxArchiveDepth > 10 {
		return fmt.Errorf("max archive depth must be between 1 and 10, got: %d", c.MaxArchiveDepth)
	}
	if c.WebPort < 1024 || c.WebPort > 65535 {
		return fmt.Errorf("web port must be between 1024 and 65535, got: %d", c.WebPort)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive, got: %d", c.ChunkSize)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got: %d", c.BatchSize)
	}
	if c.QueryMaxLimit < c.QueryDefaultLimit {
		return fmt.Errorf("query max limit (%d) must not be below the default limit (%d)",
			c.QueryMaxLimit, c.QueryDefaultLimit)
	}

	return nil
}

// NginxPatterns returns the nginx filename patterns as a list
func (c *Config) NginxPatterns() []string {
	return splitPatterns(c.NginxPattern)
}

// NexusPatterns returns the Nexus filename patterns as a list
func (c *Config) NexusPatterns() []string {
	return splitPatterns(c.NexusPattern)
}

func splitPatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
