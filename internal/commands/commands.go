// Package commands implements the CLI commands for the logfile MCP server
package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hlgr360/logfile-mcp-server/internal/config"
	"github.com/hlgr360/logfile-mcp-server/internal/database"
	"github.com/hlgr360/logfile-mcp-server/internal/logging"
	"github.com/hlgr360/logfile-mcp-server/internal/query"
)

// Version is the build version reported by the MCP server handshake.
// Overridden at build time via -ldflags.
var Version = "dev"

// resolveConfig loads the effective configuration (defaults, YAML file,
// environment) and applies command-line flag overrides on top. Flags win
// over everything else.
func resolveConfig(configFile string, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openQueryService connects to the database and builds the guarded query
// service with the configured row limits. The caller owns the returned DB
// handle and must close it.
func openQueryService(cfg *config.Config, log *zap.Logger) (database.DB, *query.Service, error) {
	db, err := database.Initialize(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	svc := query.NewService(db, cfg.QueryDefaultLimit, cfg.QueryMaxLimit, log)
	return db, svc, nil
}

// newLogger builds the zap logger from the configured level and format
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel, cfg.LogJSON)
}
