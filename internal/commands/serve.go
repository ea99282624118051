package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hlgr360/logfile-mcp-server/internal/config"
	"github.com/hlgr360/logfile-mcp-server/internal/web"
)

// NewServeCommand creates the 'serve' subcommand for the HTTP query API
// Usage: logfile-mcp-server serve [--db log_analysis.db] [--port 8000]
func NewServeCommand() *cobra.Command {
	var configFile string
	var dbFile string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP query API over the log database",
		Long: `Start an HTTP server exposing the log database as a JSON API.

Endpoints:
  POST /api/query           execute a read-only SQL query
  GET  /api/schema          table and column definitions with row counts
  GET  /api/nginx-preview   first rows of the nginx_logs table
  GET  /api/nexus-preview   first rows of the nexus_logs table
  GET  /api/stats           per-table and total row counts
  GET  /api/health          liveness probe

All queries go through the same read-only validation and row ceiling as
the 'query' command.

Example:
  logfile-mcp-server serve --db logs.db --port 8000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCommand(configFile, dbFile, port)
		},
	}

	// Define command flags
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&dbFile, "db", "d", "", "Path to SQLite database file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (0 uses the configured default)")

	return cmd
}

// runServeCommand starts the HTTP server and blocks until it exits
func runServeCommand(configFile, dbFile string, port int) error {
	cfg, err := resolveConfig(configFile, func(c *config.Config) {
		if dbFile != "" {
			c.DBPath = dbFile
		}
		if port != 0 {
			c.WebPort = port
		}
	})
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s\nPlease run 'process' command first", cfg.DBPath)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	db, svc, err := openQueryService(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info("starting HTTP server",
		zap.Int("port", cfg.WebPort),
		zap.String("db", cfg.DBPath))
	fmt.Printf("Serving query API on http://localhost:%d\n", cfg.WebPort)

	return web.New(svc, cfg.WebPort, log).ListenAndServe()
}
