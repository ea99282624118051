package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hlgr360/logfile-mcp-server/internal/config"
	"github.com/hlgr360/logfile-mcp-server/internal/mcp"
)

// NewMCPCommand creates the 'mcp' subcommand for the stdio MCP server
// Usage: logfile-mcp-server mcp [--db log_analysis.db]
func NewMCPCommand() *cobra.Command {
	var configFile string
	var dbFile string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the log database to LLM clients over MCP on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

MCP clients (Claude Desktop, IDE assistants) discover three read-only
tools: list_database_schema, execute_sql_query and get_table_sample.
All tool calls go through the same read-only validation and row ceiling
as the other query surfaces.

The protocol owns stdout, so all logging goes to stderr.

Claude Desktop configuration:
  {
    "mcpServers": {
      "logfile": {
        "command": "logfile-mcp-server",
        "args": ["mcp", "--db", "/path/to/logs.db"]
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPCommand(configFile, dbFile)
		},
	}

	// Define command flags
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&dbFile, "db", "d", "", "Path to SQLite database file")

	return cmd
}

// runMCPCommand starts the stdio server and blocks until the client hangs up
func runMCPCommand(configFile, dbFile string) error {
	cfg, err := resolveConfig(configFile, func(c *config.Config) {
		if dbFile != "" {
			c.DBPath = dbFile
		}
	})
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s\nPlease run 'process' command first", cfg.DBPath)
	}

	// Stdout carries the protocol; zap already writes to stderr
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

	log.Info("starting MCP server", zap.String("db", cfg.DBPath), zap.String("version", Version))
	return mcp.New(svc, Version, log).ServeStdio()
}
