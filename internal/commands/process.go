package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hlgr360/logfile-mcp-server/internal/config"
	"github.com/hlgr360/logfile-mcp-server/internal/database"
	"github.com/hlgr360/logfile-mcp-server/internal/pipeline"
)

// NewProcessCommand creates the 'process' subcommand for ingesting log files
// Usage: logfile-mcp-server process --nginx-dir logs/nginx --nexus-dir logs/nexus [--db log_analysis.db] [--append]
func NewProcessCommand() *cobra.Command {
	var configFile string
	var nginxDir string
	var nexusDir string
	var dbFile string
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Parse nginx and Nexus log files into the SQLite database",
		Long: `Scan the configured log directories, parse every matching log file and
store the entries in a SQLite database for efficient querying.

Log files may sit directly on disk or inside archives. Zip, tar, tar.gz,
tar.bz2 and bare gzip containers are opened transparently, including
archives nested inside other archives up to the configured depth. Each
stored entry records its full origin chain in the file_source column,
e.g. "nginx:backup.zip→daily.tar.gz→access.log".

Lines that do not match the expected log format are logged and skipped;
a corrupted archive never aborts the run. By default processing replaces
any existing data. Use --append to keep previously loaded entries.

Example:
  logfile-mcp-server process --nginx-dir logs/nginx --nexus-dir logs/nexus --db logs.db
  logfile-mcp-server process --config config.yaml --append`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcessCommand(cmd, configFile, nginxDir, nexusDir, dbFile, appendMode)
		},
	}

	// Define command flags
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&nginxDir, "nginx-dir", "", "Directory containing nginx access logs")
	cmd.Flags().StringVar(&nexusDir, "nexus-dir", "", "Directory containing Nexus request logs")
	cmd.Flags().StringVarP(&dbFile, "db", "d", "", "Path to SQLite database file")
	cmd.Flags().BoolVar(&appendMode, "append", false, "Append data to existing database (default: replace existing data)")

	return cmd
}

// runProcessCommand executes the ingestion pipeline
func runProcessCommand(cmd *cobra.Command, configFile, nginxDir, nexusDir, dbFile string, appendMode bool) error {
	cfg, err := resolveConfig(configFile, func(c *config.Config) {
		if nginxDir != "" {
			c.NginxDir = nginxDir
		}
		if nexusDir != "" {
			c.NexusDir = nexusDir
		}
		if dbFile != "" {
			c.DBPath = dbFile
		}
	})
	if err != nil {
		return err
	}

	if cfg.NginxDir == "" && cfg.NexusDir == "" {
		return fmt.Errorf("no log directories configured: set --nginx-dir and/or --nexus-dir")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	fmt.Printf("Target database: %s\n", cfg.DBPath)
	if appendMode {
		fmt.Printf("Mode: Append to existing database\n")
	} else {
		fmt.Printf("Mode: Replace existing data\n")
	}

	// Initialize database connection and create tables
	db, err := database.Initialize(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Ctrl-C cancels the run; already committed batches stay in the database
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := pipeline.New(cfg, db, log).Run(ctx, appendMode)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	log.Info("processing complete",
		zap.Int64("total_entries", stats.TotalEntries()),
		zap.Int64("total_errors", stats.TotalErrors()))

	printTypeStats("nginx", &stats.Nginx)
	printTypeStats("nexus", &stats.Nexus)
	fmt.Printf("Successfully loaded %d entries (%d lines failed to parse)\n",
		stats.TotalEntries(), stats.TotalErrors())
	return nil
}

// printTypeStats prints the per-log-type summary
func printTypeStats(name string, s *pipeline.TypeStats) {
	if s.FilesProcessed == 0 {
		return
	}
	fmt.Printf("%s: %d files, %d lines, %d entries, %d parse errors (%.2fs)\n",
		name, s.FilesProcessed, s.LinesProcessed, s.EntriesParsed, s.ParseErrors, s.DurationSecs)
}
