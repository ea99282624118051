package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlgr360/logfile-mcp-server/internal/config"
	"github.com/hlgr360/logfile-mcp-server/internal/query"
)

// NewQueryCommand creates the 'query' subcommand for executing SQL queries
// Usage: logfile-mcp-server query [--db log_analysis.db] [--sql "SELECT ..."]
func NewQueryCommand() *cobra.Command {
	var configFile string
	var dbFile string
	var sqlQuery string
	var limit int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Execute SQL queries against the log database",
		Long: `Execute SQL queries against the SQLite database containing parsed log data.

You can either provide a query directly via the --sql flag or enter interactive
mode to execute multiple queries.

SECURITY: Only read-only queries are allowed. Write operations (INSERT, UPDATE,
DELETE, CREATE, DROP, etc.) are blocked, and results are capped at the
configured row limit.

Common example queries:
  # Top client IPs in the nginx logs
  SELECT ip_address, COUNT(*) as requests FROM nginx_logs
  GROUP BY ip_address ORDER BY requests DESC LIMIT 10;

  # Error responses served by Nexus
  SELECT path, status_code FROM nexus_logs WHERE status_code >= 500;

Interactive mode:
  logfile-mcp-server query --db logs.db

Direct query:
  logfile-mcp-server query --db logs.db --sql "SELECT COUNT(*) FROM nginx_logs"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryCommand(configFile, dbFile, sqlQuery, limit)
		},
	}

	// Define command flags
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&dbFile, "db", "d", "", "Path to SQLite database file")
	cmd.Flags().StringVarP(&sqlQuery, "sql", "s", "", "SQL query to execute (if not provided, enters interactive mode)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of rows to return (0 uses the configured default)")

	return cmd
}

// runQueryCommand executes the query logic
func runQueryCommand(configFile, dbFile, sqlQuery string, limit int) error {
	cfg, err := resolveConfig(configFile, func(c *config.Config) {
		if dbFile != "" {
			c.DBPath = dbFile
		}
	})
	if err != nil {
		return err
	}

	// Validate database file exists
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

	// Execute single query or enter interactive mode
	if sqlQuery != "" {
		return executeSingleQuery(svc, sqlQuery, limit)
	}

	return enterInteractiveMode(svc, cfg.DBPath, limit)
}

// executeSingleQuery runs a single SQL query and displays results
func executeSingleQuery(svc *query.Service, sqlQuery string, limit int) error {
	fmt.Printf("Executing query: %s\n\n", sqlQuery)

	result, err := svc.Execute(sqlQuery, limit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	displayResults(result)
	return nil
}

// enterInteractiveMode provides an interactive SQL query interface
func enterInteractiveMode(svc *query.Service, dbFile string, limit int) error {
	fmt.Printf("Connected to database: %s\n", dbFile)
	fmt.Println("Interactive SQL query mode. Type 'exit' or 'quit' to exit.")
	fmt.Println("SECURITY: Only read-only queries (SELECT, WITH, EXPLAIN) are allowed.")
	fmt.Println("Example queries:")
	fmt.Println("  SELECT COUNT(*) FROM nginx_logs;")
	fmt.Println("  SELECT path, status_code FROM nexus_logs WHERE status_code >= 400 LIMIT 20;")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("sql> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		// Handle exit commands
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			break
		}

		// Skip empty input
		if input == "" {
			continue
		}

		result, err := svc.Execute(input, limit)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}

		displayResults(result)
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

// displayResults formats and prints query results as a fixed-width table
func displayResults(result *query.Result) {
	if result.RowCount == 0 {
		fmt.Println("No results found.")
		return
	}

	// Print header
	for i, column := range result.Columns {
		if i > 0 {
			fmt.Print(" | ")
		}
		fmt.Printf("%-15s", column)
	}
	fmt.Println()

	// Print separator
	for i := range result.Columns {
		if i > 0 {
			fmt.Print(" | ")
		}
		fmt.Print(strings.Repeat("-", 15))
	}
	fmt.Println()

	// Print rows
	for _, row := range result.Rows {
		for i, column := range result.Columns {
			if i > 0 {
				fmt.Print(" | ")
			}
			value := row[column]
			if value == nil {
				value = "NULL"
			}
			fmt.Printf("%-15v", value)
		}
		fmt.Println()
	}

	fmt.Printf("\n(%d rows in %.3fs)\n", result.RowCount, result.ExecutionTime)
}
