// Package main provides the CLI entry point for the logfile MCP server
// The tool provides four commands:
// 1. process - Parse nginx and Nexus logs (plain or archived) into SQLite
// 2. query   - Execute read-only SQL queries against the stored log data
// 3. serve   - Expose the query service as an HTTP JSON API
// 4. mcp     - Expose the query service to LLM clients over MCP on stdio
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlgr360/logfile-mcp-server/internal/commands"
)

func main() {
	// Root command defines the base command when called without any subcommands
	var rootCmd = &cobra.Command{
		Use:   "logfile-mcp-server",
		Short: "A tool for ingesting and querying nginx and Nexus log files",
		Long: `Logfile MCP Server is a two-step tool for processing and querying server logs.

Step 1: Process nginx and Nexus log files (including nested archives) into
a SQLite database for efficient querying.

Step 2: Query the stored data through one of three read-only surfaces: an
interactive SQL CLI, an HTTP JSON API, or a Model Context Protocol server
that lets LLM clients explore the logs with natural language.`,
		Version: commands.Version,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewProcessCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())

	// Execute the root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
