// Package mcp exposes the guarded query service to LLM clients over the
// Model Context Protocol (JSON-RPC 2.0 on stdio).
//
// Three read-only tools are registered:
//   - list_database_schema: table and column definitions with row counts
//   - execute_sql_query: guarded SELECT execution with a row ceiling
//   - get_table_sample: first rows of one log table
//
// Everything funnels through the query service, so the same statement
// whitelist and row limits apply as on the CLI and web API.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hlgr360/logfile-mcp-server/internal/query"
)

// Server wraps the MCP protocol server around the query service
type Server struct {
	svc *query.Service
	log *zap.Logger
	mcp *server.MCPServer
}

// New creates the MCP server and registers the query tools
func New(svc *query.Service, version string, log *zap.Logger) *Server {
	s := &Server{
		svc: svc,
		log: log,
		mcp: server.NewMCPServer("logfile-mcp-server", version),
	}

	s.mcp.AddTool(mcp.NewTool("list_database_schema",
		mcp.WithDescription("List all log tables with their columns, types and current row counts. Call this first to learn the schema before writing queries."),
	), s.handleListSchema)

	s.mcp.AddTool(mcp.NewTool("execute_sql_query",
		mcp.WithDescription("Execute a read-only SQL SELECT query against the log database. Write statements are rejected. Results are capped by the row limit."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("SQL SELECT query to execute"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of rows to return (default 100)"),
		),
	), s.handleExecuteQuery)

	s.mcp.AddTool(mcp.NewTool("get_table_sample",
		mcp.WithDescription("Return sample rows from one log table to see real data shapes."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Table to sample: nginx_logs or nexus_logs"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of sample rows to return (default 10)"),
		),
	), s.handleTableSample)

	return s
}

// ServeStdio blocks serving the protocol on stdin/stdout until EOF
func (s *Server) ServeStdio() error {
	s.log.Info("MCP server listening on stdio")
	return server.ServeStdio(s.mcp)
}

// handleListSchema implements the list_database_schema tool
func (s *Server) handleListSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.svc.Schema()
	if err != nil {
		s.log.Error("schema tool failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to retrieve database schema: %v", err)), nil
	}
	return jsonResult(info)
}

// handleExecuteQuery implements the execute_sql_query tool
func (s *Server) handleExecuteQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sqlQuery, ok := req.Params.Arguments["query"].(string)
	if !ok || sqlQuery == "" {
		return mcp.NewToolResultError("missing required argument: query"), nil
	}
	limit := intArgument(req.Params.Arguments, "limit")

	result, err := s.svc.Execute(sqlQuery, limit)
	if err != nil {
		// Validation and execution failures go back to the model as tool
		// errors so it can correct the query, not as protocol errors
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// handleTableSample implements the get_table_sample tool
func (s *Server) handleTableSample(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, ok := req.Params.Arguments["table_name"].(string)
	if !ok || table == "" {
		return mcp.NewToolResultError("missing required argument: table_name"), nil
	}
	limit := intArgument(req.Params.Arguments, "limit")

	result, err := s.svc.TableSample(table, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// intArgument extracts an optional numeric argument; JSON numbers arrive as
// float64
func intArgument(args map[string]interface{}, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

// jsonResult marshals a value as the tool's text content
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
