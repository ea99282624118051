package query

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hlgr360/logfile-mcp-server/internal/database"
)

// logTables are the tables sampling and previews may touch
var logTables = map[string]bool{
	"nginx_logs": true,
	"nexus_logs": true,
}

// Result holds the outcome of a guarded query execution
type Result struct {
	Columns       []string                 `json:"columns"`
	Rows          []map[string]interface{} `json:"results"`
	RowCount      int                      `json:"row_count"`
	ExecutionTime float64                  `json:"execution_time"`
	Query         string                   `json:"query_text,omitempty"`
}

// ColumnInfo describes a single column of a log table
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	PrimaryKey bool   `json:"primary_key"`
}

// TableSchema describes one table: columns plus current row count
type TableSchema struct {
	TableName string       `json:"table_name"`
	Columns   []ColumnInfo `json:"columns"`
	RowCount  int64        `json:"row_count"`
}

// SchemaInfo describes the whole database for schema-introspection clients
type SchemaInfo struct {
	Tables      []TableSchema `json:"tables"`
	TotalTables int           `json:"total_tables"`
}

// Service executes validated read-only SQL with a row-count ceiling.
// It is the single chokepoint between external query surfaces (CLI, web,
// MCP) and the store.
type Service struct {
	db           database.DB
	defaultLimit int
	maxLimit     int
	log          *zap.Logger
}

// NewService creates a query service. defaultLimit applies when the caller
// does not ask for a limit; maxLimit is the hard ceiling no caller can exceed.
func NewService(db database.DB, defaultLimit, maxLimit int, log *zap.Logger) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	if maxLimit <= 0 {
		maxLimit = 1000
	}
	return &Service{db: db, defaultLimit: defaultLimit, maxLimit: maxLimit, log: log}
}

// Execute validates and runs a read-only query, capping the result set.
// limit <= 0 selects the service default.
func (s *Service) Execute(sqlQuery string, limit int) (*Result, error) {
	if err := ValidateReadOnly(sqlQuery); err != nil {
		s.log.Warn("query rejected", zap.String("query", truncateForLog(sqlQuery)), zap.Error(err))
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	start := time.Now()
	rows, err := database.ExecuteQuery(s.db, sqlQuery, limit)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	s.log.Debug("query executed",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", elapsed))

	return &Result{
		Columns:       columnsOf(rows),
		Rows:          rows,
		RowCount:      len(rows),
		ExecutionTime: elapsed.Seconds(),
		Query:         sqlQuery,
	}, nil
}

// TableSample returns up to limit rows from one of the log tables, most
// recently stored first. The table name is checked against the known
// tables, never interpolated from free-form input.
func (s *Service) TableSample(table string, limit int) (*Result, error) {
	if !logTables[table] {
		return nil, fmt.Errorf("unknown table: %s (expected nginx_logs or nexus_logs)", table)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	start := time.Now()
	rows, err := database.ExecuteQuery(s.db,
		fmt.Sprintf("SELECT * FROM %s ORDER BY created_at DESC LIMIT %d", table, limit), limit)
	if err != nil {
		return nil, err
	}

	return &Result{
		Columns:       columnsOf(rows),
		Rows:          rows,
		RowCount:      len(rows),
		ExecutionTime: time.Since(start).Seconds(),
	}, nil
}

// Schema returns column definitions and row counts for the log tables
func (s *Service) Schema() (*SchemaInfo, error) {
	info := &SchemaInfo{}

	for _, table := range []string{"nginx_logs", "nexus_logs"} {
		cols, err := database.ExecuteQuery(s.db, "PRAGMA table_info("+table+")", 0)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
		}

		ts := TableSchema{TableName: table}
		for _, col := range cols {
			ts.Columns = append(ts.Columns, ColumnInfo{
				Name:       asString(col["name"]),
				Type:       asString(col["type"]),
				NotNull:    asInt64(col["notnull"]) != 0,
				PrimaryKey: asInt64(col["pk"]) != 0,
			})
		}

		counts, err := database.ExecuteQuery(s.db, "SELECT COUNT(*) AS n FROM "+table, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to count rows in %s: %w", table, err)
		}
		if len(counts) == 1 {
			ts.RowCount = asInt64(counts[0]["n"])
		}

		info.Tables = append(info.Tables, ts)
	}

	info.TotalTables = len(info.Tables)
	return info, nil
}

// columnsOf extracts a stable column list from the first result row
func columnsOf(rows []map[string]interface{}) []string {
	if len(rows) == 0 {
		return nil
	}
	columns := make([]string, 0, len(rows[0]))
	for column := range rows[0] {
		columns = append(columns, column)
	}
	return columns
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func truncateForLog(q string) string {
	if len(q) > 100 {
		return q[:100]
	}
	return q
}
