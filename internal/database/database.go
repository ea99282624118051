// Package database provides SQLite storage for parsed nginx and Nexus logs
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DB interface defines database operations for easier testing and extensibility
// This interface could be extended to support other database backends (PostgreSQL, MySQL, etc.)
type DB interface {
	Close() error
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
	Begin() (*sql.Tx, error)
}

// sqliteDB implements the DB interface for SQLite
type sqliteDB struct {
	*sql.DB
}

// Initialize creates a new SQLite database connection and sets up the schema.
// Returns a DB interface that can be used for all database operations.
func Initialize(dbPath string) (DB, error) {
	// busy_timeout keeps concurrent ingest goroutines from failing on
	// transient SQLITE_BUSY while another transaction commits
	sqlDB, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &sqliteDB{sqlDB}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables sets up the database schema: one table per log format with
// indexes on the columns the query tools hit most often
func createTables(db DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS nginx_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip_address TEXT NOT NULL,
		remote_user TEXT,
		timestamp DATETIME NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		http_version TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		response_size INTEGER,
		referer TEXT,
		user_agent TEXT,
		raw_log TEXT NOT NULL,
		file_source TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_nginx_timestamp ON nginx_logs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_nginx_ip ON nginx_logs(ip_address);
	CREATE INDEX IF NOT EXISTS idx_nginx_method ON nginx_logs(method);
	CREATE INDEX IF NOT EXISTS idx_nginx_path ON nginx_logs(path);
	CREATE INDEX IF NOT EXISTS idx_nginx_status ON nginx_logs(status_code);
	CREATE INDEX IF NOT EXISTS idx_nginx_method_path ON nginx_logs(method, path);
	CREATE INDEX IF NOT EXISTS idx_nginx_file_source ON nginx_logs(file_source);

	CREATE TABLE IF NOT EXISTS nexus_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip_address TEXT NOT NULL,
		remote_user TEXT,
		timestamp DATETIME NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		http_version TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		response_size INTEGER,
		request_size INTEGER,
		processing_time_ms INTEGER,
		user_agent TEXT,
		thread_info TEXT,
		raw_log TEXT NOT NULL,
		file_source TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_nexus_timestamp ON nexus_logs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_nexus_ip ON nexus_logs(ip_address);
	CREATE INDEX IF NOT EXISTS idx_nexus_method ON nexus_logs(method);
	CREATE INDEX IF NOT EXISTS idx_nexus_path ON nexus_logs(path);
	CREATE INDEX IF NOT EXISTS idx_nexus_status ON nexus_logs(status_code);
	CREATE INDEX IF NOT EXISTS idx_nexus_method_path ON nexus_logs(method, path);
	CREATE INDEX IF NOT EXISTS idx_nexus_file_source ON nexus_logs(file_source);
	CREATE INDEX IF NOT EXISTS idx_nexus_thread ON nexus_logs(thread_info);
	`

	_, err := db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// ClearTable removes all rows from the given log table.
// Used for replace-mode ingestion (the default, as opposed to --append).
func ClearTable(db DB, table string) error {
	if table != "nginx_logs" && table != "nexus_logs" {
		return fmt.Errorf("unknown table: %s", table)
	}
	if _, err := db.Exec("DELETE FROM " + table); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", table, err)
	}
	return nil
}

// ExecuteQuery executes a SQL query and returns results as a slice of maps.
// This generic approach allows for flexible query results without predefined
// structs. maxRows caps the result set regardless of what the query asks for.
func ExecuteQuery(db DB, query string, maxRows int) ([]map[string]interface{}, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	// Get column names
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var results []map[string]interface{}

	for rows.Next() {
		if maxRows > 0 && len(results) >= maxRows {
			break
		}

		// Create a slice of interfaces to hold row values
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		// Create map for this row, converting byte slices to strings
		row := make(map[string]interface{})
		for i, column := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[column] = val
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return results, nil
}
