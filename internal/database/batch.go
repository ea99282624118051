package database

import (
	"fmt"

	"github.com/hlgr360/logfile-mcp-server/internal/models"
)

// InsertNginxBatch bulk inserts nginx log entries inside a single
// transaction with a prepared statement. A failure rolls the whole batch
// back; the caller decides whether to continue with the next file.
func InsertNginxBatch(db DB, entries []models.NginxEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO nginx_logs (
		ip_address, remote_user, timestamp, method, path, http_version,
		status_code, response_size, referer, user_agent, raw_log, file_source
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, e := range entries {
		_, err := stmt.Exec(
			e.IPAddress, e.RemoteUser, e.Timestamp, e.Method, e.Path,
			e.HTTPVersion, e.StatusCode, e.ResponseSize, e.Referer,
			e.UserAgent, e.RawLog, e.FileSource,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert nginx entry: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit nginx batch: %w", err)
	}

	return inserted, nil
}

// InsertNexusBatch bulk inserts Nexus log entries inside a single
// transaction with a prepared statement.
func InsertNexusBatch(db DB, entries []models.NexusEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
	INSERT INTO nexus_logs (
		ip_address, remote_user, timestamp, method, path, http_version,
		status_code, response_size, request_size, processing_time_ms,
		user_agent, thread_info, raw_log, file_source
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, e := range entries {
		_, err := stmt.Exec(
			e.IPAddress, e.RemoteUser, e.Timestamp, e.Method, e.Path,
			e.HTTPVersion, e.StatusCode, e.ResponseSize, e.RequestSize,
			e.ProcessingTimeMS, e.UserAgent, e.ThreadInfo, e.RawLog, e.FileSource,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert nexus entry: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit nexus batch: %w", err)
	}

	return inserted, nil
}
