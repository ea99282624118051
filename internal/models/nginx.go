// Package models defines the data structures used throughout the application
package models

import (
	"fmt"
	"time"
)

// NginxEntry represents a single parsed line from an nginx access log.
// Optional fields (logged as "-") are pointers so they map to SQL NULL.
type NginxEntry struct {
	ID           int64     `db:"id" json:"id"`
	IPAddress    string    `db:"ip_address" json:"ip_address"`
	RemoteUser   *string   `db:"remote_user" json:"remote_user"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
	Method       string    `db:"method" json:"method"`
	Path         string    `db:"path" json:"path"`
	HTTPVersion  string    `db:"http_version" json:"http_version"`
	StatusCode   int       `db:"status_code" json:"status_code"`
	ResponseSize *int64    `db:"response_size" json:"response_size"`
	Referer      *string   `db:"referer" json:"referer"`
	UserAgent    string    `db:"user_agent" json:"user_agent"`
	RawLog       string    `db:"raw_log" json:"raw_log"`
	FileSource   string    `db:"file_source" json:"file_source"`
}

// String returns a human-readable representation of the nginx entry
func (e NginxEntry) String() string {
	return fmt.Sprintf("%s %s \"%s %s\" %d",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		e.IPAddress,
		e.Method,
		e.Path,
		e.StatusCode)
}
