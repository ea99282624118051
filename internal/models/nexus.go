package models

import (
	"fmt"
	"time"
)

// NexusEntry represents a single parsed line from a Nexus repository
// request log. The format carries both response and request sizes plus the
// server-side processing time, none of which appear in nginx logs.
type NexusEntry struct {
	ID               int64     `db:"id" json:"id"`
	IPAddress        string    `db:"ip_address" json:"ip_address"`
	RemoteUser       *string   `db:"remote_user" json:"remote_user"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
	Method           string    `db:"method" json:"method"`
	Path             string    `db:"path" json:"path"`
	HTTPVersion      string    `db:"http_version" json:"http_version"`
	StatusCode       int       `db:"status_code" json:"status_code"`
	ResponseSize     *int64    `db:"response_size" json:"response_size"`
	RequestSize      *int64    `db:"request_size" json:"request_size"`
	ProcessingTimeMS *int64    `db:"processing_time_ms" json:"processing_time_ms"`
	UserAgent        *string   `db:"user_agent" json:"user_agent"`
	ThreadInfo       *string   `db:"thread_info" json:"thread_info"`
	RawLog           string    `db:"raw_log" json:"raw_log"`
	FileSource       string    `db:"file_source" json:"file_source"`
}

// String returns a human-readable representation of the Nexus entry
func (e NexusEntry) String() string {
	return fmt.Sprintf("%s %s \"%s %s\" %d",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		e.IPAddress,
		e.Method,
		e.Path,
		e.StatusCode)
}
