// Package parser provides line-level parsing for the two supported log
// formats: nginx access logs and Nexus repository request logs.
//
// Parsers never panic on malformed input. A line that does not match the
// format grammar produces a *ParseError so callers can count and report
// failures while continuing with the rest of the file.
package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError describes a single line that could not be parsed.
// It is a signal, not a fatal condition: ingestion counts these and moves on.
type ParseError struct {
	Source string // file or lineage description, e.g. "nginx:backup.zip→access.log"
	Line   int    // 1-based line number within the source
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s:%d: %s", e.Source, e.Line, e.Reason)
}

// parseSizeField converts a numeric log field to an int64 pointer.
// The "-" marker (no value) and unparseable values map to nil.
func parseSizeField(s string) *int64 {
	if s == "" || s == "-" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// cleanOptionalField maps the "-" placeholder to nil, anything else to itself
func cleanOptionalField(s string) *string {
	if s == "-" || s == "" {
		return nil
	}
	return &s
}

// truncateRequest shortens an over-long malformed request string so that
// garbage input cannot bloat the path column.
func truncateRequest(s string) string {
	const maxLen = 50
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

// isPrintableASCII reports whether the string contains only printable
// ASCII characters. Binary probes against the server fail this check.
func isPrintableASCII(s string) bool {
	for _, c := range s {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}

// classifyRequest parses the quoted request field of an access log line into
// method, path and HTTP version. Real HTTP requests split cleanly; everything
// else (SSH probes, JSON-RPC payloads, binary noise) is classified so the
// line is still stored rather than dropped.
func classifyRequest(request string) (method, path, version string) {
	parts := strings.SplitN(request, " ", 3)
	if len(parts) == 3 && strings.HasPrefix(parts[2], "HTTP/") {
		return parts[0], parts[1], parts[2]
	}

	switch {
	case strings.HasPrefix(request, "SSH-"):
		return "SSH-ATTEMPT", request, "NON-HTTP"
	case strings.HasPrefix(request, "{") || strings.Contains(request, "method"):
		return "JSON-RPC", truncateRequest(request), "NON-HTTP"
	case !isPrintableASCII(request):
		return "BINARY-DATA", "[BINARY]", "NON-HTTP"
	default:
		return "MALFORMED", truncateRequest(request), "NON-HTTP"
	}
}
