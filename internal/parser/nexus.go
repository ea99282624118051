package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hlgr360/logfile-mcp-server/internal/models"
)

// nexusPattern matches the Apache-style Nexus request log format:
//
//	10.0.0.5 - admin [12/Jun/2025:09:11:00 +0000] "GET /repository/maven-public/... HTTP/1.1" 200 1234 5678 89 "Apache-Maven/3.9" [qtp123456789-42]
//
// Response size, request size and processing time follow the status code.
// User agent and the [qtp...] thread info are optional trailers.
var nexusPattern = regexp.MustCompile(
	`^(?P<ip>\S+) ` + // client IP address
		`- ` + // remote logname (always -)
		`(?P<user>\S+) ` + // remote user (or -)
		`\[(?P<timestamp>[^\]]+)\] ` + // timestamp in brackets
		`"(?P<method>\S+) ` + // HTTP method
		`(?P<path>\S+) ` + // request path
		`(?P<http_version>[^"]+)" ` + // HTTP version
		`(?P<status_code>\d+) ` + // status code
		`(?P<response_size>\d+|-) ` + // response size (or -)
		`(?P<request_size>\d+|-) ` + // request size (or -)
		`(?P<processing_time_ms>\d+|-)` + // processing time in ms
		`(?: "(?P<user_agent>[^"]*)")?` + // user agent (optional)
		`(?: ?\[(?P<thread_info>[^\]]+)\])?`) // thread info (optional)

// NexusParser parses Nexus repository request log lines into NexusEntry records
type NexusParser struct{}

// NewNexusParser creates a parser for the Nexus request log format
func NewNexusParser() *NexusParser {
	return &NexusParser{}
}

// Parse parses a single Nexus request log line. A line that does not match
// the grammar returns a *ParseError; Parse never panics on bad input.
func (p *NexusParser) Parse(line string, lineNo int, source string) (*models.NexusEntry, error) {
	match := nexusPattern.FindStringSubmatch(line)
	if match == nil {
		return nil, &ParseError{Source: source, Line: lineNo, Reason: "invalid Nexus log format"}
	}

	groups := submatchMap(nexusPattern, match)

	timestamp, ok := parseNexusTimestamp(groups["timestamp"])
	if !ok {
		return nil, &ParseError{Source: source, Line: lineNo, Reason: "invalid timestamp format"}
	}

	statusCode, err := strconv.Atoi(groups["status_code"])
	if err != nil {
		return nil, &ParseError{Source: source, Line: lineNo, Reason: "invalid status code: " + groups["status_code"]}
	}

	httpVersion := groups["http_version"]
	if httpVersion == "" {
		httpVersion = "HTTP/1.1"
	}

	// Unlike nginx, the dash placeholder is stored as-is so queries see
	// the same value the log line carried
	remoteUser := groups["user"]

	return &models.NexusEntry{
		IPAddress:        groups["ip"],
		RemoteUser:       &remoteUser,
		Timestamp:        timestamp,
		Method:           groups["method"],
		Path:             groups["path"],
		HTTPVersion:      httpVersion,
		StatusCode:       statusCode,
		ResponseSize:     parseSizeField(groups["response_size"]),
		RequestSize:      parseSizeField(groups["request_size"]),
		ProcessingTimeMS: parseSizeField(groups["processing_time_ms"]),
		UserAgent:        cleanOptionalField(groups["user_agent"]),
		ThreadInfo:       cleanOptionalField(groups["thread_info"]),
		RawLog:           line,
		FileSource:       source,
	}, nil
}

// parseNexusTimestamp handles the two timestamp styles seen in Nexus logs:
//   - Apache style: 12/Jun/2025:09:11:00 +0000
//   - Nexus style:  2025-05-29 12:34:56,123+0000
//
// Timezone offsets and millisecond fractions are dropped; timestamps are
// stored naive.
func parseNexusTimestamp(s string) (time.Time, bool) {
	// Apache-style: 12/Jun/2025:09:11:00 +0000
	if strings.Contains(s, "/") && strings.Contains(s, ":") {
		base := s
		if i := strings.IndexByte(s, ' '); i >= 0 {
			base = s[:i]
		}
		t, err := time.Parse("02/Jan/2006:15:04:05", base)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	// Nexus-style: 2025-05-29 12:34:56,123+0000 with optional millis/zone
	base := s
	if i := strings.IndexByte(base, ','); i >= 0 {
		base = base[:i]
	} else if i := strings.IndexByte(base, '+'); i >= 0 {
		base = base[:i]
	} else if strings.Count(base, "-") >= 3 {
		// Trailing negative timezone offset, e.g. 2025-05-29 12:34:56-0400
		base = base[:strings.LastIndexByte(base, '-')]
	}
	base = strings.TrimSpace(base)

	t, err := time.Parse("2006-01-02 15:04:05", base)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
