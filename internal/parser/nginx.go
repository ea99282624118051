package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hlgr360/logfile-mcp-server/internal/models"
)

// nginxPattern matches the nginx combined log format:
//
//	127.0.0.1 - - [29/May/2025:00:00:09 -0400] "GET /api/test HTTP/1.1" 200 1234 "-" "Mozilla/5.0"
//
// The request field is captured whole ([^"]*) rather than as method/path/version
// so that malformed requests (SSH banners, binary data) still match the line.
var nginxPattern = regexp.MustCompile(
	`^(?P<ip>\S+) ` + // client IP address
		`(?P<remote_user>\S+) ` + // remote logname (usually -)
		`(?P<auth_user>\S+) ` + // authenticated user (usually -)
		`\[(?P<timestamp>[^\]]+)\] ` + // timestamp in brackets
		`"(?P<request>[^"]*)" ` + // full request, possibly malformed
		`(?P<status_code>\d+) ` + // HTTP status code
		`(?P<response_size>\S+) ` + // response size, - if none
		`"(?P<referer>[^"]*)" ` + // referer
		`"(?P<user_agent>[^"]*)"`) // user agent

// NginxParser parses nginx access log lines into NginxEntry records
type NginxParser struct{}

// NewNginxParser creates a parser for the nginx combined log format
func NewNginxParser() *NginxParser {
	return &NginxParser{}
}

// Parse parses a single nginx log line. A line that does not match the
// grammar returns a *ParseError; Parse never panics on bad input.
func (p *NginxParser) Parse(line string, lineNo int, source string) (*models.NginxEntry, error) {
	match := nginxPattern.FindStringSubmatch(line)
	if match == nil {
		return nil, &ParseError{Source: source, Line: lineNo, Reason: "invalid nginx log format"}
	}

	groups := submatchMap(nginxPattern, match)

	timestamp, ok := parseNginxTimestamp(groups["timestamp"])
	if !ok {
		return nil, &ParseError{Source: source, Line: lineNo, Reason: "invalid timestamp format"}
	}

	statusCode, err := strconv.Atoi(groups["status_code"])
	if err != nil {
		return nil, &ParseError{Source: source, Line: lineNo, Reason: "invalid status code: " + groups["status_code"]}
	}

	method, path, version := classifyRequest(groups["request"])

	return &models.NginxEntry{
		IPAddress:    groups["ip"],
		RemoteUser:   cleanOptionalField(groups["remote_user"]),
		Timestamp:    timestamp,
		Method:       method,
		Path:         path,
		HTTPVersion:  version,
		StatusCode:   statusCode,
		ResponseSize: parseSizeField(groups["response_size"]),
		Referer:      cleanOptionalField(groups["referer"]),
		UserAgent:    groups["user_agent"],
		RawLog:       line,
		FileSource:   source,
	}, nil
}

// parseNginxTimestamp parses the nginx timestamp format 29/May/2025:00:00:09 -0400.
// The timezone offset is dropped; timestamps are stored naive.
func parseNginxTimestamp(s string) (time.Time, bool) {
	datePart := s
	if i := strings.IndexByte(s, ' '); i >= 0 {
		datePart = s[:i]
	}
	t, err := time.Parse("02/Jan/2006:15:04:05", datePart)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// submatchMap builds a name -> captured value map for a regex match
func submatchMap(re *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}
