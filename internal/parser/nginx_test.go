package parser

import (
	"errors"
	"testing"
)

// TestNginxParserParse tests parsing of valid and malformed nginx log lines
func TestNginxParserParse(t *testing.T) {
	p := NewNginxParser()

	tests := []struct {
		name       string
		line       string
		wantErr    bool
		wantMethod string
		wantPath   string
		wantStatus int
	}{
		{
			name:       "valid GET request",
			line:       `127.0.0.1 - - [29/May/2025:00:00:09 -0400] "GET /api/test HTTP/1.1" 200 1234 "-" "Mozilla/5.0"`,
			wantMethod: "GET",
			wantPath:   "/api/test",
			wantStatus: 200,
		},
		{
			name:       "valid POST with referer and user",
			line:       `10.1.2.3 - alice [29/May/2025:10:15:00 +0000] "POST /upload HTTP/1.1" 201 512 "https://example.com/" "curl/8.0"`,
			wantMethod: "POST",
			wantPath:   "/upload",
			wantStatus: 201,
		},
		{
			name:       "SSH probe in request field",
			line:       `192.168.1.50 - - [29/May/2025:03:12:44 -0400] "SSH-2.0-OpenSSH_8.9" 400 0 "-" "-"`,
			wantMethod: "SSH-ATTEMPT",
			wantPath:   "SSH-2.0-OpenSSH_8.9",
			wantStatus: 400,
		},
		{
			name:       "malformed request without HTTP version",
			line:       `192.168.1.51 - - [29/May/2025:03:13:00 -0400] "GET /index.html" 400 0 "-" "-"`,
			wantMethod: "MALFORMED",
			wantPath:   "GET /index.html",
			wantStatus: 400,
		},
		{
			name:    "garbage line",
			line:    `this is not an nginx log line`,
			wantErr: true,
		},
		{
			name:    "bad timestamp",
			line:    `127.0.0.1 - - [not-a-timestamp] "GET / HTTP/1.1" 200 10 "-" "-"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := p.Parse(tt.line, 1, "nginx:access.log")

			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Errorf("Parse() error type = %T, want *ParseError", err)
				}
				return
			}

			if entry.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", entry.Method, tt.wantMethod)
			}
			if entry.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", entry.Path, tt.wantPath)
			}
			if entry.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", entry.StatusCode, tt.wantStatus)
			}
			if entry.RawLog != tt.line {
				t.Errorf("RawLog not preserved")
			}
			if entry.FileSource != "nginx:access.log" {
				t.Errorf("FileSource = %q, want %q", entry.FileSource, "nginx:access.log")
			}
		})
	}
}

// TestNginxOptionalFields verifies that "-" fields become nil (SQL NULL)
func TestNginxOptionalFields(t *testing.T) {
	p := NewNginxParser()

	line := `127.0.0.1 - - [29/May/2025:00:00:09 -0400] "GET / HTTP/1.1" 200 - "-" "Mozilla/5.0"`
	entry, err := p.Parse(line, 1, "nginx:access.log")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if entry.RemoteUser != nil {
		t.Errorf("RemoteUser = %v, want nil", *entry.RemoteUser)
	}
	if entry.ResponseSize != nil {
		t.Errorf("ResponseSize = %v, want nil", *entry.ResponseSize)
	}
	if entry.Referer != nil {
		t.Errorf("Referer = %v, want nil", *entry.Referer)
	}
}

// TestNginxTimestampParsing verifies the nginx timestamp format handling
func TestNginxTimestampParsing(t *testing.T) {
	p := NewNginxParser()

	line := `127.0.0.1 - - [29/May/2025:13:45:30 -0400] "GET / HTTP/1.1" 200 10 "-" "-"`
	entry, err := p.Parse(line, 1, "nginx:access.log")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	got := entry.Timestamp.Format("2006-01-02 15:04:05")
	want := "2025-05-29 13:45:30"
	if got != want {
		t.Errorf("Timestamp = %s, want %s (timezone should be dropped)", got, want)
	}
}

// TestClassifyRequest tests request field classification for malformed input
func TestClassifyRequest(t *testing.T) {
	tests := []struct {
		name        string
		request     string
		wantMethod  string
		wantVersion string
	}{
		{"standard HTTP", "GET /path HTTP/1.1", "GET", "HTTP/1.1"},
		{"SSH banner", "SSH-2.0-libssh", "SSH-ATTEMPT", "NON-HTTP"},
		{"JSON-RPC payload", `{"jsonrpc":"2.0","method":"eth_blockNumber"}`, "JSON-RPC", "NON-HTTP"},
		{"binary data", "GET \x01\x02\x03", "BINARY-DATA", "NON-HTTP"},
		{"plain garbage", "OPTIONS * extra words here", "MALFORMED", "NON-HTTP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, _, version := classifyRequest(tt.request)
			if method != tt.wantMethod {
				t.Errorf("method = %q, want %q", method, tt.wantMethod)
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
		})
	}
}

// TestTruncateRequest verifies over-long malformed requests are shortened
func TestTruncateRequest(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}

	got := truncateRequest(string(long))
	if len(got) != 53 { // 50 chars + "..."
		t.Errorf("truncateRequest() length = %d, want 53", len(got))
	}
}
