package parser

import (
	"testing"
)

// TestNexusParserParse tests parsing of valid and malformed Nexus log lines
func TestNexusParserParse(t *testing.T) {
	p := NewNexusParser()

	tests := []struct {
		name       string
		line       string
		wantErr    bool
		wantMethod string
		wantStatus int
	}{
		{
			name:       "full line with user agent and thread info",
			line:       `10.0.0.5 - admin [12/Jun/2025:09:11:00 +0000] "GET /repository/maven-public/com/example/artifact/1.0/artifact-1.0.jar HTTP/1.1" 200 1234 5678 89 "Apache-Maven/3.9.6" [qtp123456789-42]`,
			wantMethod: "GET",
			wantStatus: 200,
		},
		{
			name:       "anonymous user with dash sizes",
			line:       `10.0.0.9 - - [12/Jun/2025:09:12:00 +0000] "HEAD /repository/npm-proxy/lodash HTTP/1.1" 404 - - 3`,
			wantMethod: "HEAD",
			wantStatus: 404,
		},
		{
			name:       "PUT deployment",
			line:       `172.16.0.2 - deployer [12/Jun/2025:10:00:00 +0000] "PUT /repository/maven-releases/com/example/app/2.0/app-2.0.jar HTTP/1.1" 201 0 1048576 1500 "maven-deploy" [qtp987-11]`,
			wantMethod: "PUT",
			wantStatus: 201,
		},
		{
			name:    "garbage line",
			line:    `completely unrelated text`,
			wantErr: true,
		},
		{
			name:    "missing request quotes",
			line:    `10.0.0.5 - - [12/Jun/2025:09:11:00 +0000] GET /path HTTP/1.1 200 1 1 1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := p.Parse(tt.line, 1, "nexus:request.log")

			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if entry.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", entry.Method, tt.wantMethod)
			}
			if entry.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", entry.StatusCode, tt.wantStatus)
			}
		})
	}
}

// TestNexusFieldExtraction verifies the size, timing and thread fields
func TestNexusFieldExtraction(t *testing.T) {
	p := NewNexusParser()

	line := `10.0.0.5 - admin [12/Jun/2025:09:11:00 +0000] "GET /repository/maven-public/a.jar HTTP/1.1" 200 1234 5678 89 "Apache-Maven/3.9.6" [qtp123456789-42]`
	entry, err := p.Parse(line, 1, "nexus:request.log")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if entry.RemoteUser == nil || *entry.RemoteUser != "admin" {
		t.Errorf("RemoteUser = %v, want admin", entry.RemoteUser)
	}
	if entry.ResponseSize == nil || *entry.ResponseSize != 1234 {
		t.Errorf("ResponseSize = %v, want 1234", entry.ResponseSize)
	}
	if entry.RequestSize == nil || *entry.RequestSize != 5678 {
		t.Errorf("RequestSize = %v, want 5678", entry.RequestSize)
	}
	if entry.ProcessingTimeMS == nil || *entry.ProcessingTimeMS != 89 {
		t.Errorf("ProcessingTimeMS = %v, want 89", entry.ProcessingTimeMS)
	}
	if entry.UserAgent == nil || *entry.UserAgent != "Apache-Maven/3.9.6" {
		t.Errorf("UserAgent = %v, want Apache-Maven/3.9.6", entry.UserAgent)
	}
	if entry.ThreadInfo == nil || *entry.ThreadInfo != "qtp123456789-42" {
		t.Errorf("ThreadInfo = %v, want qtp123456789-42", entry.ThreadInfo)
	}
}

// TestNexusDashFieldsAreNil verifies "-" size fields map to nil while the
// remote user keeps its dash placeholder
func TestNexusDashFieldsAreNil(t *testing.T) {
	p := NewNexusParser()

	line := `10.0.0.9 - - [12/Jun/2025:09:12:00 +0000] "HEAD /repository/npm-proxy/lodash HTTP/1.1" 404 - - 3`
	entry, err := p.Parse(line, 1, "nexus:request.log")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if entry.RemoteUser == nil || *entry.RemoteUser != "-" {
		t.Errorf("RemoteUser = %v, want -", entry.RemoteUser)
	}
	if entry.ResponseSize != nil {
		t.Errorf("ResponseSize = %v, want nil", *entry.ResponseSize)
	}
	if entry.RequestSize != nil {
		t.Errorf("RequestSize = %v, want nil", *entry.RequestSize)
	}
	if entry.ProcessingTimeMS == nil || *entry.ProcessingTimeMS != 3 {
		t.Errorf("ProcessingTimeMS = %v, want 3", entry.ProcessingTimeMS)
	}
	if entry.UserAgent != nil {
		t.Errorf("UserAgent = %v, want nil", *entry.UserAgent)
	}
	if entry.ThreadInfo != nil {
		t.Errorf("ThreadInfo = %v, want nil", *entry.ThreadInfo)
	}
}

// TestNexusTimestampFormats tests both supported timestamp styles
func TestNexusTimestampFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"apache style with zone", "12/Jun/2025:09:11:00 +0000", "2025-06-12 09:11:00", true},
		{"nexus style with millis and zone", "2025-05-29 12:34:56,123+0000", "2025-05-29 12:34:56", true},
		{"nexus style with positive zone", "2025-05-29 12:34:56+0200", "2025-05-29 12:34:56", true},
		{"nexus style with negative zone", "2025-05-29 12:34:56-0400", "2025-05-29 12:34:56", true},
		{"nexus style plain", "2025-05-29 12:34:56", "2025-05-29 12:34:56", true},
		{"unparseable", "yesterday at noon", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseNexusTimestamp(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseNexusTimestamp(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if got.Format("2006-01-02 15:04:05") != tt.want {
				t.Errorf("parseNexusTimestamp(%q) = %s, want %s", tt.input, got.Format("2006-01-02 15:04:05"), tt.want)
			}
		})
	}
}
