package query

import (
	"testing"
)

// TestValidateReadOnly tests the statement whitelist with allowed and
// forbidden query forms
func TestValidateReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		// Allowed read-only forms
		{"simple select", "SELECT * FROM nginx_logs", false},
		{"select with where", "SELECT COUNT(*) FROM nexus_logs WHERE status_code = 404", false},
		{"cte", "WITH recent AS (SELECT * FROM nginx_logs LIMIT 10) SELECT * FROM recent", false},
		{"explain", "EXPLAIN QUERY PLAN SELECT * FROM nginx_logs", false},
		{"read-only pragma", "PRAGMA table_info(nginx_logs)", false},
		{"trailing semicolon", "SELECT 1;", false},
		{"mixed case", "SeLeCt * FrOm nginx_logs", false},
		{"leading comment", "-- just counting\nSELECT COUNT(*) FROM nginx_logs", false},

		// Forbidden forms
		{"empty query", "", true},
		{"whitespace only", "   \n\t  ", true},
		{"comment only", "-- nothing here", true},
		{"insert", "INSERT INTO nginx_logs (path) VALUES ('/')", true},
		{"update", "UPDATE nginx_logs SET path = '/'", true},
		{"delete", "DELETE FROM nginx_logs", true},
		{"drop", "DROP TABLE nginx_logs", true},
		{"create", "CREATE TABLE evil (id INTEGER)", true},
		{"attach", "ATTACH DATABASE '/tmp/x.db' AS x", true},
		{"vacuum", "VACUUM", true},
		{"write pragma", "PRAGMA journal_mode = DELETE", true},
		{"forbidden keyword in subquery", "SELECT * FROM (DELETE FROM nginx_logs)", true},
		{"stacked statements", "SELECT 1; DROP TABLE nginx_logs", true},
		{"two selects", "SELECT 1; SELECT 2", true},
		{"comment-hidden write", "SELECT 1 /* harmless */; DELETE FROM nginx_logs", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReadOnly(tt.query)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReadOnly(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
		})
	}
}

// TestValidateReadOnlyKeywordBoundaries ensures column names containing
// forbidden keywords as substrings are not rejected
func TestValidateReadOnlyKeywordBoundaries(t *testing.T) {
	// "created_at" contains neither "create" nor "delete" as a whole word
	if err := ValidateReadOnly("SELECT created_at FROM nginx_logs"); err != nil {
		t.Errorf("ValidateReadOnly() rejected column containing keyword substring: %v", err)
	}
}
