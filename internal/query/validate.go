// Package query provides the guarded read-only query service shared by the
// CLI, the web API and the MCP tools. All SQL from outside the process goes
// through the whitelist validator and the row-count ceiling here.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	commentRegex      = regexp.MustCompile(`--.*`)
	multiCommentRegex = regexp.MustCompile(`/\*.*?\*/`)
)

// allowedPrefixes are the read-only statement forms the service accepts
var allowedPrefixes = []string{
	"select",  // SELECT queries
	"with",    // Common Table Expressions (CTEs)
	"explain", // Query execution plans
}

// allowedPragmas are read-only PRAGMA statements useful for schema inspection
var allowedPragmas = []string{
	"pragma table_info(",
	"pragma index_list(",
	"pragma index_info(",
	"pragma foreign_key_list(",
	"pragma schema_version",
	"pragma user_version",
	"pragma database_list",
	"pragma compile_options",
}

// forbiddenKeywords indicate write operations anywhere in the statement,
// including subqueries
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "create", "alter",
	"truncate", "replace", "merge", "upsert",
	"attach", "detach", "vacuum", "reindex",
	"begin", "commit", "rollback", "savepoint",
}

// ValidateReadOnly ensures the SQL query is read-only and safe to execute.
// Prevents data modification, schema changes, and other potentially harmful
// operations before the statement ever reaches the database.
func ValidateReadOnly(query string) error {
	// Normalize query: strip comments, trim whitespace, lowercase
	normalized := strings.TrimSpace(strings.ToLower(query))
	normalized = commentRegex.ReplaceAllString(normalized, "")
	normalized = multiCommentRegex.ReplaceAllString(normalized, "")
	normalized = strings.TrimSpace(normalized)

	if normalized == "" {
		return fmt.Errorf("empty query")
	}

	// Check if query starts with an allowed operation
	allowed := false
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			allowed = true
			break
		}
	}

	// Allow specific PRAGMA queries that are read-only
	if strings.HasPrefix(normalized, "pragma") {
		pragmaAllowed := false
		for _, p := range allowedPragmas {
			if strings.HasPrefix(normalized, p) {
				pragmaAllowed = true
				break
			}
		}
		if !pragmaAllowed {
			return fmt.Errorf("PRAGMA statement not allowed, only read-only PRAGMA statements are permitted")
		}
		allowed = true
	}

	if !allowed {
		return fmt.Errorf("only read-only queries are allowed (SELECT, WITH, EXPLAIN, and read-only PRAGMA)")
	}

	// Check for forbidden keywords anywhere in the query, whole words only,
	// which also covers subqueries
	for _, keyword := range forbiddenKeywords {
		keywordRegex := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		if keywordRegex.MatchString(normalized) {
			return fmt.Errorf("forbidden keyword '%s' detected, only read-only operations are allowed", strings.ToUpper(keyword))
		}
	}

	// Reject semicolon-separated statement chains: one trailing semicolon is
	// fine, a second statement is not
	statements := strings.Split(normalized, ";")
	if len(statements) > 2 {
		return fmt.Errorf("multiple statements not allowed, please execute one query at a time")
	}
	if len(statements) == 2 && strings.TrimSpace(statements[1]) != "" {
		return fmt.Errorf("multiple statements not allowed, please execute one query at a time")
	}

	return nil
}
