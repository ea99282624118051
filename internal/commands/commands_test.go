package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hlgr360/logfile-mcp-server/internal/config"
	"github.com/hlgr360/logfile-mcp-server/internal/database"
)

const nginxLine = `127.0.0.1 - - [29/May/2025:00:00:09 -0400] "GET /api/test HTTP/1.1" 200 1234 "-" "Mozilla/5.0"`

// writeNginxDir creates a log directory with one access log of n lines
func writeNginxDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	content := strings.Repeat(nginxLine+"\n", n)
	if err := os.WriteFile(filepath.Join(dir, "access.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write log file: %v", err)
	}
	return dir
}

// countRows returns the row count of a table in the given database file
func countRows(t *testing.T, dbFile, table string) int64 {
	t.Helper()
	db, err := database.Initialize(dbFile)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	rows, err := database.ExecuteQuery(db, "SELECT COUNT(*) AS n FROM "+table, 10)
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	n, ok := rows[0]["n"].(int64)
	if !ok {
		t.Fatalf("unexpected count type %T", rows[0]["n"])
	}
	return n
}

func TestResolveConfigFlagOverride(t *testing.T) {
	cfg, err := resolveConfig("", func(c *config.Config) {
		c.DBPath = "override.db"
		c.WebPort = 9100
	})
	if err != nil {
		t.Fatalf("resolveConfig failed: %v", err)
	}
	if cfg.DBPath != "override.db" {
		t.Errorf("expected DBPath override.db, got %s", cfg.DBPath)
	}
	if cfg.WebPort != 9100 {
		t.Errorf("expected WebPort 9100, got %d", cfg.WebPort)
	}
}

func TestResolveConfigRejectsInvalidOverride(t *testing.T) {
	_, err := resolveConfig("", func(c *config.Config) {
		c.WebPort = 80 // below the allowed range
	})
	if err == nil {
		t.Fatal("expected validation error for privileged port")
	}
}

func TestProcessCommand(t *testing.T) {
	nginxDir := writeNginxDir(t, 7)
	dbFile := filepath.Join(t.TempDir(), "logs.db")

	cmd := NewProcessCommand()
	cmd.SetArgs([]string{"--nginx-dir", nginxDir, "--db", dbFile})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("process command failed: %v", err)
	}

	if got := countRows(t, dbFile, "nginx_logs"); got != 7 {
		t.Errorf("expected 7 rows, got %d", got)
	}
}

func TestProcessCommandAppend(t *testing.T) {
	nginxDir := writeNginxDir(t, 4)
	dbFile := filepath.Join(t.TempDir(), "logs.db")

	run := func(extra ...string) {
		t.Helper()
		cmd := NewProcessCommand()
		cmd.SetArgs(append([]string{"--nginx-dir", nginxDir, "--db", dbFile}, extra...))
		if err := cmd.Execute(); err != nil {
			t.Fatalf("process command failed: %v", err)
		}
	}

	run()
	run("--append")
	if got := countRows(t, dbFile, "nginx_logs"); got != 8 {
		t.Errorf("expected 8 rows after append, got %d", got)
	}

	// Without --append the second run replaces the data
	run()
	if got := countRows(t, dbFile, "nginx_logs"); got != 4 {
		t.Errorf("expected 4 rows after replace, got %d", got)
	}
}

func TestProcessCommandRequiresDirectories(t *testing.T) {
	cmd := NewProcessCommand()
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "logs.db")})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when no log directories are configured")
	}
}

func TestQueryCommandMissingDatabase(t *testing.T) {
	err := runQueryCommand("", filepath.Join(t.TempDir(), "missing.db"), "SELECT 1", 0)
	if err == nil {
		t.Fatal("expected error for missing database file")
	}
	if !strings.Contains(err.Error(), "process") {
		t.Errorf("error should point at the process command, got: %v", err)
	}
}

func TestExecuteSingleQuery(t *testing.T) {
	nginxDir := writeNginxDir(t, 3)
	dbFile := filepath.Join(t.TempDir(), "logs.db")

	cmd := NewProcessCommand()
	cmd.SetArgs([]string{"--nginx-dir", nginxDir, "--db", dbFile})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("process command failed: %v", err)
	}

	cfg := config.Default()
	cfg.DBPath = dbFile
	db, svc, err := openQueryService(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("openQueryService failed: %v", err)
	}
	defer db.Close()

	if err := executeSingleQuery(svc, "SELECT COUNT(*) FROM nginx_logs", 0); err != nil {
		t.Errorf("single query failed: %v", err)
	}
	if err := executeSingleQuery(svc, "DROP TABLE nginx_logs", 0); err == nil {
		t.Error("expected write statement to be rejected")
	}
}

func TestServeCommandMissingDatabase(t *testing.T) {
	err := runServeCommand("", filepath.Join(t.TempDir(), "missing.db"), 0)
	if err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestMCPCommandMissingDatabase(t *testing.T) {
	err := runMCPCommand("", filepath.Join(t.TempDir(), "missing.db"))
	if err == nil {
		t.Fatal("expected error for missing database file")
	}
}
