package database

import (
	"platconf/config"
	"strings"
	"testing"
)

func TestBuildSQLiteDSN_PragmaParams(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  5000,
		SQLiteJournalMode:    "WAL",
		SQLiteSynchronous:    "NORMAL",
		SQLiteForeignKeys:    true,
	}

	dsn := buildSQLiteDSN("test.db", cfg)
	if dsn == "test.db" {
		t.Fatalf("expected DSN to include pragma params, got %q", dsn)
	}
	if want := "_pragma=busy_timeout%285000%29"; !strings.Contains(dsn, want) {
		t.Fatalf("expected DSN to contain %q, got %q", want, dsn)
	}
	if want := "_pragma=journal_mode%28WAL%29"; !strings.Contains(dsn, want) {
		t.Fatalf("expected DSN to contain %q, got %q", want, dsn)
	}
	if want := "_pragma=synchronous%28NORMAL%29"; !strings.Contains(dsn, want) {
		t.Fatalf("expected DSN to contain %q, got %q", want, dsn)
	}
	if want := "_pragma=foreign_keys%281%29"; !strings.Contains(dsn, want) {
		t.Fatalf("expected DSN to contain %q, got %q", want, dsn)
	}
}

func TestBuildSQLiteDSN_PreservesExistingQuery(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteForeignKeys:    true,
	}
	dsn := buildSQLiteDSN("test.db?cache=shared", cfg)
	if !strings.Contains(dsn, "cache=shared") {
		t.Fatalf("expected existing query to be preserved, got %q", dsn)
	}
	if !strings.Contains(dsn, "_pragma=") {
		t.Fatalf("expected pragma params, got %q", dsn)
	}
}

func TestBuildSQLiteDSN_PragmasDisabled(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: false,
	}
	if dsn := buildSQLiteDSN("test.db", cfg); dsn != "test.db" {
		t.Fatalf("expected bare DSN, got %q", dsn)
	}
}

func TestSanitizeSQLitePoolConfig(t *testing.T) {
	tests := []struct {
		in   sqlitePoolConfig
		want sqlitePoolConfig
	}{
		{sqlitePoolConfig{0, 5, -1, -1}, sqlitePoolConfig{1, 1, 0, 0}},
		{sqlitePoolConfig{4, 8, 30, 60}, sqlitePoolConfig{4, 4, 30, 60}},
		{sqlitePoolConfig{2, -3, 10, 0}, sqlitePoolConfig{2, 0, 10, 0}},
		{sqlitePoolConfig{1, 1, 300, 0}, sqlitePoolConfig{1, 1, 300, 0}},
	}

	for _, tt := range tests {
		if got := sanitizeSQLitePoolConfig(tt.in); got != tt.want {
			t.Fatalf("sanitizeSQLitePoolConfig(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
