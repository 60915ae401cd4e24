package sqlite

import (
	"path/filepath"
	"testing"
)

func TestRunMigrations(t *testing.T) {
	cfg := &SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}

	database := NewSQLiteDB(cfg)
	err := database.Connect()
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()

	db := database.DB()

	tests := []struct {
		kind string
		name string
	}{
		{kind: "table", name: "schema_migrations"},
		{kind: "table", name: "cache_entries"},
		{kind: "index", name: "idx_cache_entries_scope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var count int
			err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", tt.kind, tt.name).Scan(&count)
			if err != nil {
				t.Fatalf("Failed to check %s %s: %v", tt.kind, tt.name, err)
			}
			if count != 1 {
				t.Errorf("%s %s not created", tt.kind, tt.name)
			}
		})
	}

	var maxVersion int
	err = db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&maxVersion)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if maxVersion != len(migrations) {
		t.Errorf("max version = %d, want %d", maxVersion, len(migrations))
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	cfg := &SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}

	database := NewSQLiteDB(cfg)
	if err := database.Connect(); err != nil {
		t.Fatalf("First Connect() error = %v", err)
	}
	database.Close()

	database = NewSQLiteDB(cfg)
	if err := database.Connect(); err != nil {
		t.Fatalf("Second Connect() error = %v", err)
	}
	defer database.Close()

	var count int
	err := database.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("migrations recorded %d times, want %d", count, len(migrations))
	}
}

func TestCacheEntriesDefaultScope(t *testing.T) {
	database := NewSQLiteDB(&SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()

	db := database.DB()

	_, err := db.Exec(`INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, "blogPosts", "[]")
	if err != nil {
		t.Fatalf("Failed to insert entry: %v", err)
	}

	var scope string
	if err := db.QueryRow("SELECT scope FROM cache_entries WHERE key = ?", "blogPosts").Scan(&scope); err != nil {
		t.Fatalf("Failed to query entry: %v", err)
	}
	if scope != ScopePersistent {
		t.Errorf("scope = %q, want %q", scope, ScopePersistent)
	}
}
