package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

var errAbort = errors.New("abort batch")

// setupTestDB opens a single-connection in-memory database with a key/value table
// seeded with a cached post list and the active language.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	stmts := []string{
		`CREATE TABLE entries (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
		`INSERT INTO entries (key, value) VALUES ('blogPosts', '["en"]'), ('language', 'en')`,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("failed to prepare test table: %v", err)
		}
	}
	return conn
}

func put(ctx context.Context, conn *sql.DB, key, value string) error {
	_, err := GetExecutor(ctx, conn).ExecContext(ctx,
		`INSERT INTO entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func read(t *testing.T, conn *sql.DB, key string) string {
	t.Helper()
	var v string
	if err := conn.QueryRow(`SELECT value FROM entries WHERE key = ?`, key).Scan(&v); err != nil {
		t.Fatalf("failed to read %s: %v", key, err)
	}
	return v
}

// languageBatch writes both keys the way the cache commits a language switch, with
// the language written from a nested call.
func languageBatch(conn *sql.DB, posts, lang string, failAfterPosts, failInNested bool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := put(ctx, conn, "blogPosts", posts); err != nil {
			return err
		}
		if failAfterPosts {
			return errAbort
		}
		return RunInTransaction(ctx, conn, func(inner context.Context) error {
			if err := put(inner, conn, "language", lang); err != nil {
				return err
			}
			if failInNested {
				return errAbort
			}
			return nil
		})
	}
}

func TestRunInTransaction_LanguageBatch(t *testing.T) {
	tests := []struct {
		name           string
		failAfterPosts bool
		failInNested   bool
		wantErr        error
		wantPosts      string
		wantLanguage   string
	}{
		{
			name:         "Commits both keys",
			wantPosts:    `["jp"]`,
			wantLanguage: "jp",
		},
		{
			name:           "Failure after the posts keeps both keys",
			failAfterPosts: true,
			wantErr:        errAbort,
			wantPosts:      `["en"]`,
			wantLanguage:   "en",
		},
		{
			name:         "Failure in the nested write keeps both keys",
			failInNested: true,
			wantErr:      errAbort,
			wantPosts:    `["en"]`,
			wantLanguage: "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := setupTestDB(t)

			err := RunInTransaction(context.Background(), conn,
				languageBatch(conn, `["jp"]`, "jp", tt.failAfterPosts, tt.failInNested))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			if got := read(t, conn, "blogPosts"); got != tt.wantPosts {
				t.Errorf("blogPosts = %s, want %s", got, tt.wantPosts)
			}
			if got := read(t, conn, "language"); got != tt.wantLanguage {
				t.Errorf("language = %s, want %s", got, tt.wantLanguage)
			}
		})
	}
}

func TestRunInTransaction_NestedCallReusesTx(t *testing.T) {
	conn := setupTestDB(t)

	err := RunInTransaction(context.Background(), conn, func(outer context.Context) error {
		outerTx, ok := GetTx(outer)
		if !ok {
			t.Fatal("no transaction in context")
		}
		return RunInTransaction(outer, conn, func(inner context.Context) error {
			if innerTx, _ := GetTx(inner); innerTx != outerTx {
				t.Error("nested call started a second transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}
}

func TestGetExecutor(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()

	if GetExecutor(ctx, conn) != conn {
		t.Error("executor without a transaction is not the connection")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if GetExecutor(WithTx(ctx, tx), conn) != tx {
		t.Error("executor inside a transaction is not the transaction")
	}
}
