package sqlite

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/dfryer1193/folio/shared/db"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	// defaultPath is where the device-local cache lives when CACHE_DB_PATH is unset
	defaultPath = "./folio-cache.db"
)

type SQLiteConfig struct {
	Path string
}

// NewSQLiteConfig reads the cache location from CACHE_DB_PATH.
func NewSQLiteConfig() *SQLiteConfig {
	path := os.Getenv("CACHE_DB_PATH")
	if path == "" {
		path = defaultPath
	}

	return &SQLiteConfig{
		Path: path,
	}
}

var _ db.Database = (*SQLiteDB)(nil)

// SQLiteDB implements the db.Database interface for SQLite
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance. ":memory:" is accepted and
// pins the pool to a single connection so every query sees the same database.
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: cfg.Path,
	}
}

// Connect opens the database, applies pragmas, runs migrations and drops entries
// scoped to the previous session.
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return fmt.Errorf("database already connected")
	}

	conn, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if s.dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	res, err := conn.Exec(`DELETE FROM cache_entries WHERE scope = ?`, ScopeSession)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to purge session entries: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Debug().Int64("entries", n).Msg("Purged session-scoped cache entries")
	}

	s.db = conn
	return nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}
