package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/folio/blog/domain"
	"github.com/dfryer1193/folio/shared/db"
	"github.com/dfryer1193/folio/shared/db/sqlite"
)

var _ domain.LocalCache = (*SQLiteCache)(nil)

// Cache keys. The values are JSON documents.
const (
	KeyPosts     = "blogPosts"
	KeyLanguage  = "language"
	KeyAdminAuth = "adminAuth"
	KeySnapshot  = "blog-store"
)

// ErrSnapshotVersion is returned when the cached snapshot was written with a
// different post layout.
var ErrSnapshotVersion = errors.New("snapshot version mismatch")

// SQLiteCache implements domain.LocalCache on a SQLite key/value table
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewCache creates a new SQLiteCache from a standard sql.DB
func NewCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{
		db:  db,
		now: time.Now,
	}
}

const upsertEntryQuery = `
	INSERT INTO cache_entries (key, value, updated_at, scope)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at,
		scope = excluded.scope
`

const getEntryQuery = `
	SELECT value FROM cache_entries WHERE key = ?
`

const deleteEntryQuery = `
	DELETE FROM cache_entries WHERE key = ?
`

func (c *SQLiteCache) put(ctx context.Context, key, scope string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}

	executor := db.GetExecutor(ctx, c.db)
	if _, err := executor.ExecContext(ctx, upsertEntryQuery, key, string(raw), c.now().UTC(), scope); err != nil {
		return fmt.Errorf("failed to write cache entry %q: %w", key, err)
	}
	return nil
}

// get decodes the entry into v and reports whether it existed.
func (c *SQLiteCache) get(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	executor := db.GetExecutor(ctx, c.db)
	err := executor.QueryRowContext(ctx, getEntryQuery, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}
	return true, nil
}

func (c *SQLiteCache) remove(ctx context.Context, key string) error {
	executor := db.GetExecutor(ctx, c.db)
	if _, err := executor.ExecContext(ctx, deleteEntryQuery, key); err != nil {
		return fmt.Errorf("failed to delete cache entry %q: %w", key, err)
	}
	return nil
}

// LoadPosts returns the cached post collection, or nil when none is cached
func (c *SQLiteCache) LoadPosts(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	if _, err := c.get(ctx, KeyPosts, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SavePosts replaces the cached post collection
func (c *SQLiteCache) SavePosts(ctx context.Context, posts []*domain.Post) error {
	if posts == nil {
		posts = []*domain.Post{}
	}
	return c.put(ctx, KeyPosts, sqlite.ScopePersistent, posts)
}

// ClearPosts removes the cached post collection
func (c *SQLiteCache) ClearPosts(ctx context.Context) error {
	return c.remove(ctx, KeyPosts)
}

// LoadLanguage returns the saved language preference, defaulting to the primary language
func (c *SQLiteCache) LoadLanguage(ctx context.Context) (domain.Language, error) {
	var lang string
	found, err := c.get(ctx, KeyLanguage, &lang)
	if err != nil {
		return domain.PrimaryLanguage, err
	}
	if !found {
		return domain.PrimaryLanguage, nil
	}
	return domain.ParseLanguage(lang)
}

// SaveLanguage stores the language preference
func (c *SQLiteCache) SaveLanguage(ctx context.Context, lang domain.Language) error {
	return c.put(ctx, KeyLanguage, sqlite.ScopePersistent, lang)
}

// LoadSnapshot returns the saved store snapshot, or nil when none exists
func (c *SQLiteCache) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	found, err := c.get(ctx, KeySnapshot, &snap)
	if err != nil || !found {
		return nil, err
	}
	if snap.Version != domain.SnapshotVersion {
		return nil, fmt.Errorf("%w: cached %d, expected %d", ErrSnapshotVersion, snap.Version, domain.SnapshotVersion)
	}
	return &snap, nil
}

// SaveSnapshot stores the store snapshot stamped with the current version
func (c *SQLiteCache) SaveSnapshot(ctx context.Context, s *domain.Snapshot) error {
	if s == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	out := *s
	out.Version = domain.SnapshotVersion
	return c.put(ctx, KeySnapshot, sqlite.ScopePersistent, out)
}

// SetSessionFlag stores a boolean that is discarded on the next start.
// Clearing a flag removes the entry.
func (c *SQLiteCache) SetSessionFlag(ctx context.Context, key string, value bool) error {
	if !value {
		return c.remove(ctx, key)
	}
	return c.put(ctx, key, sqlite.ScopeSession, true)
}

// SessionFlag reads a session-scoped boolean; missing flags are false
func (c *SQLiteCache) SessionFlag(ctx context.Context, key string) (bool, error) {
	var v bool
	if _, err := c.get(ctx, key, &v); err != nil {
		return false, err
	}
	return v, nil
}

// CommitLanguageBatch writes the translated post collection and the new language
// in one transaction
func (c *SQLiteCache) CommitLanguageBatch(ctx context.Context, posts []*domain.Post, lang domain.Language) error {
	return db.RunInTransaction(ctx, c.db, func(txCtx context.Context) error {
		if err := c.SavePosts(txCtx, posts); err != nil {
			return err
		}
		return c.SaveLanguage(txCtx, lang)
	})
}
