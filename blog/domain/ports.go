package domain

import (
	"context"
	"time"
)

// RemotePostStore is the remote document collection holding one record per post.
type RemotePostStore interface {
	// FindAll returns every post ordered by PublishedAt descending.
	FindAll(ctx context.Context) ([]*Post, error)
	// FindPublished returns published posts ordered by PublishedAt descending.
	FindPublished(ctx context.Context) ([]*Post, error)
	// FindByID returns nil without an error when the id does not exist.
	FindByID(ctx context.Context, id string) (*Post, error)
	// Insert stores p and returns the identifier assigned by the store.
	Insert(ctx context.Context, p *Post) (string, error)
	// Update merges patch into the record and sets its updated time.
	// Returns ErrNotFound when the id does not exist.
	Update(ctx context.Context, id string, patch PostPatch, updatedAt time.Time) error
	// Delete returns ErrNotFound when the id does not exist.
	Delete(ctx context.Context, id string) error
}

// LocalCache is the device-local key/value store shared by the content store and the
// persistence gateway. Both sides use the same serialized Post representation.
type LocalCache interface {
	// LoadPosts returns nil without an error when nothing is cached.
	LoadPosts(ctx context.Context) ([]*Post, error)
	SavePosts(ctx context.Context, posts []*Post) error
	ClearPosts(ctx context.Context) error

	LoadLanguage(ctx context.Context) (Language, error)
	SaveLanguage(ctx context.Context, lang Language) error

	// LoadSnapshot returns nil without an error when no snapshot exists.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, s *Snapshot) error

	SetSessionFlag(ctx context.Context, key string, value bool) error
	SessionFlag(ctx context.Context, key string) (bool, error)

	// CommitLanguageBatch writes the post list and the active language together.
	CommitLanguageBatch(ctx context.Context, posts []*Post, lang Language) error
}

// Snapshot is the subset of store state kept across sessions.
type Snapshot struct {
	Version       int      `json:"version"`
	Posts         []*Post  `json:"posts"`
	Bookmarks     []string `json:"bookmarks"`
	Theme         Theme    `json:"theme"`
	SearchHistory []string `json:"searchHistory"`
}

// SnapshotVersion is bumped whenever the cached Post layout changes.
const SnapshotVersion = 1

// Translator turns text into the target language.
type Translator interface {
	Translate(ctx context.Context, text string, target Language) (string, error)
}

// PostGateway bridges the domain model to remote persistence with local fallback.
type PostGateway interface {
	FetchAll(ctx context.Context) ([]*Post, error)
	FetchPublished(ctx context.Context) ([]*Post, error)
	FetchOne(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, p *Post) (string, error)
	Update(ctx context.Context, id string, patch PostPatch) error
	Delete(ctx context.Context, id string) error
	Migrate(ctx context.Context) (int, error)
}
