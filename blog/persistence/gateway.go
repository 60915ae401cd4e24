package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/folio/blog/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var _ domain.PostGateway = (*Gateway)(nil)

// Gateway implements domain.PostGateway. Reads and writes go to the remote store;
// when it is unconfigured or failing, the local cache stands in as described on
// each method.
type Gateway struct {
	remote domain.RemotePostStore
	cache  domain.LocalCache
	now    func() time.Time
	newID  func() string
}

// GatewayOption customises a Gateway
type GatewayOption func(*Gateway)

// WithClock overrides the time source used for updatedAt
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// WithIDGenerator overrides the generator used for locally created posts
func WithIDGenerator(newID func() string) GatewayOption {
	return func(g *Gateway) { g.newID = newID }
}

// NewGateway creates a gateway. A nil remote means the remote backend is not
// configured.
func NewGateway(remote domain.RemotePostStore, cache domain.LocalCache, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		remote: remote,
		cache:  cache,
		now:    time.Now,
		newID:  newLocalID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// newLocalID returns a time-ordered UUIDv7 so rapid successive creates never collide
func newLocalID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RemoteEnabled reports whether a remote backend is configured
func (g *Gateway) RemoteEnabled() bool {
	return g.remote != nil
}

func unavailable(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w: remote store not configured", op, domain.ErrBackendUnavailable)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, err)
}

// FetchAll returns all posts ordered by publishedAt descending.
// Callers fall back to the local cache on ErrBackendUnavailable.
func (g *Gateway) FetchAll(ctx context.Context) ([]*domain.Post, error) {
	if g.remote == nil {
		return nil, unavailable("fetch all posts", nil)
	}

	posts, err := g.remote.FindAll(ctx)
	if err != nil {
		return nil, unavailable("fetch all posts", err)
	}

	log.Debug().Int("count", len(posts)).Msg("Fetched posts from remote store")
	return posts, nil
}

// FetchPublished returns published posts ordered by publishedAt descending
func (g *Gateway) FetchPublished(ctx context.Context) ([]*domain.Post, error) {
	if g.remote == nil {
		return nil, unavailable("fetch published posts", nil)
	}

	posts, err := g.remote.FindPublished(ctx)
	if err != nil {
		return nil, unavailable("fetch published posts", err)
	}
	return posts, nil
}

// FetchOne returns nil without an error when the id does not exist. Without a
// remote backend the local cache is searched.
func (g *Gateway) FetchOne(ctx context.Context, id string) (*domain.Post, error) {
	if id == "" {
		return nil, nil
	}

	if g.remote == nil {
		posts, err := g.cache.LoadPosts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read local posts: %w", err)
		}
		if i := indexOf(posts, id); i >= 0 {
			return posts[i], nil
		}
		return nil, nil
	}

	post, err := g.remote.FindByID(ctx, id)
	if err != nil {
		return nil, unavailable("fetch post", err)
	}
	return post, nil
}

// Create stores a new post and returns its identifier. If the remote write fails,
// or no remote is configured, the post is prepended to the local cache under a
// generated identifier instead. The remote write is not retried.
func (g *Gateway) Create(ctx context.Context, p *domain.Post) (string, error) {
	if p == nil {
		return "", fmt.Errorf("post cannot be nil")
	}

	post := p.Clone()
	post.ID = ""

	var remoteErr error
	if g.remote != nil {
		id, err := g.remote.Insert(ctx, post)
		if err == nil {
			log.Info().Str("postID", id).Str("title", post.Primary.Title).Msg("Created post in remote store")
			return id, nil
		}
		remoteErr = err
	}

	log.Warn().Err(remoteErr).Str("title", post.Primary.Title).Msg("Remote create unavailable, writing post to local cache")

	post.ID = g.newID()
	posts, err := g.cache.LoadPosts(ctx)
	if err != nil {
		return "", errors.Join(unavailable("create post", remoteErr), fmt.Errorf("failed to read local posts: %w", err))
	}

	posts = append([]*domain.Post{post}, posts...)
	if err := g.cache.SavePosts(ctx, posts); err != nil {
		return "", errors.Join(unavailable("create post", remoteErr), fmt.Errorf("failed to write local posts: %w", err))
	}

	log.Info().Str("postID", post.ID).Msg("Saved post to local cache")
	return post.ID, nil
}

// Update merges patch into the stored record and refreshes updatedAt. ErrNotFound is
// returned when the id does not exist. Without a remote backend the local cache
// is updated.
func (g *Gateway) Update(ctx context.Context, id string, patch domain.PostPatch) error {
	now := g.now()

	if g.remote == nil {
		return g.mutateLocal(ctx, id, func(posts []*domain.Post, i int) []*domain.Post {
			patch.Apply(posts[i])
			posts[i].UpdatedAt = domain.NewTimestamp(now)
			return posts
		})
	}

	err := g.remote.Update(ctx, id, patch, now)
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return unavailable("update post", err)
	}

	log.Info().Str("postID", id).Msg("Updated post in remote store")
	return nil
}

// Delete removes the record. ErrNotFound is returned when the id does not exist.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	if g.remote == nil {
		return g.mutateLocal(ctx, id, func(posts []*domain.Post, i int) []*domain.Post {
			return append(posts[:i], posts[i+1:]...)
		})
	}

	err := g.remote.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return unavailable("delete post", err)
	}

	log.Info().Str("postID", id).Msg("Deleted post from remote store")
	return nil
}

func (g *Gateway) mutateLocal(ctx context.Context, id string, fn func(posts []*domain.Post, i int) []*domain.Post) error {
	posts, err := g.cache.LoadPosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read local posts: %w", err)
	}

	i := indexOf(posts, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	if err := g.cache.SavePosts(ctx, fn(posts, i)); err != nil {
		return fmt.Errorf("failed to write local posts: %w", err)
	}
	return nil
}

// Migrate re-creates every locally cached post in the remote store, each under a new
// identifier, and clears the local list once all of them succeeded. Cached posts whose
// id already exists remotely are skipped. When one insert
// fails, the already-created remote records are deleted again and the local list is
// left untouched, so a retry starts from the same state.
func (g *Gateway) Migrate(ctx context.Context) (int, error) {
	if g.remote == nil {
		return 0, unavailable("migrate posts", nil)
	}

	posts, err := g.cache.LoadPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read local posts: %w", err)
	}
	if len(posts) == 0 {
		log.Info().Msg("No local posts to migrate")
		return 0, nil
	}

	log.Info().Int("count", len(posts)).Msg("Migrating local posts to remote store")

	created := make([]string, 0, len(posts))
	skipped := 0
	for i, p := range posts {
		existing, err := g.remote.FindByID(ctx, p.ID)
		if err != nil {
			g.rollbackMigration(ctx, created)
			return 0, unavailable(fmt.Sprintf("migrate post %d of %d", i+1, len(posts)), err)
		}
		if existing != nil {
			skipped++
			continue
		}

		post := p.Clone()
		post.ID = ""

		id, err := g.remote.Insert(ctx, post)
		if err != nil {
			g.rollbackMigration(ctx, created)
			return 0, unavailable(fmt.Sprintf("migrate post %d of %d", i+1, len(posts)), err)
		}
		created = append(created, id)
	}

	if err := g.cache.ClearPosts(ctx); err != nil {
		return len(created), fmt.Errorf("migrated %d posts but failed to clear local posts: %w", len(created), err)
	}

	log.Info().Int("count", len(created)).Int("skipped", skipped).Msg("Migration completed")
	return len(created), nil
}

func (g *Gateway) rollbackMigration(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := g.remote.Delete(ctx, id); err != nil {
			log.Error().Err(err).Str("postID", id).Msg("Failed to remove partially migrated post")
		}
	}
}

func indexOf(posts []*domain.Post, id string) int {
	for i, p := range posts {
		if p != nil && p.ID == id {
			return i
		}
	}
	return -1
}
