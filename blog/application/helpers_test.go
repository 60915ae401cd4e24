package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dfryer1193/folio/blog/domain"
)

var errRemoteDown = errors.New("remote down")

func newPost(id string, categories, tags []string, publishedAt string) *domain.Post {
	return &domain.Post{
		ID: id,
		Primary: domain.LocalizedFields{
			Title:      "Post " + id,
			Content:    "Content of " + id,
			Excerpt:    "Excerpt of " + id,
			Categories: categories,
			Tags:       tags,
		},
		IsPublished: true,
		ReadingTime: 5,
		PublishedAt: domain.Timestamp(publishedAt),
		UpdatedAt:   domain.Timestamp(publishedAt),
		Author:      domain.Author{Name: "Tester"},
	}
}

func postIDs(posts []*domain.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// fakeCache is an in-memory domain.LocalCache
type fakeCache struct {
	mu        sync.Mutex
	posts     []*domain.Post
	language  domain.Language
	snapshot  *domain.Snapshot
	flags     map[string]bool
	loadErr   error
	commitErr error
	saves     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{language: domain.PrimaryLanguage, flags: make(map[string]bool)}
}

func (c *fakeCache) LoadPosts(ctx context.Context) ([]*domain.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return clonePosts(c.posts), nil
}

func (c *fakeCache) SavePosts(ctx context.Context, posts []*domain.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = clonePosts(posts)
	return nil
}

func (c *fakeCache) ClearPosts(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = nil
	return nil
}

func (c *fakeCache) LoadLanguage(ctx context.Context) (domain.Language, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language, nil
}

func (c *fakeCache) SaveLanguage(ctx context.Context, lang domain.Language) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
	return nil
}

func (c *fakeCache) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil, nil
	}
	snap := *c.snapshot
	snap.Posts = clonePosts(c.snapshot.Posts)
	return &snap, nil
}

func (c *fakeCache) SaveSnapshot(ctx context.Context, s *domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := *s
	snap.Version = domain.SnapshotVersion
	snap.Posts = clonePosts(s.Posts)
	snap.Bookmarks = append([]string(nil), s.Bookmarks...)
	snap.SearchHistory = append([]string(nil), s.SearchHistory...)
	c.snapshot = &snap
	c.saves++
	return nil
}

func (c *fakeCache) SetSessionFlag(ctx context.Context, key string, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !value {
		delete(c.flags, key)
		return nil
	}
	c.flags[key] = true
	return nil
}

func (c *fakeCache) SessionFlag(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags[key], nil
}

func (c *fakeCache) CommitLanguageBatch(ctx context.Context, posts []*domain.Post, lang domain.Language) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.commitErr != nil {
		return c.commitErr
	}
	c.posts = clonePosts(posts)
	c.language = lang
	return nil
}

// fakeGateway is an in-memory domain.PostGateway
type fakeGateway struct {
	mu       sync.Mutex
	posts    []*domain.Post
	nextID   int
	fetchErr error
	writeErr error
	migrated int
	calls    []string
}

func (g *fakeGateway) record(call string) {
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) FetchAll(ctx context.Context) ([]*domain.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("fetchAll")
	if g.fetchErr != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, g.fetchErr)
	}
	return clonePosts(g.posts), nil
}

func (g *fakeGateway) FetchPublished(ctx context.Context) ([]*domain.Post, error) {
	all, err := g.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterPosts(all, domain.Criteria{}), nil
}

func (g *fakeGateway) FetchOne(ctx context.Context, id string) (*domain.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i := indexOf(g.posts, id); i >= 0 {
		return g.posts[i].Clone(), nil
	}
	return nil, nil
}

func (g *fakeGateway) Create(ctx context.Context, p *domain.Post) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("create")
	if g.writeErr != nil {
		return "", g.writeErr
	}
	g.nextID++
	stored := p.Clone()
	stored.ID = fmt.Sprintf("gw-%d", g.nextID)
	g.posts = append([]*domain.Post{stored}, g.posts...)
	return stored.ID, nil
}

func (g *fakeGateway) Update(ctx context.Context, id string, patch domain.PostPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("update")
	if g.writeErr != nil {
		return g.writeErr
	}
	i := indexOf(g.posts, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	patch.Apply(g.posts[i])
	return nil
}

func (g *fakeGateway) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("delete")
	if g.writeErr != nil {
		return g.writeErr
	}
	i := indexOf(g.posts, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	g.posts = append(g.posts[:i], g.posts[i+1:]...)
	return nil
}

func (g *fakeGateway) Migrate(ctx context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("migrate")
	if g.writeErr != nil {
		return 0, g.writeErr
	}
	return g.migrated, nil
}

// suffixTranslator appends the target language to every text, optionally failing on
// texts containing failOn.
type suffixTranslator struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (t *suffixTranslator) Translate(ctx context.Context, text string, target domain.Language) (string, error) {
	t.mu.Lock()
	t.calls = append(t.calls, text)
	t.mu.Unlock()

	if t.failOn != "" && strings.Contains(text, t.failOn) {
		return "", fmt.Errorf("provider rejected %q", text)
	}
	return text + " [" + string(target) + "]", nil
}

func (t *suffixTranslator) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}
