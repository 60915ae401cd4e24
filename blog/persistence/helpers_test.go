package persistence

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/dfryer1193/folio/blog/domain"
	"github.com/dfryer1193/folio/shared/db/sqlite"
)

// setupTestCache creates a cache backed by an in-memory SQLite database
func setupTestCache(t *testing.T) *SQLiteCache {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: ":memory:"})
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewCache(database.DB())
}

func testPost(title string, published string) *domain.Post {
	return &domain.Post{
		Primary: domain.LocalizedFields{
			Title:      title,
			Content:    "Body of " + title,
			Excerpt:    "About " + title,
			Categories: []string{"Tutorial"},
			Tags:       []string{"go"},
		},
		IsPublished: true,
		ReadingTime: 5,
		PublishedAt: domain.Timestamp(published),
		UpdatedAt:   domain.Timestamp(published),
		Author:      domain.Author{Name: "Test Author"},
	}
}

// fakeRemote is an in-memory domain.RemotePostStore
type fakeRemote struct {
	posts       map[string]*domain.Post
	nextID      int
	insertCalls int
	// failInsertOn makes the n-th Insert call (1-based) fail
	failInsertOn int
	// err makes every call fail
	err     error
	deleted []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{posts: make(map[string]*domain.Post)}
}

func (f *fakeRemote) sorted(onlyPublished bool) []*domain.Post {
	out := make([]*domain.Post, 0, len(f.posts))
	for _, p := range f.posts {
		if onlyPublished && !p.IsPublished {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out
}

func (f *fakeRemote) FindAll(ctx context.Context) ([]*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(false), nil
}

func (f *fakeRemote) FindPublished(ctx context.Context) ([]*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(true), nil
}

func (f *fakeRemote) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (f *fakeRemote) Insert(ctx context.Context, p *domain.Post) (string, error) {
	f.insertCalls++
	if f.err != nil {
		return "", f.err
	}
	if f.failInsertOn != 0 && f.insertCalls == f.failInsertOn {
		return "", fmt.Errorf("insert %d rejected", f.insertCalls)
	}
	f.nextID++
	id := fmt.Sprintf("remote-%d", f.nextID)
	stored := p.Clone()
	stored.ID = id
	f.posts[id] = stored
	return id, nil
}

func (f *fakeRemote) Update(ctx context.Context, id string, patch domain.PostPatch, updatedAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	p, ok := f.posts[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	patch.Apply(p)
	p.UpdatedAt = domain.NewTimestamp(updatedAt)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.posts[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(f.posts, id)
	f.deleted = append(f.deleted, id)
	return nil
}
