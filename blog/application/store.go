package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dfryer1193/folio/blog/domain"
	"github.com/rs/zerolog/log"
)

// LoadState tracks the progress of ContentStore.Load.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadLoading
	LoadLoaded
)

func (s LoadState) String() string {
	switch s {
	case LoadLoading:
		return "loading"
	case LoadLoaded:
		return "loaded"
	default:
		return "idle"
	}
}

// LoadSource records where the loaded collection came from.
type LoadSource int

const (
	SourceNone LoadSource = iota
	SourceRemote
	SourceCache
	SourceEmpty
)

func (s LoadSource) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceCache:
		return "cache"
	case SourceEmpty:
		return "empty"
	default:
		return "none"
	}
}

// View is a consistent read of the store's state and derived page.
type View struct {
	Criteria      domain.Criteria `json:"criteria"`
	CurrentPage   int             `json:"currentPage"`
	TotalPages    int             `json:"totalPages"`
	PageSize      int             `json:"pageSize"`
	FilteredCount int             `json:"filteredCount"`
	Posts         []*domain.Post  `json:"posts"`
	Bookmarks     []string        `json:"bookmarks"`
	Theme         domain.Theme    `json:"theme"`
	SearchHistory []string        `json:"searchHistory"`
	Language      domain.Language `json:"language"`
	LoadState     string          `json:"loadState"`
	Source        string          `json:"source"`
}

// Page is a stateless filtered page of posts.
type Page struct {
	Posts         []*domain.Post `json:"posts"`
	Page          int            `json:"page"`
	TotalPages    int            `json:"totalPages"`
	FilteredCount int            `json:"filteredCount"`
}

// ContentStore is the in-memory authority for the post collection, the visitor's
// filter state and the derived page. Gateway calls run outside the lock, so two
// overlapping writes to the same post settle as last response wins.
type ContentStore struct {
	gateway domain.PostGateway
	cache   domain.LocalCache
	now     func() time.Time

	mu          sync.RWMutex
	posts       []*domain.Post
	filtered    []*domain.Post
	criteria    domain.Criteria
	currentPage int
	bookmarks   []string
	theme       domain.Theme
	history     []string
	language    domain.Language
	state       LoadState
	source      LoadSource
}

// StoreOption customises a ContentStore
type StoreOption func(*ContentStore)

// WithStoreClock overrides the time source used for updatedAt
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *ContentStore) { s.now = now }
}

func NewContentStore(gateway domain.PostGateway, cache domain.LocalCache, opts ...StoreOption) *ContentStore {
	s := &ContentStore{
		gateway:     gateway,
		cache:       cache,
		now:         time.Now,
		currentPage: 1,
		theme:       domain.ThemeSystem,
		language:    domain.PrimaryLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore adopts the snapshot saved by a previous session. A missing or outdated
// snapshot leaves the store empty.
func (s *ContentStore) Restore(ctx context.Context) error {
	lang, err := s.cache.LoadLanguage(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read language preference")
		lang = domain.PrimaryLanguage
	}

	snap, err := s.cache.LoadSnapshot(ctx)
	if err != nil {
		s.mu.Lock()
		s.language = lang
		s.mu.Unlock()
		return fmt.Errorf("failed to restore session snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.language = lang
	if snap == nil {
		return nil
	}

	s.posts = clonePosts(snap.Posts)
	s.bookmarks = append([]string(nil), snap.Bookmarks...)
	s.history = append([]string(nil), snap.SearchHistory...)
	if theme, err := domain.ParseTheme(string(snap.Theme)); err == nil {
		s.theme = theme
	}
	s.refilter()

	log.Info().Int("posts", len(s.posts)).Int("bookmarks", len(s.bookmarks)).Msg("Restored session snapshot")
	return nil
}

// Load replaces the collection with the remote posts. When the remote is unavailable
// the local cache is used, and when that fails too the store settles on an empty
// collection. Load always ends in LoadLoaded.
func (s *ContentStore) Load(ctx context.Context) LoadSource {
	s.mu.Lock()
	s.state = LoadLoading
	s.mu.Unlock()

	source := SourceRemote
	posts, err := s.gateway.FetchAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Remote posts unavailable, falling back to local cache")

		source = SourceCache
		posts, err = s.cache.LoadPosts(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read cached posts, starting empty")
			posts = nil
		}
		if len(posts) == 0 {
			source = SourceEmpty
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = clonePosts(posts)
	s.state = LoadLoaded
	s.source = source
	s.refilter()
	s.persistLocked(ctx)

	log.Info().Int("count", len(s.posts)).Stringer("source", source).Msg("Loaded posts")
	return source
}

// State reports the load progress and where the collection came from.
func (s *ContentStore) State() (LoadState, LoadSource) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.source
}

// CreatePost validates the post, hands it to the gateway and prepends the stored
// result to the collection. On failure the collection is unchanged.
func (s *ContentStore) CreatePost(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	if err := ValidatePost(p); err != nil {
		return nil, err
	}

	id, err := s.gateway.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	created := p.Clone()
	created.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append([]*domain.Post{created}, s.posts...)
	s.refilter()
	s.persistLocked(ctx)

	return created.Clone(), nil
}

// UpdatePost merges patch into the post once the gateway accepted it and refreshes
// updatedAt. On failure the collection is unchanged. The returned post is nil when
// the collection does not hold id.
func (s *ContentStore) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	if patch.IsEmpty() {
		return nil, &domain.ValidationError{Field: "patch", Reason: "no fields to update"}
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if err := s.gateway.Update(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update post %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.posts, id)
	if i < 0 {
		// removed while the update was in flight
		return nil, nil
	}

	updated := s.posts[i].Clone()
	patch.Apply(updated)
	updated.UpdatedAt = domain.NewTimestamp(s.now())
	s.posts[i] = updated
	s.refilter()
	s.persistLocked(ctx)

	return updated.Clone(), nil
}

// DeletePost removes the post once the gateway accepted the delete. Its bookmark is
// dropped too.
func (s *ContentStore) DeletePost(ctx context.Context, id string) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.posts, id); i >= 0 {
		s.posts = append(s.posts[:i:i], s.posts[i+1:]...)
	}
	s.bookmarks = removeString(s.bookmarks, id)
	s.refilter()
	s.persistLocked(ctx)
	return nil
}

// Migrate moves the locally cached posts to the remote store and reloads.
func (s *ContentStore) Migrate(ctx context.Context) (int, error) {
	n, err := s.gateway.Migrate(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to migrate posts: %w", err)
	}
	s.Load(ctx)
	return n, nil
}

func (s *ContentStore) SetSelectedCategories(categories []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criteria.Categories = append([]string(nil), categories...)
	s.currentPage = 1
	s.refilter()
}

func (s *ContentStore) SetSelectedTags(tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criteria.Tags = append([]string(nil), tags...)
	s.currentPage = 1
	s.refilter()
}

// SetSearchQuery replaces the query and remembers it in the search history.
func (s *ContentStore) SetSearchQuery(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criteria.Query = query
	s.currentPage = 1
	s.refilter()

	if history, changed := pushHistory(s.history, query); changed {
		s.history = history
		s.persistLocked(ctx)
	}
}

// RecordSearch remembers a query without changing the filter.
func (s *ContentStore) RecordSearch(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if history, changed := pushHistory(s.history, query); changed {
		s.history = history
		s.persistLocked(ctx)
	}
}

func (s *ContentStore) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criteria = domain.Criteria{}
	s.currentPage = 1
	s.refilter()
}

// SetCurrentPage does not clamp n; pages past the end are empty.
func (s *ContentStore) SetCurrentPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPage = n
}

// ToggleBookmark flips id in the bookmark set and reports whether it is now bookmarked.
func (s *ContentStore) ToggleBookmark(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmarked := !containsString(s.bookmarks, id)
	if bookmarked {
		s.bookmarks = append(s.bookmarks, id)
	} else {
		s.bookmarks = removeString(s.bookmarks, id)
	}
	s.persistLocked(ctx)
	return bookmarked
}

func (s *ContentStore) IsBookmarked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsString(s.bookmarks, id)
}

func (s *ContentStore) SetTheme(ctx context.Context, theme domain.Theme) error {
	t, err := domain.ParseTheme(string(theme))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = t
	s.persistLocked(ctx)
	return nil
}

func (s *ContentStore) ClearSearchHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.persistLocked(ctx)
}

// Language is the active content language.
func (s *ContentStore) Language() domain.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// ApplyTranslatedBatch merges translated posts into the collection by id, then
// writes the collection and the new language to the cache in one transaction. The
// in-memory state changes only after the cache commit succeeded.
func (s *ContentStore) ApplyTranslatedBatch(ctx context.Context, translated []*domain.Post, lang domain.Language) error {
	if _, err := domain.ParseLanguage(string(lang)); err != nil {
		return err
	}

	byID := make(map[string]*domain.Post, len(translated))
	for _, p := range translated {
		if p != nil {
			byID[p.ID] = p
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]*domain.Post, len(s.posts))
	for i, p := range s.posts {
		if t, ok := byID[p.ID]; ok {
			merged[i] = t.Clone()
			continue
		}
		merged[i] = p
	}

	if err := s.cache.CommitLanguageBatch(ctx, merged, lang); err != nil {
		return fmt.Errorf("failed to commit translated posts: %w", err)
	}

	s.posts = merged
	s.language = lang
	s.refilter()
	s.persistLocked(ctx)
	return nil
}

// View returns the current page together with the store state.
func (s *ContentStore) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return View{
		Criteria: domain.Criteria{
			Categories: append([]string(nil), s.criteria.Categories...),
			Tags:       append([]string(nil), s.criteria.Tags...),
			Query:      s.criteria.Query,
		},
		CurrentPage:   s.currentPage,
		TotalPages:    totalPages(len(s.filtered)),
		PageSize:      PageSize,
		FilteredCount: len(s.filtered),
		Posts:         clonePosts(pageOf(s.filtered, s.currentPage)),
		Bookmarks:     append([]string(nil), s.bookmarks...),
		Theme:         s.theme,
		SearchHistory: append([]string(nil), s.history...),
		Language:      s.language,
		LoadState:     s.state.String(),
		Source:        s.source.String(),
	}
}

// VisiblePosts returns the posts of the current page.
func (s *ContentStore) VisiblePosts() []*domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(pageOf(s.filtered, s.currentPage))
}

// FilteredPosts returns every post matching the current filter, newest first.
func (s *ContentStore) FilteredPosts() []*domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.filtered)
}

func (s *ContentStore) TotalPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalPages(len(s.filtered))
}

func (s *ContentStore) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage
}

func (s *ContentStore) SearchHistory() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.history...)
}

// Posts returns the whole collection, drafts included, in collection order.
func (s *ContentStore) Posts() []*domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

// Post returns the post with the given id, or nil.
func (s *ContentStore) Post(id string) *domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.posts, id); i >= 0 {
		return s.posts[i].Clone()
	}
	return nil
}

// Browse filters and pages the collection without touching the store's own filter
// state.
func (s *ContentStore) Browse(c domain.Criteria, page int) Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := filterPosts(s.posts, c)
	return Page{
		Posts:         clonePosts(pageOf(filtered, page)),
		Page:          page,
		TotalPages:    totalPages(len(filtered)),
		FilteredCount: len(filtered),
	}
}

// SearchPreview returns up to SearchPreviewLimit published posts matching query.
func (s *ContentStore) SearchPreview(query string) []*domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(searchPreview(s.posts, query))
}

// Taxonomy counts categories and tags over published posts.
func (s *ContentStore) Taxonomy() Taxonomy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return buildTaxonomy(s.posts)
}

// refilter must be called with mu held for writing.
func (s *ContentStore) refilter() {
	s.filtered = filterPosts(s.posts, s.criteria)
}

// persistLocked writes the session snapshot. Failures are logged; the in-memory
// state stays authoritative.
func (s *ContentStore) persistLocked(ctx context.Context) {
	snap := &domain.Snapshot{
		Posts:         s.posts,
		Bookmarks:     s.bookmarks,
		Theme:         s.theme,
		SearchHistory: s.history,
	}
	if err := s.cache.SaveSnapshot(ctx, snap); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Msg("Failed to persist session snapshot")
	}
}

func clonePosts(in []*domain.Post) []*domain.Post {
	out := make([]*domain.Post, 0, len(in))
	for _, p := range in {
		if p != nil {
			out = append(out, p.Clone())
		}
	}
	return out
}

func indexOf(posts []*domain.Post, id string) int {
	for i, p := range posts {
		if p != nil && p.ID == id {
			return i
		}
	}
	return -1
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
