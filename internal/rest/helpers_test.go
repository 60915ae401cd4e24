package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dfryer1193/folio/api"
	"github.com/dfryer1193/folio/blog/application"
	"github.com/dfryer1193/folio/blog/domain"
	"github.com/dfryer1193/folio/blog/persistence"
	"github.com/dfryer1193/folio/internal/middleware"
	"github.com/dfryer1193/folio/shared/db/sqlite"
	"github.com/gin-gonic/gin"
)

const testSecret = "letmein"

func init() {
	gin.SetMode(gin.TestMode)
}

type testApi struct {
	router *gin.Engine
	store  *application.ContentStore
}

// setupTestApi wires the real store over an in-memory cache with no remote backend.
func setupTestApi(t *testing.T) *testApi {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: ":memory:"})
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cache := persistence.NewCache(database.DB())
	gateway := persistence.NewGateway(nil, cache)
	store := application.NewContentStore(gateway, cache)
	store.Load(context.Background())

	router := gin.New()
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	NewApi(router, Deps{
		Store:    store,
		Switcher: application.NewLanguageSwitcher(store, application.NewWordTranslator()),
		Renderer: application.NewPreviewRenderer("https://example.com"),
		Auth: application.NewAdminAuthenticator(application.AuthConfig{
			Secret:    testSecret,
			JWTSecret: []byte("test-signing-key"),
		}, cache),
		Author: domain.Author{Name: "Admin"},
		Now:    func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	})

	return &testApi{router: router, store: store}
}

// seed creates posts directly through the store.
func (ta *testApi) seed(t *testing.T, posts ...*domain.Post) []string {
	t.Helper()
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		created, err := ta.store.CreatePost(context.Background(), p)
		if err != nil {
			t.Fatalf("failed to seed post %q: %v", p.Primary.Title, err)
		}
		ids = append(ids, created.ID)
	}
	return ids
}

func (ta *testApi) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func (ta *testApi) login(t *testing.T) string {
	t.Helper()
	w := ta.do(t, http.MethodPost, "/api/admin/login", api.LoginRequest{Secret: testSecret}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var resp api.LoginResponse
	decode(t, w, &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
}

func post(title string, categories, tags []string, publishedAt string, published bool) *domain.Post {
	return &domain.Post{
		Primary: domain.LocalizedFields{
			Title:      title,
			Content:    "About " + title,
			Excerpt:    "Excerpt of " + title,
			Categories: categories,
			Tags:       tags,
		},
		IsPublished: published,
		IsDraft:     !published,
		ReadingTime: 5,
		PublishedAt: domain.Timestamp(publishedAt),
		UpdatedAt:   domain.Timestamp(publishedAt),
		Author:      domain.Author{Name: "Admin"},
	}
}

func titles(posts []*domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Primary.Title)
	}
	return out
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
