package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dfryer1193/folio/blog/domain"
	"github.com/dfryer1193/folio/blog/persistence"
	"github.com/dfryer1193/folio/shared/db/sqlite"
)

func setupTestApp(t *testing.T, titles ...string) (*app, *bytes.Buffer) {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: ":memory:"})
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cache := persistence.NewCache(database.DB())
	var posts []*domain.Post
	for i, title := range titles {
		posts = append(posts, &domain.Post{
			ID:      "local-" + string(rune('a'+i)),
			Primary: domain.LocalizedFields{Title: title, Content: "c", Excerpt: "e"},
		})
	}
	if err := cache.SavePosts(context.Background(), posts); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	var out bytes.Buffer
	return &app{gateway: persistence.NewGateway(nil, cache), cache: cache, out: &out}, &out
}

func TestRun_Export(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr error
	}{
		{name: "Auto falls back to cache", args: []string{"export"}, want: []string{"One", "Two"}},
		{name: "Cache", args: []string{"export", "-source", "cache"}, want: []string{"One", "Two"}},
		{name: "Remote unavailable", args: []string{"export", "-source", "remote"}, wantErr: domain.ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := setupTestApp(t, "One", "Two")

			err := a.run(context.Background(), tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			var posts []*domain.Post
			if err := json.Unmarshal(out.Bytes(), &posts); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if len(posts) != len(tt.want) {
				t.Fatalf("exported %d posts, want %d", len(posts), len(tt.want))
			}
			for i, p := range posts {
				if p.Primary.Title != tt.want[i] {
					t.Errorf("post %d title = %q, want %q", i, p.Primary.Title, tt.want[i])
				}
			}
		})
	}
}

func TestRun_ExportToFile(t *testing.T) {
	a, out := setupTestApp(t)
	path := filepath.Join(t.TempDir(), "posts.json")

	if err := a.run(context.Background(), []string{"export", "-o", path}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("export = %q, want []", data)
	}
}

func TestRun_MigrateWithoutRemote(t *testing.T) {
	a, _ := setupTestApp(t, "One")

	if err := a.run(context.Background(), []string{"migrate"}); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestRun_Usage(t *testing.T) {
	a, _ := setupTestApp(t)

	if err := a.run(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Errorf("error = %v, want usage", err)
	}
	if err := a.run(context.Background(), []string{"publish"}); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error = %v, want unknown command", err)
	}
	if err := a.run(context.Background(), []string{"export", "-source", "ftp"}); err == nil {
		t.Error("unknown source accepted")
	}
}
