package application

import (
	"sort"
	"strings"

	"github.com/dfryer1193/folio/blog/domain"
)

const (
	// PageSize is the fixed number of posts on one page of the filtered view.
	PageSize = 6
	// SearchPreviewLimit caps the interactive search results.
	SearchPreviewLimit = 5
	// SearchHistoryLimit caps the remembered search queries.
	SearchHistoryLimit = 10
)

// filterPosts returns the published posts matching c, newest first. Posts with equal
// publish times keep their collection order.
func filterPosts(posts []*domain.Post, c domain.Criteria) []*domain.Post {
	out := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		if p == nil || !p.IsPublished {
			continue
		}
		if c.Matches(p) {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// totalPages is ceil(n / PageSize); an empty result has no pages.
func totalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// pageOf returns the 1-indexed page of posts. Pages outside the range are empty.
func pageOf(posts []*domain.Post, page int) []*domain.Post {
	if page < 1 {
		return nil
	}
	start := (page - 1) * PageSize
	if start >= len(posts) {
		return nil
	}
	end := min(start+PageSize, len(posts))
	return posts[start:end]
}

// pushHistory prepends a new query and reports whether the history changed. Blank or
// already remembered queries leave it as is.
func pushHistory(history []string, query string) ([]string, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return history, false
	}
	for _, h := range history {
		if h == q {
			return history, false
		}
	}

	out := make([]string, 0, min(len(history)+1, SearchHistoryLimit))
	out = append(out, q)
	for _, h := range history {
		if len(out) == SearchHistoryLimit {
			break
		}
		out = append(out, h)
	}
	return out, true
}

// searchPreview returns up to SearchPreviewLimit published posts matching query in
// collection order.
func searchPreview(posts []*domain.Post, query string) []*domain.Post {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var out []*domain.Post
	for _, p := range posts {
		if p == nil || !p.IsPublished || !p.MatchesQuery(query) {
			continue
		}
		out = append(out, p)
		if len(out) == SearchPreviewLimit {
			break
		}
	}
	return out
}

// TermCount is a category or tag with the number of published posts carrying it.
type TermCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Taxonomy lists the categories and tags used by published posts.
type Taxonomy struct {
	Categories []TermCount `json:"categories"`
	Tags       []TermCount `json:"tags"`
}

func buildTaxonomy(posts []*domain.Post) Taxonomy {
	categories := make(map[string]int)
	tags := make(map[string]int)
	for _, p := range posts {
		if p == nil || !p.IsPublished {
			continue
		}
		for _, c := range p.Primary.Categories {
			categories[c]++
		}
		for _, t := range p.Primary.Tags {
			tags[t]++
		}
	}
	return Taxonomy{
		Categories: sortedCounts(categories),
		Tags:       sortedCounts(tags),
	}
}

func sortedCounts(m map[string]int) []TermCount {
	out := make([]TermCount, 0, len(m))
	for name, n := range m {
		out = append(out, TermCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
