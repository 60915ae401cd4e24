package domain

import (
	"strings"
)

// Post represents a blog article with its two language variants.
// Primary fields are always populated; Secondary is nil until the post has been
// given any secondary-language content, and each of its fields may still be empty.
type Post struct {
	ID string `json:"id"`

	Primary   LocalizedFields  `json:"primary"`
	Secondary *LocalizedFields `json:"secondary,omitempty"`

	IsPublished bool `json:"isPublished"`
	IsDraft     bool `json:"isDraft"`
	Featured    bool `json:"featured"`
	ReadingTime int  `json:"readingTime"`

	PublishedAt Timestamp `json:"publishedAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`

	Author Author `json:"author"`

	// Bookmarked is the legacy per-post flag. The store-level bookmark set is
	// authoritative.
	Bookmarked bool `json:"bookmarked"`
}

// Author is embedded in every post.
type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// LocalizedFields holds the content of one language variant of a post.
type LocalizedFields struct {
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
	MetaTitle       string   `json:"metaTitle"`
	MetaDescription string   `json:"metaDescription"`
}

// IsEmpty reports whether no field of the variant carries content.
func (f LocalizedFields) IsEmpty() bool {
	return strings.TrimSpace(f.Title) == "" &&
		strings.TrimSpace(f.Subtitle) == "" &&
		strings.TrimSpace(f.Content) == "" &&
		strings.TrimSpace(f.Excerpt) == "" &&
		len(f.Categories) == 0 &&
		len(f.Tags) == 0 &&
		strings.TrimSpace(f.MetaTitle) == "" &&
		strings.TrimSpace(f.MetaDescription) == ""
}

// Clone returns a deep copy of the variant.
func (f LocalizedFields) Clone() LocalizedFields {
	out := f
	out.Categories = cloneStrings(f.Categories)
	out.Tags = cloneStrings(f.Tags)
	return out
}

// Clone returns a deep copy of the post so callers can never mutate store-owned data.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	out := *p
	out.Primary = p.Primary.Clone()
	if p.Secondary != nil {
		s := p.Secondary.Clone()
		out.Secondary = &s
	}
	return &out
}

// HasCategory reports whether the post carries any of the given categories.
func (p *Post) HasCategory(categories []string) bool {
	return containsAny(p.Primary.Categories, categories)
}

// HasTag reports whether the post carries any of the given tags.
func (p *Post) HasTag(tags []string) bool {
	return containsAny(p.Primary.Tags, tags)
}

// MatchesQuery reports whether the lower-cased query is a substring of the title,
// body, excerpt, any tag or any category.
func (p *Post) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	f := p.Primary
	if strings.Contains(strings.ToLower(f.Title), q) ||
		strings.Contains(strings.ToLower(f.Content), q) ||
		strings.Contains(strings.ToLower(f.Excerpt), q) {
		return true
	}
	for _, t := range f.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	for _, c := range f.Categories {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	return false
}

func containsAny(have []string, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// SplitList parses a comma separated form value, trimming entries and dropping empties.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
