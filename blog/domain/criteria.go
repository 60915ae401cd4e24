package domain

import "strings"

// Criteria are the visitor's filter settings. Dimensions are ANDed; within the
// category and tag sets a single match is enough. Empty dimensions match everything.
type Criteria struct {
	Categories []string `json:"selectedCategories"`
	Tags       []string `json:"selectedTags"`
	Query      string   `json:"searchQuery"`
}

// Matches applies every dimension to p.
func (c Criteria) Matches(p *Post) bool {
	if len(c.Categories) > 0 && !p.HasCategory(c.Categories) {
		return false
	}
	if len(c.Tags) > 0 && !p.HasTag(c.Tags) {
		return false
	}
	if strings.TrimSpace(c.Query) != "" && !p.MatchesQuery(c.Query) {
		return false
	}
	return true
}

// IsEmpty reports whether no dimension restricts the result.
func (c Criteria) IsEmpty() bool {
	return len(c.Categories) == 0 && len(c.Tags) == 0 && strings.TrimSpace(c.Query) == ""
}
