package api

import "github.com/dfryer1193/folio/blog/domain"

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []*domain.Post `json:"results"`
}

type BookmarkResponse struct {
	ID         string `json:"id"`
	Bookmarked bool   `json:"bookmarked"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
