package domain

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// PostPatch enumerates exactly the mutable fields of a post. Nil fields are left
// untouched. DecodePatch rejects any other field.
type PostPatch struct {
	Title           *string   `json:"title,omitempty"`
	Subtitle        *string   `json:"subtitle,omitempty"`
	Content         *string   `json:"content,omitempty"`
	Excerpt         *string   `json:"excerpt,omitempty"`
	Categories      *[]string `json:"categories,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	MetaTitle       *string   `json:"metaTitle,omitempty"`
	MetaDescription *string   `json:"metaDescription,omitempty"`

	// Secondary replaces the whole secondary variant; an empty variant clears it.
	Secondary *LocalizedFields `json:"secondary,omitempty"`

	IsPublished *bool      `json:"isPublished,omitempty"`
	Featured    *bool      `json:"featured,omitempty"`
	ReadingTime *int       `json:"readingTime,omitempty"`
	PublishedAt *Timestamp `json:"publishedAt,omitempty"`
	Author      *Author    `json:"author,omitempty"`
	Bookmarked  *bool      `json:"bookmarked,omitempty"`
}

// DecodePatch reads a single JSON object into a PostPatch. Unknown fields and trailing
// data are validation errors.
func DecodePatch(r io.Reader) (PostPatch, error) {
	var patch PostPatch
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			return PostPatch{}, &ValidationError{Field: "patch", Reason: "empty body"}
		}
		return PostPatch{}, &ValidationError{Field: "patch", Reason: err.Error()}
	}
	if dec.More() {
		return PostPatch{}, &ValidationError{Field: "patch", Reason: "unexpected data after the object"}
	}
	return patch, nil
}

// IsEmpty reports whether the patch changes nothing.
func (pp PostPatch) IsEmpty() bool {
	return pp.Title == nil && pp.Subtitle == nil && pp.Content == nil && pp.Excerpt == nil &&
		pp.Categories == nil && pp.Tags == nil && pp.MetaTitle == nil && pp.MetaDescription == nil &&
		pp.Secondary == nil && pp.IsPublished == nil && pp.Featured == nil && pp.ReadingTime == nil &&
		pp.PublishedAt == nil && pp.Author == nil && pp.Bookmarked == nil
}

// Validate checks the fields the patch sets.
func (pp PostPatch) Validate() error {
	if pp.Title != nil && strings.TrimSpace(*pp.Title) == "" {
		return &ValidationError{Field: "title"}
	}
	if pp.Content != nil && strings.TrimSpace(*pp.Content) == "" {
		return &ValidationError{Field: "content"}
	}
	if pp.Excerpt != nil && strings.TrimSpace(*pp.Excerpt) == "" {
		return &ValidationError{Field: "excerpt"}
	}
	if pp.ReadingTime != nil && *pp.ReadingTime <= 0 {
		return &ValidationError{Field: "readingTime", Reason: "must be a positive number of minutes"}
	}
	if pp.PublishedAt != nil && !pp.PublishedAt.Valid() {
		return &ValidationError{Field: "publishedAt", Reason: "not a valid timestamp"}
	}
	if pp.Secondary != nil && !pp.Secondary.IsEmpty() {
		if _, err := NewBilingualBundle(LocalizedFields{}, *pp.Secondary); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the patch into p. IsDraft follows IsPublished.
func (pp PostPatch) Apply(p *Post) {
	if pp.Title != nil {
		p.Primary.Title = *pp.Title
	}
	if pp.Subtitle != nil {
		p.Primary.Subtitle = *pp.Subtitle
	}
	if pp.Content != nil {
		p.Primary.Content = *pp.Content
	}
	if pp.Excerpt != nil {
		p.Primary.Excerpt = *pp.Excerpt
	}
	if pp.Categories != nil {
		p.Primary.Categories = cloneStrings(*pp.Categories)
	}
	if pp.Tags != nil {
		p.Primary.Tags = cloneStrings(*pp.Tags)
	}
	if pp.MetaTitle != nil {
		p.Primary.MetaTitle = *pp.MetaTitle
	}
	if pp.MetaDescription != nil {
		p.Primary.MetaDescription = *pp.MetaDescription
	}
	if pp.Secondary != nil {
		if pp.Secondary.IsEmpty() {
			p.Secondary = nil
		} else {
			s := pp.Secondary.Clone()
			p.Secondary = &s
		}
	}
	if pp.IsPublished != nil {
		p.IsPublished = *pp.IsPublished
		p.IsDraft = !*pp.IsPublished
	}
	if pp.Featured != nil {
		p.Featured = *pp.Featured
	}
	if pp.ReadingTime != nil {
		p.ReadingTime = *pp.ReadingTime
	}
	if pp.PublishedAt != nil {
		p.PublishedAt = *pp.PublishedAt
	}
	if pp.Author != nil {
		p.Author = *pp.Author
	}
	if pp.Bookmarked != nil {
		p.Bookmarked = *pp.Bookmarked
	}
}
