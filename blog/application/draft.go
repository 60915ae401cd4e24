package application

import (
	"strings"
	"time"

	"github.com/dfryer1193/folio/blog/domain"
)

// DefaultReadingTime is used when the editor leaves the reading time empty.
const DefaultReadingTime = 5

// DraftInput is the editor form. Categories and tags are comma separated.
type DraftInput struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Content         string `json:"content"`
	Excerpt         string `json:"excerpt"`
	Categories      string `json:"categories"`
	Tags            string `json:"tags"`
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`

	TitleJp           string `json:"titleJp"`
	SubtitleJp        string `json:"subtitleJp"`
	ContentJp         string `json:"contentJp"`
	ExcerptJp         string `json:"excerptJp"`
	CategoriesJp      string `json:"categoriesJp"`
	TagsJp            string `json:"tagsJp"`
	MetaTitleJp       string `json:"metaTitleJp"`
	MetaDescriptionJp string `json:"metaDescriptionJp"`

	IsPublished bool `json:"isPublished"`
	Featured    bool `json:"featured"`
	ReadingTime int  `json:"readingTime"`
}

// ValidatePost checks the fields every post needs before it reaches the gateway.
func ValidatePost(p *domain.Post) error {
	if p == nil {
		return &domain.ValidationError{Field: "post"}
	}
	if strings.TrimSpace(p.Primary.Title) == "" {
		return &domain.ValidationError{Field: "title"}
	}
	if strings.TrimSpace(p.Primary.Content) == "" {
		return &domain.ValidationError{Field: "content"}
	}
	if strings.TrimSpace(p.Primary.Excerpt) == "" {
		return &domain.ValidationError{Field: "excerpt"}
	}
	if p.ReadingTime < 0 {
		return &domain.ValidationError{Field: "readingTime", Reason: "must be a positive number of minutes"}
	}
	return nil
}

// PrepareDraft turns the editor form into a new post. Meta fields fall back to the
// title and excerpt, the reading time to DefaultReadingTime, and both timestamps are
// set to now.
func PrepareDraft(in DraftInput, author domain.Author, now time.Time) (*domain.Post, error) {
	primary := domain.LocalizedFields{
		Title:           strings.TrimSpace(in.Title),
		Subtitle:        strings.TrimSpace(in.Subtitle),
		Content:         in.Content,
		Excerpt:         strings.TrimSpace(in.Excerpt),
		Categories:      domain.SplitList(in.Categories),
		Tags:            domain.SplitList(in.Tags),
		MetaTitle:       strings.TrimSpace(in.MetaTitle),
		MetaDescription: strings.TrimSpace(in.MetaDescription),
	}
	if primary.MetaTitle == "" {
		primary.MetaTitle = primary.Title
	}
	if primary.MetaDescription == "" {
		primary.MetaDescription = primary.Excerpt
	}

	readingTime := in.ReadingTime
	if readingTime == 0 {
		readingTime = DefaultReadingTime
	}

	ts := domain.NewTimestamp(now)
	p := &domain.Post{
		Primary:     primary,
		IsPublished: in.IsPublished,
		IsDraft:     !in.IsPublished,
		Featured:    in.Featured,
		ReadingTime: readingTime,
		PublishedAt: ts,
		UpdatedAt:   ts,
		Author:      author,
	}

	if secondary := in.secondary(); !secondary.IsEmpty() {
		p.Secondary = &secondary
	}

	if err := ValidatePost(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (in DraftInput) secondary() domain.LocalizedFields {
	return domain.LocalizedFields{
		Title:           strings.TrimSpace(in.TitleJp),
		Subtitle:        strings.TrimSpace(in.SubtitleJp),
		Content:         in.ContentJp,
		Excerpt:         strings.TrimSpace(in.ExcerptJp),
		Categories:      domain.SplitList(in.CategoriesJp),
		Tags:            domain.SplitList(in.TagsJp),
		MetaTitle:       strings.TrimSpace(in.MetaTitleJp),
		MetaDescription: strings.TrimSpace(in.MetaDescriptionJp),
	}
}
