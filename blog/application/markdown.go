package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	maxExcerptLength = 200
	wordsPerMinute   = 200
)

// Preview is the rendered editor content.
type Preview struct {
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	ReadingTime int    `json:"readingTime"`
	HTML        string `json:"html"`
}

type relativeLinkTransformer struct {
	baseURL string
}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Image:
			if dest := string(v.Destination); isRelativeLink(dest) {
				v.Destination = []byte(t.baseURL + "/images/" + path.Base(dest))
			}
		case *ast.Link:
			if dest := string(v.Destination); isRelativeLink(dest) && !strings.HasPrefix(dest, "#") {
				v.Destination = []byte(t.baseURL + "/blog/" + path.Base(dest))
			}
		}
		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	if dest == "" {
		return false
	}
	if strings.HasPrefix(dest, "/") {
		return !strings.HasPrefix(dest, "//")
	}
	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}
	return !strings.Contains(dest, ":")
}

// PreviewRenderer turns editor markdown into sanitized HTML.
type PreviewRenderer interface {
	Render(markdown string) (*Preview, error)
}

type previewRenderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewPreviewRenderer resolves relative links and images against baseURL.
func NewPreviewRenderer(baseURL string) PreviewRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&relativeLinkTransformer{baseURL: strings.TrimRight(baseURL, "/")}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("type", "checked", "disabled").OnElements("input")

	return &previewRenderer{markdown: md, policy: policy}
}

func (r *previewRenderer) Render(markdown string) (*Preview, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return &Preview{
		Title:       extractTitle(markdown),
		Excerpt:     extractExcerpt(markdown),
		ReadingTime: estimateReadingTime(markdown),
		HTML:        r.policy.Sanitize(buf.String()),
	}, nil
}

// extractTitle returns the text of a leading level-one heading, or "".
func extractTitle(markdown string) string {
	first, _, _ := strings.Cut(markdown, "\n")
	title, found := strings.CutPrefix(strings.TrimSpace(first), "# ")
	if !found {
		return ""
	}
	return strings.TrimSpace(title)
}

// extractExcerpt returns the first paragraph, cut at a word boundary.
func extractExcerpt(markdown string) string {
	var paragraph []string

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") || trimmed == "" || startsBlock(trimmed) {
			if len(paragraph) > 0 {
				break
			}
			continue
		}
		paragraph = append(paragraph, trimmed)
	}

	if len(paragraph) == 0 {
		return ""
	}

	excerpt := strings.Join(paragraph, " ")
	runes := []rune(excerpt)
	if len(runes) <= maxExcerptLength {
		return excerpt
	}

	excerpt = string(runes[:maxExcerptLength])
	if lastSpace := strings.LastIndexAny(excerpt, " \t"); lastSpace > 0 {
		excerpt = excerpt[:lastSpace]
	}
	return excerpt + "..."
}

func startsBlock(line string) bool {
	for _, prefix := range []string{"```", "---", "***", "- ", "* ", "+ ", "|", ">"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// estimateReadingTime returns whole minutes, at least one. Runs of CJK characters
// count one word per character.
func estimateReadingTime(markdown string) int {
	words := 0
	inWord := false
	for _, r := range markdown {
		switch {
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana):
			words++
			inWord = false
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}

	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return max(minutes, 1)
}
