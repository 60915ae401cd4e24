package application

import (
	"strings"
	"testing"

	"github.com/andreyvit/diff"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "Valid title",
			markdown: "# My Blog Post\nSome content",
			expected: "My Blog Post",
		},
		{
			name:     "Title with extra spaces",
			markdown: "#   Title with spaces   \nContent",
			expected: "Title with spaces",
		},
		{
			name:     "No title",
			markdown: "Some content without title",
			expected: "",
		},
		{
			name:     "Empty markdown",
			markdown: "",
			expected: "",
		},
		{
			name:     "Hash without space",
			markdown: "#NoSpace\nContent",
			expected: "",
		},
		{
			name:     "Second level heading",
			markdown: "## Section\nContent",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractTitle(tt.markdown)
			if result != tt.expected {
				t.Errorf("extractTitle() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 60)

	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "First paragraph after title",
			markdown: "# Title\nThis is the first paragraph\n\nMore content",
			expected: "This is the first paragraph",
		},
		{
			name:     "Multi-line first paragraph",
			markdown: "# Title\nFirst line of paragraph.\nSecond line of paragraph.\n\nSecond paragraph",
			expected: "First line of paragraph. Second line of paragraph.",
		},
		{
			name:     "Skips leading code block marker",
			markdown: "```\n\nActual paragraph",
			expected: "Actual paragraph",
		},
		{
			name:     "Stops at list",
			markdown: "Intro line\n- item",
			expected: "Intro line",
		},
		{
			name:     "Stops at quote",
			markdown: "Intro line\n> quoted",
			expected: "Intro line",
		},
		{
			name:     "Only a title",
			markdown: "# Only a Title",
			expected: "",
		},
		{
			name:     "Long paragraph is cut at a word",
			markdown: long,
			expected: strings.TrimSpace(strings.Repeat("word ", 39)) + " word...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractExcerpt(tt.markdown)
			if result != tt.expected {
				t.Errorf("extractExcerpt() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestEstimateReadingTime(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected int
	}{
		{name: "Empty", markdown: "", expected: 1},
		{name: "Short", markdown: "a few words here", expected: 1},
		{name: "Exactly one minute", markdown: strings.Repeat("go ", 200), expected: 1},
		{name: "Just over one minute", markdown: strings.Repeat("go ", 201), expected: 2},
		{name: "Japanese characters", markdown: strings.Repeat("技術", 300), expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimateReadingTime(tt.markdown); got != tt.expected {
				t.Errorf("estimateReadingTime() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestIsRelativeLink(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{name: "Absolute HTTPS URL", url: "https://example.com/page", expected: false},
		{name: "Protocol-relative URL", url: "//example.com/page", expected: false},
		{name: "Mailto link", url: "mailto:user@example.com", expected: false},
		{name: "JavaScript URI", url: "javascript:alert('test')", expected: false},
		{name: "Empty", url: "", expected: false},
		{name: "Root relative", url: "/images/a.png", expected: true},
		{name: "Dot relative", url: "./a.png", expected: true},
		{name: "Parent relative", url: "../a.png", expected: true},
		{name: "Bare file", url: "a.png", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRelativeLink(tt.url); got != tt.expected {
				t.Errorf("isRelativeLink(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestPreviewRenderer_Render(t *testing.T) {
	renderer := NewPreviewRenderer("https://folio.example/")

	tests := []struct {
		name         string
		markdown     string
		expectedHTML string
		contains     []string
		absent       []string
	}{
		{
			name:         "Heading and paragraph",
			markdown:     "# Hello\nWorld",
			expectedHTML: "<h1 id=\"hello\">Hello</h1>\n<p>World</p>\n",
		},
		{
			name:     "Relative image",
			markdown: "![alt](./pics/cat.png)",
			contains: []string{`src="https://folio.example/images/cat.png"`, `alt="alt"`},
		},
		{
			name:     "Relative link",
			markdown: "[next](../react-hooks-guide)",
			contains: []string{`href="https://folio.example/blog/react-hooks-guide"`, `rel="nofollow"`},
		},
		{
			name:     "Absolute link is kept",
			markdown: "[site](https://example.com/x)",
			contains: []string{`href="https://example.com/x"`},
		},
		{
			name:     "Script is stripped",
			markdown: "before\n\n<script>alert(1)</script>\n\nafter",
			contains: []string{"<p>before</p>", "<p>after</p>"},
			absent:   []string{"<script", "alert(1)"},
		},
		{
			name:     "Event handlers are stripped",
			markdown: `<img src="https://example.com/a.png" onerror="alert(1)">`,
			absent:   []string{"onerror"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := renderer.Render(tt.markdown)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if tt.expectedHTML != "" && result.HTML != tt.expectedHTML {
				t.Errorf("HTML mismatch:\n%s", diff.LineDiff(tt.expectedHTML, result.HTML))
			}
			for _, want := range tt.contains {
				if !strings.Contains(result.HTML, want) {
					t.Errorf("HTML %q does not contain %q", result.HTML, want)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(result.HTML, unwanted) {
					t.Errorf("HTML %q contains %q", result.HTML, unwanted)
				}
			}
		})
	}
}

func TestPreviewRenderer_RenderMetadata(t *testing.T) {
	renderer := NewPreviewRenderer("https://folio.example")

	result, err := renderer.Render("# Guide\nIntro paragraph.\n\n## More\nBody")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Title != "Guide" {
		t.Errorf("Title = %q, want Guide", result.Title)
	}
	if result.Excerpt != "Intro paragraph." {
		t.Errorf("Excerpt = %q, want %q", result.Excerpt, "Intro paragraph.")
	}
	if result.ReadingTime != 1 {
		t.Errorf("ReadingTime = %d, want 1", result.ReadingTime)
	}
}
