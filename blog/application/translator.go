package application

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/dfryer1193/folio/blog/domain"
)

// glossary pairs primary-language terms with their secondary-language counterparts.
var glossary = [][2]string{
	{"Hello", "こんにちは"},
	{"Welcome", "ようこそ"},
	{"Blog", "ブログ"},
	{"Home", "ホーム"},
	{"About", "について"},
	{"Profile", "プロフィール"},
	{"Search", "検索"},
	{"Latest Posts", "最新の投稿"},
	{"Read more", "続きを読む"},
	{"No blog", "ブログがありません"},
	{"Developer", "開発者"},
	{"Student", "学生"},
	{"My Journey", "私の歩み"},
	{"What I Do", "私がすること"},
	{"Technologies I Love", "好きな技術"},
	{"Skills", "スキル"},
	{"Experience", "経験"},
	{"Interests", "興味"},
	{"Tutorial", "チュートリアル"},
	{"Development", "開発"},
	{"Technology", "技術"},
	{"Programming", "プログラミング"},
}

// WordTranslator stands in for a translation provider by substituting glossary terms.
// Matching is case-insensitive and prefers the longest term.
type WordTranslator struct {
	toSecondary *replacer
	toPrimary   *replacer
}

type replacer struct {
	pattern *regexp.Regexp
	terms   map[string]string
}

func newReplacer(pairs map[string]string) *replacer {
	keys := make([]string, 0, len(pairs))
	terms := make(map[string]string, len(pairs))
	for from, to := range pairs {
		keys = append(keys, regexp.QuoteMeta(from))
		terms[strings.ToLower(from)] = to
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	return &replacer{
		pattern: regexp.MustCompile(`(?i)` + strings.Join(keys, "|")),
		terms:   terms,
	}
}

func (r *replacer) replace(text string) string {
	return r.pattern.ReplaceAllStringFunc(text, func(m string) string {
		if to, ok := r.terms[strings.ToLower(m)]; ok {
			return to
		}
		return m
	})
}

func NewWordTranslator() *WordTranslator {
	forward := make(map[string]string, len(glossary))
	backward := make(map[string]string, len(glossary))
	for _, pair := range glossary {
		forward[pair[0]] = pair[1]
		backward[pair[1]] = pair[0]
	}
	return &WordTranslator{
		toSecondary: newReplacer(forward),
		toPrimary:   newReplacer(backward),
	}
}

func (t *WordTranslator) Translate(ctx context.Context, text string, target domain.Language) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if text == "" {
		return text, nil
	}

	switch target {
	case domain.SecondaryLanguage:
		return t.toSecondary.replace(text), nil
	case domain.PrimaryLanguage:
		return t.toPrimary.replace(text), nil
	}
	return "", &domain.ValidationError{Field: "language", Reason: "unsupported target " + string(target)}
}
