package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dfryer1193/folio/blog/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// maxPostTranslations bounds the posts translated at the same time.
const maxPostTranslations = 4

// SwitchResult summarises a language switch.
type SwitchResult struct {
	Language   domain.Language `json:"language"`
	Translated int             `json:"translated"`
	Failed     []string        `json:"failed,omitempty"`
}

// LanguageSwitcher translates the whole collection into another language and commits
// the result to the store in one step.
type LanguageSwitcher struct {
	store      *ContentStore
	translator domain.Translator
}

func NewLanguageSwitcher(store *ContentStore, translator domain.Translator) *LanguageSwitcher {
	return &LanguageSwitcher{store: store, translator: translator}
}

// Toggle switches to the language that is not active.
func (ls *LanguageSwitcher) Toggle(ctx context.Context) (*SwitchResult, error) {
	return ls.Switch(ctx, ls.store.Language().Other())
}

// Switch runs Synchronize over every post. A post that fails keeps its previous
// fields; the others are committed together with the new language. When some posts
// failed, the result is returned along with a *domain.BatchError naming them.
// Nothing is written to the remote store.
func (ls *LanguageSwitcher) Switch(ctx context.Context, target domain.Language) (*SwitchResult, error) {
	if _, err := domain.ParseLanguage(string(target)); err != nil {
		return nil, err
	}

	posts := ls.store.Posts()
	translated := make([]*domain.Post, len(posts))

	var mu sync.Mutex
	failed := make(map[string]error)

	g := new(errgroup.Group)
	g.SetLimit(maxPostTranslations)
	for i, p := range posts {
		g.Go(func() error {
			bundle, err := Synchronize(ctx, ls.translator, p, target)
			if err != nil {
				log.Warn().Err(err).Str("postID", p.ID).Str("language", string(target)).Msg("Failed to translate post")
				mu.Lock()
				failed[p.ID] = err
				mu.Unlock()
				return nil
			}

			out := p.Clone()
			out.ApplyBundle(bundle)
			translated[i] = out
			return nil
		})
	}
	// goroutines never return an error
	_ = g.Wait()

	batch := make([]*domain.Post, 0, len(posts))
	for _, p := range translated {
		if p != nil {
			batch = append(batch, p)
		}
	}

	if err := ls.store.ApplyTranslatedBatch(ctx, batch, target); err != nil {
		return nil, fmt.Errorf("failed to switch language to %s: %w", target, err)
	}

	result := &SwitchResult{Language: target, Translated: len(batch)}
	log.Info().Str("language", string(target)).Int("translated", len(batch)).Int("failed", len(failed)).Msg("Switched content language")

	if len(failed) > 0 {
		batchErr := &domain.BatchError{Failed: failed}
		for id := range failed {
			result.Failed = append(result.Failed, id)
		}
		sort.Strings(result.Failed)
		return result, batchErr
	}
	return result, nil
}
