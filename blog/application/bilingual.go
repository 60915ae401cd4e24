package application

import (
	"context"
	"fmt"

	"github.com/dfryer1193/folio/blog/domain"
	"golang.org/x/sync/errgroup"
)

// maxFieldTranslations bounds the concurrent translator calls for one post.
const maxFieldTranslations = 8

// Synchronize produces the post's language variants after translating toward
// target. It has no side effects.
//
// Toward the secondary language every primary field is translated; an empty subtitle
// or meta field stays empty. Toward the primary language each field is translated
// from its secondary value when there is one and from the primary value otherwise;
// an empty secondary subtitle or meta field keeps the current primary value.
//
// Any failed call aborts the post with a *domain.TranslationError. A post whose
// secondary variant is only partially filled is rejected with
// domain.ErrInconsistentBundle.
func Synchronize(ctx context.Context, tr domain.Translator, p *domain.Post, target domain.Language) (domain.FieldBundle, error) {
	if p == nil {
		return domain.FieldBundle{}, fmt.Errorf("post cannot be nil")
	}
	if _, err := domain.ParseLanguage(string(target)); err != nil {
		return domain.FieldBundle{}, err
	}

	bundle, err := domain.BundleOf(p)
	if err != nil {
		return domain.FieldBundle{}, err
	}

	primary := bundle.Primary()
	secondary, bilingual := bundle.Secondary()

	if target == domain.SecondaryLanguage {
		out, err := translateFields(ctx, tr, target, primary, fieldPlan{})
		if err != nil {
			return domain.FieldBundle{}, err
		}
		return domain.NewBilingualBundle(primary, out)
	}

	src := primary
	if bilingual {
		src = overlay(primary, secondary)
	}
	out, err := translateFields(ctx, tr, target, src, fieldPlan{keep: primary, keepOptional: true})
	if err != nil {
		return domain.FieldBundle{}, err
	}
	if !bilingual {
		return domain.NewPrimaryOnlyBundle(out), nil
	}
	return domain.NewBilingualBundle(out, secondary)
}

// overlay returns base with every non-empty field of top laid over it.
func overlay(base, top domain.LocalizedFields) domain.LocalizedFields {
	out := base.Clone()
	if top.Title != "" {
		out.Title = top.Title
	}
	if top.Content != "" {
		out.Content = top.Content
	}
	if top.Excerpt != "" {
		out.Excerpt = top.Excerpt
	}
	if len(top.Categories) > 0 {
		out.Categories = append([]string(nil), top.Categories...)
	}
	if len(top.Tags) > 0 {
		out.Tags = append([]string(nil), top.Tags...)
	}

	// Optional fields are only translated when the top layer has them.
	out.Subtitle = top.Subtitle
	out.MetaTitle = top.MetaTitle
	out.MetaDescription = top.MetaDescription
	return out
}

// fieldPlan says what happens to empty optional fields (subtitle and meta). By default
// they stay empty; with keepOptional the value from keep is used instead.
type fieldPlan struct {
	keep         domain.LocalizedFields
	keepOptional bool
}

func translateFields(ctx context.Context, tr domain.Translator, target domain.Language, src domain.LocalizedFields, plan fieldPlan) (domain.LocalizedFields, error) {
	out := domain.LocalizedFields{
		Categories: make([]string, len(src.Categories)),
		Tags:       make([]string, len(src.Tags)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFieldTranslations)

	// each call writes its own destination, and Wait orders those writes before the return
	run := func(field, text string, dst *string) {
		g.Go(func() error {
			translated, err := tr.Translate(gctx, text, target)
			if err != nil {
				return &domain.TranslationError{Field: field, Err: err}
			}
			*dst = translated
			return nil
		})
	}

	optional := func(field, text, kept string, dst *string) {
		if text != "" {
			run(field, text, dst)
			return
		}
		if plan.keepOptional {
			*dst = kept
		}
	}

	run("title", src.Title, &out.Title)
	run("content", src.Content, &out.Content)
	run("excerpt", src.Excerpt, &out.Excerpt)
	optional("subtitle", src.Subtitle, plan.keep.Subtitle, &out.Subtitle)
	optional("metaTitle", src.MetaTitle, plan.keep.MetaTitle, &out.MetaTitle)
	optional("metaDescription", src.MetaDescription, plan.keep.MetaDescription, &out.MetaDescription)
	for i, c := range src.Categories {
		run(fmt.Sprintf("categories[%d]", i), c, &out.Categories[i])
	}
	for i, t := range src.Tags {
		run(fmt.Sprintf("tags[%d]", i), t, &out.Tags[i])
	}

	if err := g.Wait(); err != nil {
		return domain.LocalizedFields{}, err
	}
	return out, nil
}
