package domain

import (
	"fmt"
	"strings"
)

// BundleKind tags which language variants a FieldBundle carries.
type BundleKind int

const (
	PrimaryOnly BundleKind = iota
	PrimaryAndSecondary
)

func (k BundleKind) String() string {
	if k == PrimaryAndSecondary {
		return "primaryAndSecondary"
	}
	return "primaryOnly"
}

// FieldBundle is the bilingual content of a post as a tagged union: either only the
// primary variant, or both variants with the secondary one complete enough to stand
// on its own. Partially filled secondary variants cannot be represented.
type FieldBundle struct {
	kind      BundleKind
	primary   LocalizedFields
	secondary LocalizedFields
}

// NewPrimaryOnlyBundle wraps a primary variant.
func NewPrimaryOnlyBundle(primary LocalizedFields) FieldBundle {
	return FieldBundle{kind: PrimaryOnly, primary: primary.Clone()}
}

// NewBilingualBundle pairs both variants. The secondary variant needs a title, body
// and excerpt.
func NewBilingualBundle(primary, secondary LocalizedFields) (FieldBundle, error) {
	var missing []string
	if strings.TrimSpace(secondary.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(secondary.Content) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(secondary.Excerpt) == "" {
		missing = append(missing, "excerpt")
	}
	if len(missing) > 0 {
		return FieldBundle{}, fmt.Errorf("%w: secondary variant missing %s", ErrInconsistentBundle, strings.Join(missing, ", "))
	}

	return FieldBundle{
		kind:      PrimaryAndSecondary,
		primary:   primary.Clone(),
		secondary: secondary.Clone(),
	}, nil
}

// BundleOf classifies the language variants stored on a post.
func BundleOf(p *Post) (FieldBundle, error) {
	if p.Secondary == nil || p.Secondary.IsEmpty() {
		return NewPrimaryOnlyBundle(p.Primary), nil
	}
	return NewBilingualBundle(p.Primary, *p.Secondary)
}

func (b FieldBundle) Kind() BundleKind { return b.kind }

func (b FieldBundle) Primary() LocalizedFields { return b.primary.Clone() }

// Secondary returns the secondary variant and whether the bundle carries one.
func (b FieldBundle) Secondary() (LocalizedFields, bool) {
	if b.kind != PrimaryAndSecondary {
		return LocalizedFields{}, false
	}
	return b.secondary.Clone(), true
}

// ApplyBundle replaces the post's language variants with the bundle's.
func (p *Post) ApplyBundle(b FieldBundle) {
	p.Primary = b.Primary()
	if s, ok := b.Secondary(); ok {
		p.Secondary = &s
		return
	}
	p.Secondary = nil
}
