package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// variantTable maps every known layout discriminant of one block type to
// exactly one composition. Unknown or missing values resolve to fallback.
type variantTable[P any] struct {
	fallback string
	variants map[string]func(P) []Node
}

func (t variantTable[P]) pick(layout string) (string, func(P) []Node) {
	layout = strings.TrimSpace(layout)
	if compose, ok := t.variants[layout]; ok {
		return layout, compose
	}
	return t.fallback, t.variants[t.fallback]
}

func (t variantTable[P]) names() []string {
	out := make([]string, 0, len(t.variants))
	for name := range t.variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Default layouts used when a block's layout is missing or unrecognised.
const (
	DefaultHeaderLayout = "logo-nav-actions"
	DefaultFooterLayout = "single-row"
	DefaultHeroLayout   = "centered"
)

// HeaderLayouts lists the header variants.
func HeaderLayouts() []string { return headerVariants.names() }

// FooterLayouts lists the footer variants.
func FooterLayouts() []string { return footerVariants.names() }

// HeroLayouts lists the hero variants.
func HeroLayouts() []string { return heroVariants.names() }

// ResolveLayout returns the variant RenderBlock uses for blockType given the
// stored layout value. Types without variants report "".
func ResolveLayout(blockType, layout string) string {
	switch blockType {
	case document.TypeHeader:
		name, _ := headerVariants.pick(layout)
		return name
	case document.TypeFooter:
		name, _ := footerVariants.pick(layout)
		return name
	case document.TypeHero:
		name, _ := heroVariants.pick(layout)
		return name
	default:
		return ""
	}
}
