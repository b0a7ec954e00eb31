package render

import (
	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
)

var headerVariants = variantTable[document.HeaderProps]{
	fallback: DefaultHeaderLayout,
	variants: map[string]func(document.HeaderProps) []Node{
		"logo-nav-actions": func(p document.HeaderProps) []Node {
			return []Node{logo(p.Logo), navList("pb-nav", p.Nav), actions(p.Actions)}
		},
		"nav-logo-actions": func(p document.HeaderProps) []Node {
			return []Node{navList("pb-nav", p.Nav), logo(p.Logo), actions(p.Actions)}
		},
		"logo-actions": func(p document.HeaderProps) []Node {
			return []Node{logo(p.Logo), actions(p.Actions)}
		},
		"logo-search-actions": func(p document.HeaderProps) []Node {
			return []Node{logo(p.Logo), search(p.Search), actions(p.Actions)}
		},
		"logo-burger": func(p document.HeaderProps) []Node {
			burger := el("button", attrs(
				"class", "pb-burger",
				"type", "button",
				"aria-label", "Open menu",
				"aria-expanded", "false",
			), text("☰"))
			drawer := navList("pb-nav pb-nav--drawer", p.Nav)
			if drawer.Tag != "" {
				drawer.Attrs["hidden"] = "hidden"
			}
			return []Node{logo(p.Logo), burger, drawer}
		},
	},
}

var footerVariants = variantTable[document.FooterProps]{
	fallback: DefaultFooterLayout,
	variants: map[string]func(document.FooterProps) []Node{
		"single-row": func(p document.FooterProps) []Node {
			return []Node{el("div", attrs("class", "pb-footer-row"),
				logo(p.Logo),
				navList("pb-footer-links", p.Links),
				navList("pb-social", p.Social),
				copyright(p.Copyright),
			)}
		},
		"three-column": func(p document.FooterProps) []Node {
			return []Node{footerColumns(p)}
		},
		"centered": func(p document.FooterProps) []Node {
			return []Node{el("div", attrs("class", "pb-footer-center"),
				logo(p.Logo),
				navList("pb-footer-links", p.Links),
				navList("pb-social", p.Social),
				copyright(p.Copyright),
			)}
		},
		"rich": func(p document.FooterProps) []Node {
			return []Node{
				el("div", attrs("class", "pb-footer-top"), footerColumns(p), newsletter(p.Newsletter)),
				el("div", attrs("class", "pb-footer-bottom"), copyright(p.Copyright), navList("pb-social", p.Social)),
			}
		},
		"minimal": func(p document.FooterProps) []Node {
			return []Node{copyright(p.Copyright)}
		},
	},
}

var heroVariants = variantTable[document.HeroProps]{
	fallback: DefaultHeroLayout,
	variants: map[string]func(document.HeroProps) []Node{
		"centered": func(p document.HeroProps) []Node {
			return []Node{heroText(p), heroImage(p.Image)}
		},
		"split": func(p document.HeroProps) []Node {
			return []Node{el("div", attrs("class", "pb-hero-split"), heroText(p), heroImage(p.Image))}
		},
		"background": func(p document.HeroProps) []Node {
			return []Node{el("div", attrs("class", "pb-hero-overlay"), heroText(p))}
		},
	},
}

// RenderBlock builds the tree of one block. The tree is identical in both
// modes; edit mode only wraps it in chrome. Unknown block types render a
// placeholder, never an empty node.
func RenderBlock(block document.Block, mode Mode) Node {
	return renderBlock(block, RenderOptions{Mode: mode})
}

func renderBlock(block document.Block, opts RenderOptions) Node {
	content := blockContent(block)
	if !opts.editing() {
		return content
	}
	return decorate(block, content, opts)
}

func blockContent(block document.Block) Node {
	props, err := document.DecodeProps(block)
	if err != nil {
		// Known types with mismatched props render their zero variant.
		if !document.KnownType(block.Type) {
			return placeholder(block)
		}
		props = zeroProps(block.Type)
	}

	switch p := props.(type) {
	case document.HeaderProps:
		variant, compose := headerVariants.pick(p.Layout)
		a := blockAttrs(block, "pb-header", variant)
		a["style"] = style(map[string]string{
			"height":     px(p.Height),
			"background": properties.CSSValue(p.Background),
			"color":      properties.CSSValue(p.TextColor),
		})
		if p.Sticky {
			a["data-sticky"] = "true"
		}
		return el("header", a, compose(p)...)
	case document.FooterProps:
		variant, compose := footerVariants.pick(p.Layout)
		a := blockAttrs(block, "pb-footer", variant)
		a["style"] = style(map[string]string{
			"min-height": px(p.Height),
			"background": properties.CSSValue(p.Background),
			"color":      properties.CSSValue(p.TextColor),
		})
		return el("footer", a, compose(p)...)
	case document.HeroProps:
		variant, compose := heroVariants.pick(p.Layout)
		a := blockAttrs(block, "pb-hero", variant)
		decls := map[string]string{
			"background": properties.CSSValue(p.Background),
			"text-align": p.Align,
		}
		if variant == "background" && p.Image.Src != "" {
			decls["background-image"] = "url(" + cssURL(p.Image.Src) + ")"
		}
		a["style"] = style(decls)
		return el("section", a, compose(p)...)
	case document.TextProps:
		a := blockAttrs(block, "pb-text", "")
		a["style"] = style(map[string]string{
			"text-align": p.Align,
			"font-size":  px(p.Size),
			"color":      properties.CSSValue(p.Color),
		})
		return el("p", a, text(p.Text))
	case document.ImageProps:
		a := blockAttrs(block, "pb-image", "")
		if p.Rounded {
			a["class"] += " pb-image--rounded"
		}
		a["style"] = style(map[string]string{"width": percent(p.Width)})
		media := el("div", attrs("class", "pb-image-empty"), text("No image selected"))
		if p.Image.Src != "" {
			media = el("img", attrs("src", p.Image.Src, "alt", p.Image.Alt))
		}
		var caption Node
		if p.Caption != "" {
			caption = el("figcaption", nil, text(p.Caption))
		}
		return el("figure", a, media, caption)
	case document.LinksProps:
		variant := "buttons"
		if p.Style == "list" {
			variant = "list"
		}
		a := blockAttrs(block, "pb-links", variant)
		var title Node
		if p.Title != "" {
			title = el("h2", attrs("class", "pb-links-title"), text(p.Title))
		}
		if variant == "list" {
			return el("section", a, title, navList("pb-link-list", p.Items))
		}
		buttons := make([]Node, 0, len(p.Items))
		for _, item := range p.Items {
			buttons = append(buttons, el("a", attrs(
				"class", "pb-button",
				"href", linkTarget(item),
				"style", style(map[string]string{"background": properties.CSSValue(p.Color)}),
			), text(item.Label)))
		}
		return el("section", a, title, el("div", attrs("class", "pb-link-buttons"), buttons...))
	case document.SpacerProps:
		a := blockAttrs(block, "pb-spacer", "")
		a["aria-hidden"] = "true"
		a["style"] = style(map[string]string{"height": px(p.Height)})
		return el("div", a)
	}
	return placeholder(block)
}

func zeroProps(blockType string) document.Props {
	switch blockType {
	case document.TypeHeader:
		return document.HeaderProps{}
	case document.TypeFooter:
		return document.FooterProps{}
	case document.TypeHero:
		return document.HeroProps{}
	case document.TypeText:
		return document.TextProps{}
	case document.TypeImage:
		return document.ImageProps{}
	case document.TypeLinks:
		return document.LinksProps{}
	default:
		return document.SpacerProps{}
	}
}

func placeholder(block document.Block) Node {
	a := blockAttrs(block, "pb-placeholder", "")
	a["role"] = "note"
	return el("div", a, text("Unsupported block \""+block.Type+"\""))
}

func blockAttrs(block document.Block, class, variant string) map[string]string {
	out := map[string]string{
		"class":           classes("pb-block", class, modifier(class, variant)),
		"data-block-id":   block.ID,
		"data-block-type": block.Type,
	}
	if variant != "" {
		out["data-variant"] = variant
	}
	return out
}

func modifier(class, variant string) string {
	if variant == "" {
		return ""
	}
	return class + "--" + variant
}

func logo(l document.Logo) Node {
	var img, label Node
	if l.Src != "" {
		img = el("img", attrs("src", l.Src, "alt", l.Text))
	}
	if l.Text != "" {
		label = el("span", attrs("class", "pb-logo-text"), text(l.Text))
	}
	if img.Tag == "" && label.Tag == "" {
		return Node{}
	}
	return el("a", attrs("class", "pb-logo", "href", "#"), img, label)
}

func navList(class string, items []document.LinkItem) Node {
	if len(items) == 0 {
		return Node{}
	}
	lis := make([]Node, 0, len(items))
	for _, item := range items {
		lis = append(lis, el("li", nil, el("a", attrs("href", linkTarget(item)), text(item.Label))))
	}
	return el("nav", attrs("class", class), el("ul", nil, lis...))
}

func actions(items []document.LinkItem) Node {
	if len(items) == 0 {
		return Node{}
	}
	buttons := make([]Node, 0, len(items))
	for _, item := range items {
		buttons = append(buttons, el("a", attrs("class", "pb-button", "href", linkTarget(item)), text(item.Label)))
	}
	return el("div", attrs("class", "pb-actions"), buttons...)
}

func search(s document.Search) Node {
	placeholderText := s.Placeholder
	if placeholderText == "" {
		placeholderText = "Search"
	}
	return el("form", attrs("class", "pb-search", "role", "search"),
		el("input", attrs("type", "search", "name", "q", "placeholder", placeholderText)),
	)
}

func copyright(s string) Node {
	if s == "" {
		return Node{}
	}
	return el("p", attrs("class", "pb-copyright"), text(s))
}

func footerColumns(p document.FooterProps) Node {
	columns := p.Columns
	if len(columns) == 0 {
		columns = []document.FooterColumn{
			{Title: p.Logo.Text},
			{Title: "Links", Links: p.Links},
			{Title: "Social", Links: p.Social},
		}
	}
	cols := make([]Node, 0, len(columns))
	for _, column := range columns {
		var title Node
		if column.Title != "" {
			title = el("h4", nil, text(column.Title))
		}
		cols = append(cols, el("div", attrs("class", "pb-footer-column"), title, navList("pb-footer-links", column.Links)))
	}
	return el("div", attrs("class", "pb-footer-columns"), cols...)
}

func newsletter(n document.Newsletter) Node {
	button := n.ButtonLabel
	if button == "" {
		button = "Subscribe"
	}
	var title Node
	if n.Title != "" {
		title = el("h4", nil, text(n.Title))
	}
	return el("form", attrs("class", "pb-newsletter"),
		title,
		el("input", attrs("type", "email", "name", "email", "placeholder", n.Placeholder)),
		el("button", attrs("type", "submit"), text(button)),
	)
}

func heroText(p document.HeroProps) Node {
	var title, subtitle, cta Node
	if p.Title != "" {
		title = el("h1", nil, text(p.Title))
	}
	if p.Subtitle != "" {
		subtitle = el("p", attrs("class", "pb-hero-subtitle"), text(p.Subtitle))
	}
	if p.CTA.Label != "" {
		cta = el("a", attrs("class", "pb-button", "href", linkTarget(p.CTA)), text(p.CTA.Label))
	}
	return el("div", attrs("class", "pb-hero-text"), title, subtitle, cta)
}

func heroImage(img document.Image) Node {
	if img.Src == "" {
		return Node{}
	}
	return el("figure", attrs("class", "pb-hero-media"), el("img", attrs("src", img.Src, "alt", img.Alt)))
}

func linkTarget(item document.LinkItem) string {
	if target := item.Target(); target != "" {
		return target
	}
	return "#"
}

func cssURL(src string) string {
	return "'" + escapeCSSString(src) + "'"
}

func escapeCSSString(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\'', '\\', '(', ')', '\n', '\r':
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
