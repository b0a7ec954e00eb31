package render

import (
	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// RenderDraft composes the page: header, body blocks in order, footer. In
// edit mode the page is wrapped in canvas chrome with drop gaps between body
// blocks and placeholders for empty header and footer slots.
func RenderDraft(d document.Draft, opts RenderOptions) Node {
	editing := opts.editing()

	var header, footer Node
	switch {
	case d.Header != nil:
		header = renderBlock(*d.Header, opts)
	case editing:
		header = emptySlot(document.ZoneHeader, opts)
	}
	switch {
	case d.Footer != nil:
		footer = renderBlock(*d.Footer, opts)
	case editing:
		footer = emptySlot(document.ZoneFooter, opts)
	}

	body := make([]Node, 0, 2*len(d.Body)+1)
	for i, block := range d.Body {
		if editing {
			body = append(body, dropGap(i, opts))
		}
		body = append(body, renderBlock(block, opts))
	}
	if editing {
		body = append(body, dropGap(len(d.Body), opts))
	}

	page := el("div", attrs("class", "pb-page"),
		header,
		el("main", attrs("class", "pb-body"), body...),
		footer,
	)
	if !editing {
		return page
	}
	return el("div", attrs(ChromeAttr, ChromeWrapper, "class", "pb-canvas"), page)
}
