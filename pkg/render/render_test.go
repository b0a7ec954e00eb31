package render

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

func richDraft(t *testing.T, headerLayout, footerLayout string) document.Draft {
	t.Helper()
	d := testsupport.SampleDraft(t, 2)
	header := testsupport.Block(t, "h", document.TypeHeader, map[string]any{
		"layout":     headerLayout,
		"height":     72,
		"background": "token(surface)",
		"logo":       map[string]any{"text": "Acme", "src": "/logo.png"},
		"nav":        []any{map[string]any{"label": "Home", "href": "/"}, map[string]any{"label": "Blog", "url": "/blog"}},
		"actions":    []any{map[string]any{"label": "Contact", "href": "#contact"}},
		"search":     map[string]any{"placeholder": "Find"},
	})
	footer := testsupport.Block(t, "f", document.TypeFooter, map[string]any{
		"layout":     footerLayout,
		"copyright":  "© Acme",
		"links":      []any{map[string]any{"label": "Privacy", "href": "/privacy"}},
		"social":     []any{map[string]any{"label": "Mastodon", "url": "https://example.social"}},
		"newsletter": map[string]any{"title": "News", "placeholder": "you@example.com"},
	})
	d.Header = &header
	d.Footer = &footer
	d.Body = append(d.Body,
		testsupport.Block(t, "hero", document.TypeHero, map[string]any{"layout": "split", "title": "Hi", "image": map[string]any{"src": "/me.jpg"}}),
		testsupport.Block(t, "links", document.TypeLinks, map[string]any{"style": "buttons", "items": []any{map[string]any{"label": "Site", "href": "https://x.dev"}}}),
		testsupport.Block(t, "img", document.TypeImage, map[string]any{"caption": "Empty"}),
		testsupport.Block(t, "gap", document.TypeSpacer, map[string]any{"height": 24}),
		document.Block{ID: "x", Type: "carousel", Zone: document.ZoneBody},
	)
	return d
}

func TestDualMode_StripChromeMatchesPreview(t *testing.T) {
	for _, header := range HeaderLayouts() {
		for _, footer := range FooterLayouts() {
			d := richDraft(t, header, footer)
			preview := RenderDraft(d, RenderOptions{Mode: ModePreview})
			edit := RenderDraft(d, RenderOptions{
				Mode:       ModeEdit,
				Selected:   "b1",
				Hovered:    "hero",
				DropTarget: &DropTarget{Zone: document.ZoneBody, Index: 1},
			})
			if diff := cmp.Diff(preview, StripChrome(edit)); diff != "" {
				t.Fatalf("%s/%s: trees differ (-preview +stripped edit):\n%s", header, footer, diff)
			}
		}
	}
}

func TestDualMode_EmptyDraft(t *testing.T) {
	d := document.Draft{Body: []document.Block{}}
	preview := RenderDraft(d, RenderOptions{})
	edit := RenderDraft(d, RenderOptions{Mode: ModeEdit, DropTarget: &DropTarget{Zone: document.ZoneHeader}})

	if diff := cmp.Diff(preview, StripChrome(edit)); diff != "" {
		t.Fatalf("trees differ (-preview +stripped edit):\n%s", diff)
	}
	slots := edit.Find(ByAttr(ChromeAttr, ChromeSlot))
	if len(slots) != 2 || !slots[0].HasClass("pb-drop-slot--active") {
		t.Fatalf("expected active header slot and footer slot, got %+v", slots)
	}
}

func TestRenderBlock_UnknownHeaderLayoutFallsBack(t *testing.T) {
	for _, layout := range []string{"diagonal", ""} {
		block := testsupport.Block(t, "h", document.TypeHeader, map[string]any{
			"layout": layout,
			"logo":   map[string]any{"text": "Acme"},
			"nav":    []any{map[string]any{"label": "Home", "href": "/"}},
		})
		node := RenderBlock(block, ModePreview)

		if got := node.Attr("data-variant"); got != DefaultHeaderLayout {
			t.Fatalf("layout %q: variant = %q", layout, got)
		}
		if len(node.Children) == 0 {
			t.Fatalf("layout %q: empty header", layout)
		}
		if !strings.Contains(node.TextContent(), "Home") {
			t.Fatalf("layout %q: nav missing from %q", layout, node.TextContent())
		}
	}
}

func TestRenderBlock_VariantsCompose(t *testing.T) {
	header := func(layout string) Node {
		return RenderBlock(testsupport.Block(t, "h", document.TypeHeader, map[string]any{
			"layout":  layout,
			"logo":    map[string]any{"text": "Acme"},
			"nav":     []any{map[string]any{"label": "Home", "href": "/"}},
			"actions": []any{map[string]any{"label": "Go", "href": "/go"}},
		}), ModePreview)
	}

	if got := header("nav-logo-actions").Children[0].Tag; got != "nav" {
		t.Fatalf("nav-logo-actions starts with %q", got)
	}
	if got := header("logo-actions").Find(func(n Node) bool { return n.Tag == "nav" }); len(got) != 0 {
		t.Fatalf("logo-actions rendered a nav")
	}
	if got := header("logo-search-actions").Find(ByAttr("type", "search")); len(got) != 1 {
		t.Fatalf("logo-search-actions without search input")
	}
	burger := header("logo-burger")
	if got := burger.Find(ByAttr("class", "pb-burger")); len(got) != 1 {
		t.Fatalf("logo-burger without burger button")
	}
	if drawer := burger.Find(ByAttr("hidden", "hidden")); len(drawer) != 1 {
		t.Fatalf("logo-burger drawer should start hidden")
	}

	minimal := RenderBlock(testsupport.Block(t, "f", document.TypeFooter, map[string]any{
		"layout": "minimal", "copyright": "© Acme",
		"links": []any{map[string]any{"label": "Privacy", "href": "/p"}},
	}), ModePreview)
	if diff := cmp.Diff("© Acme", minimal.TextContent()); diff != "" {
		t.Fatalf("minimal footer content (-want +got):\n%s", diff)
	}

	rich := RenderBlock(testsupport.Block(t, "f", document.TypeFooter, map[string]any{"layout": "rich"}), ModePreview)
	if got := rich.Find(ByAttr("class", "pb-newsletter")); len(got) != 1 {
		t.Fatalf("rich footer without newsletter form")
	}
}

func TestRenderBlock_Body(t *testing.T) {
	textNode := RenderBlock(testsupport.Block(t, "t", document.TypeText, map[string]any{
		"text": "Hello", "align": "center", "size": 18, "color": "token(ink)",
	}), ModePreview)
	want := Node{
		Tag: "p",
		Attrs: map[string]string{
			"class":           "pb-block pb-text",
			"data-block-id":   "t",
			"data-block-type": "text",
			"style":           "color:var(--pb-ink);font-size:18px;text-align:center",
		},
		Children: []Node{{Text: "Hello"}},
	}
	if diff := cmp.Diff(want, textNode); diff != "" {
		t.Fatalf("text node mismatch (-want +got):\n%s", diff)
	}

	list := RenderBlock(testsupport.Block(t, "l", document.TypeLinks, map[string]any{
		"style": "list",
		"items": []any{map[string]any{"label": "Blog", "url": "/blog"}, map[string]any{"label": "Nowhere"}},
	}), ModePreview)
	var hrefs []string
	for _, a := range list.Find(func(n Node) bool { return n.Tag == "a" }) {
		hrefs = append(hrefs, a.Attr("href"))
	}
	if diff := cmp.Diff([]string{"/blog", "#"}, hrefs); diff != "" {
		t.Fatalf("link targets (-want +got):\n%s", diff)
	}

	unknown := RenderBlock(document.Block{ID: "x", Type: "carousel", Zone: document.ZoneBody}, ModePreview)
	if !unknown.HasClass("pb-placeholder") || unknown.TextContent() == "" {
		t.Fatalf("unknown type should render a placeholder, got %+v", unknown)
	}

	mismatched := RenderBlock(document.Block{ID: "s", Type: document.TypeSpacer, Zone: document.ZoneBody, Props: map[string]any{"height": "tall"}}, ModePreview)
	if !mismatched.HasClass("pb-spacer") {
		t.Fatalf("mismatched props should still render the type, got %+v", mismatched)
	}
}

func TestEditChrome(t *testing.T) {
	d := testsupport.SampleDraft(t, 3)
	edit := RenderDraft(d, RenderOptions{Mode: ModeEdit, Selected: "b1"})

	wrappers := edit.Find(func(n Node) bool {
		return n.Attr(ChromeAttr) == ChromeWrapper && n.Attr("data-block-id") != ""
	})
	var ids []string
	for _, w := range wrappers {
		ids = append(ids, w.Attr("data-block-id"))
	}
	if diff := cmp.Diff([]string{"h", "b0", "b1", "b2", "f"}, ids); diff != "" {
		t.Fatalf("wrapped blocks (-want +got):\n%s", diff)
	}
	if !wrappers[2].HasClass("pb-chrome--selected") || wrappers[1].HasClass("pb-chrome--selected") {
		t.Fatalf("selection ring on the wrong block")
	}

	gaps := edit.Find(ByAttr(ChromeAttr, ChromeGap))
	if len(gaps) != 4 {
		t.Fatalf("expected len(body)+1 gaps, got %d", len(gaps))
	}

	var headerActions, bodyActions []string
	for _, b := range wrappers[0].Find(func(n Node) bool { return n.Tag == "button" }) {
		headerActions = append(headerActions, b.Attr("data-action"))
	}
	for _, b := range wrappers[1].Find(func(n Node) bool { return n.Tag == "button" }) {
		bodyActions = append(bodyActions, b.Attr("data-action"))
	}
	if diff := cmp.Diff([]string{ActionRemove}, headerActions); diff != "" {
		t.Fatalf("header actions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{ActionMoveUp, ActionMoveDown, ActionDuplicate, ActionRemove}, bodyActions); diff != "" {
		t.Fatalf("body actions (-want +got):\n%s", diff)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModePreview {
		t.Fatalf("empty mode = %q, %v", m, err)
	}
	if m, err := ParseMode("EDIT"); err != nil || m != ModeEdit {
		t.Fatalf("EDIT = %q, %v", m, err)
	}
	if _, err := ParseMode("draft"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(_ context.Context, d document.Draft, _ RenderOptions) ([]byte, error) {
	return []byte(strings.Join(d.IDs(), ",")), nil
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(stubRenderer{name: "plain"})
	reg.MustRegister(stubRenderer{name: "other"})

	if err := reg.Register(stubRenderer{name: "PLAIN"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	out, contentType, err := reg.Render(context.Background(), "", testsupport.SampleDraft(t, 1), RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != "h,b0,f" || contentType != "text/plain" {
		t.Fatalf("unexpected output %q (%s)", out, contentType)
	}
	if _, err := reg.Get("pdf"); !document.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if diff := cmp.Diff([]string{"other", "plain"}, reg.List()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}
