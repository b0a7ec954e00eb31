package render

import (
	"strconv"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// ChromeAttr marks authoring-only nodes. Wrapper nodes keep their non-chrome
// children when stripped; every other chrome node is dropped whole.
const ChromeAttr = "data-chrome"

// Chrome roles.
const (
	ChromeWrapper = "wrapper"
	ChromeToolbar = "toolbar"
	ChromeLabel   = "label"
	ChromeGap     = "gap"
	ChromeSlot    = "slot"
)

// Context menu actions exposed by the block toolbar.
const (
	ActionSelect    = "select"
	ActionMoveUp    = "move-up"
	ActionMoveDown  = "move-down"
	ActionDuplicate = "duplicate"
	ActionRemove    = "remove"
)

func decorate(block document.Block, content Node, opts RenderOptions) Node {
	a := map[string]string{
		ChromeAttr:      ChromeWrapper,
		"class":         "pb-chrome",
		"data-block-id": block.ID,
		"data-zone":     string(block.Zone),
		"data-action":   ActionSelect,
		"tabindex":      "0",
	}
	if block.ID != "" && block.ID == opts.Selected {
		a["class"] += " pb-chrome--selected"
		a["aria-selected"] = "true"
	}
	if block.ID != "" && block.ID == opts.Hovered {
		a["class"] += " pb-chrome--hover"
	}
	if block.Zone == document.ZoneBody {
		a["draggable"] = "true"
	}

	label := block.Label
	if label == "" {
		label = block.Type
	}
	badge := el("span", attrs(ChromeAttr, ChromeLabel, "class", "pb-chrome-label"), text(label))
	return el("div", a, badge, content, toolbar(block))
}

func toolbar(block document.Block) Node {
	actions := []struct{ action, label string }{
		{ActionRemove, "Remove"},
	}
	if block.Zone == document.ZoneBody {
		actions = []struct{ action, label string }{
			{ActionMoveUp, "Move up"},
			{ActionMoveDown, "Move down"},
			{ActionDuplicate, "Duplicate"},
			{ActionRemove, "Remove"},
		}
	}
	buttons := make([]Node, 0, len(actions))
	for _, act := range actions {
		buttons = append(buttons, el("button", attrs(
			"type", "button",
			"data-action", act.action,
			"data-block-id", block.ID,
			"aria-label", act.label,
		), text(act.label)))
	}
	return el("div", attrs(ChromeAttr, ChromeToolbar, "class", "pb-chrome-toolbar", "role", "menu"), buttons...)
}

func dropGap(index int, opts RenderOptions) Node {
	class := "pb-drop-gap"
	if t := opts.DropTarget; t != nil && t.Zone == document.ZoneBody && t.Index == index {
		class += " pb-drop-gap--active"
	}
	return el("div", attrs(
		ChromeAttr, ChromeGap,
		"class", class,
		"data-zone", string(document.ZoneBody),
		"data-index", strconv.Itoa(index),
	))
}

func emptySlot(zone document.Zone, opts RenderOptions) Node {
	class := "pb-drop-slot"
	if t := opts.DropTarget; t != nil && t.Zone == zone {
		class += " pb-drop-slot--active"
	}
	return el("div", attrs(
		ChromeAttr, ChromeSlot,
		"class", class,
		"data-zone", string(zone),
	), text("Drop a "+string(zone)+" here"))
}

// StripChrome removes exactly the authoring chrome from n. For any draft,
// StripChrome(RenderDraft(d, edit)) equals RenderDraft(d, preview).
func StripChrome(n Node) Node {
	nodes := strip(n)
	if len(nodes) == 0 {
		return Node{}
	}
	return nodes[0]
}

func strip(n Node) []Node {
	switch n.Attrs[ChromeAttr] {
	case "":
	case ChromeWrapper:
		return stripAll(n.Children)
	default:
		return nil
	}
	out := Node{Tag: n.Tag, Text: n.Text, Attrs: n.Attrs}
	out.Children = stripAll(n.Children)
	return []Node{out}
}

func stripAll(children []Node) []Node {
	var out []Node
	for _, child := range children {
		out = append(out, strip(child)...)
	}
	return out
}
