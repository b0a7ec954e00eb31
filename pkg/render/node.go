package render

import (
	"sort"
	"strconv"
	"strings"
)

// Node is one element of the visual tree. A node with an empty Tag is a text
// node carrying Text.
type Node struct {
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

// IsText reports whether n is a text node.
func (n Node) IsText() bool {
	return n.Tag == ""
}

// Attr returns the attribute value or "".
func (n Node) Attr(name string) string {
	return n.Attrs[name]
}

// HasClass reports whether the class attribute lists class.
func (n Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of that node.
func (n Node) Walk(fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns every descendant (n included) matching pred, in document
// order.
func (n Node) Find(pred func(Node) bool) []Node {
	var out []Node
	n.Walk(func(node Node) bool {
		if pred(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}

// TextContent concatenates every text node below n.
func (n Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(node Node) bool {
		if node.IsText() {
			b.WriteString(node.Text)
		}
		return true
	})
	return b.String()
}

// ByAttr matches nodes whose attribute name equals value.
func ByAttr(name, value string) func(Node) bool {
	return func(n Node) bool {
		v, ok := n.Attrs[name]
		return ok && v == value
	}
}

func el(tag string, attrs map[string]string, children ...Node) Node {
	kept := make([]Node, 0, len(children))
	for _, child := range children {
		if child.Tag == "" && child.Text == "" {
			continue
		}
		kept = append(kept, child)
	}
	if len(kept) == 0 {
		kept = nil
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	return Node{Tag: tag, Attrs: attrs, Children: kept}
}

func text(s string) Node {
	return Node{Text: s}
}

func attrs(pairs ...string) map[string]string {
	out := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		out[pairs[i]] = pairs[i+1]
	}
	return out
}

// style renders the non-empty declarations sorted by property name so the
// output is stable.
func style(decls map[string]string) string {
	keys := make([]string, 0, len(decls))
	for key, value := range decls {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+":"+decls[key])
	}
	return strings.Join(parts, ";")
}

func px(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func percent(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func classes(names ...string) string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			out = append(out, name)
		}
	}
	return strings.Join(out, " ")
}
