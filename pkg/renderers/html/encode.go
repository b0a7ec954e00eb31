package html

import (
	stdhtml "html"
	"net/url"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-pagebuilder/pkg/render"
)

var voidElements = map[string]bool{
	"area": true, "br": true, "col": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "wbr": true,
}

var urlAttrs = map[string]bool{"href": true, "src": true, "action": true}

var safeSchemes = map[string]bool{"http": true, "https": true, "mailto": true, "tel": true}

// Encoder writes a node tree as HTML. Text nodes pass through the bluemonday
// policy, so markup typed into a text property is stripped and entities are
// escaped. URL attributes with an unsafe scheme are replaced by "#".
type Encoder struct {
	policy *bluemonday.Policy
}

// NewEncoder builds an encoder. A nil policy uses bluemonday.StrictPolicy.
func NewEncoder(policy *bluemonday.Policy) *Encoder {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}
	return &Encoder{policy: policy}
}

// Encode returns the HTML for n.
func (e *Encoder) Encode(n render.Node) string {
	var b strings.Builder
	e.write(&b, n)
	return b.String()
}

func (e *Encoder) write(b *strings.Builder, n render.Node) {
	if n.IsText() {
		b.WriteString(e.policy.Sanitize(n.Text))
		return
	}
	tag := strings.ToLower(n.Tag)
	b.WriteByte('<')
	b.WriteString(tag)

	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := n.Attrs[name]
		if urlAttrs[name] {
			value = SafeURL(value)
		}
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(stdhtml.EscapeString(value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[tag] {
		return
	}
	for _, child := range n.Children {
		e.write(b, child)
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

// SafeURL keeps relative references, fragments and http(s), mailto and tel
// URLs. Anything else (javascript:, data:, unparsable input) becomes "#".
func SafeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "#"
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "#"
	}
	if u.Scheme == "" {
		return trimmed
	}
	if safeSchemes[strings.ToLower(u.Scheme)] {
		return trimmed
	}
	return "#"
}
