// Package json renders a Draft's node tree as JSON for client surfaces that
// build their own DOM.
package json

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/render"
)

// Name is the registry name of this renderer.
const Name = "json"

// Payload is the document written by Render.
type Payload struct {
	Mode  render.Mode       `json:"mode"`
	Title string            `json:"title,omitempty"`
	Theme map[string]string `json:"cssVars,omitempty"`
	Tree  render.Node       `json:"tree"`
}

type Option func(*Renderer)

// WithIndent pretty-prints the payload.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(ctx context.Context, d document.Draft, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if options.Mode == "" {
		options.Mode = render.ModePreview
	}
	payload := Payload{
		Mode:  options.Mode,
		Title: options.Title,
		Tree:  render.RenderDraft(d, options),
	}
	if options.Theme != nil {
		payload.Theme = options.Theme.CSSVars
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(payload, "", r.indent)
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: marshal: %w", err)
	}
	return out, nil
}
