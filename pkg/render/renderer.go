package render

import (
	"context"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// Renderer encodes a Draft into a byte representation (HTML, JSON, ...).
// Implementations build on RenderDraft so every surface shares one tree.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, d document.Draft, options RenderOptions) ([]byte, error)
}
