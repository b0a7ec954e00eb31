package pagebuilder

import (
	"io/fs"

	htmlrenderer "github.com/goliatone/go-pagebuilder/pkg/renderers/html"
	"github.com/goliatone/go-pagebuilder/pkg/templates"
)

// EmbeddedTemplates exposes the built-in HTML page shell so callers can copy
// or extend it without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return htmlrenderer.TemplatesFS()
}

// EmbeddedPresets exposes the built-in page template presets.
func EmbeddedPresets() fs.FS {
	return templates.EmbeddedFS()
}
