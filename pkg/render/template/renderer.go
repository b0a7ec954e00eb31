package template

import (
	"io"
)

// TemplateRenderer wraps an encoded page body in a document shell. The
// gotemplate subpackage provides the pongo2-backed implementation.
type TemplateRenderer interface {
	// RenderTemplate executes a named shell template. The result is also
	// copied to every writer in out.
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
