// Package template defines the template engine seam used by page-level
// renderers to wrap the rendered node tree in a document shell.
package template
