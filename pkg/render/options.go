package render

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// Mode selects whether authoring chrome is composed around the shared tree.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeEdit    Mode = "edit"
)

// ParseMode accepts "edit" or "preview" (the default for "").
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModePreview:
		return ModePreview, nil
	case ModeEdit:
		return ModeEdit, nil
	default:
		return "", fmt.Errorf("render: unknown mode %q", raw)
	}
}

// DropTarget names a slot the pointer is hovering during a drag: the header
// slot, the footer slot, or body gap Index (0..len(body)).
type DropTarget struct {
	Zone  document.Zone `json:"zone"`
	Index int           `json:"index"`
}

// RenderOptions carry per-request data. Selected, Hovered and DropTarget only
// affect edit chrome.
type RenderOptions struct {
	Mode       Mode
	Selected   string
	Hovered    string
	DropTarget *DropTarget
	// Title is used by page-level renderers for the document title.
	Title string
	// Theme supplies the token CSS variables emitted by page renderers.
	Theme *theme.RendererConfig
}

func (o RenderOptions) editing() bool {
	return o.Mode == ModeEdit
}
