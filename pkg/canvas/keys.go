package canvas

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// Key is a key press with its modifiers. Name is lower case ("escape",
// "delete", "up", "d").
type Key struct {
	Name  string
	Ctrl  bool
	Meta  bool
	Shift bool
}

var keyAliases = map[string]string{
	"esc":       "escape",
	"del":       "delete",
	"arrowup":   "up",
	"arrowdown": "down",
	"↑":         "up",
	"↓":         "down",
}

// ParseKey reads chords such as "ctrl+d", "cmd+shift+z" or "Escape".
func ParseKey(raw string) (Key, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(raw)), "+")
	var key Key
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if i < len(parts)-1 {
			switch part {
			case "ctrl", "control":
				key.Ctrl = true
			case "cmd", "meta", "command", "super":
				key.Meta = true
			case "shift":
				key.Shift = true
			default:
				return Key{}, fmt.Errorf("canvas: unknown modifier %q in %q", part, raw)
			}
			continue
		}
		if part == "" {
			return Key{}, fmt.Errorf("canvas: empty key in %q", raw)
		}
		if alias, ok := keyAliases[part]; ok {
			part = alias
		}
		key.Name = part
	}
	return key, nil
}

func (k Key) command() bool { return k.Ctrl || k.Meta }

func (k Key) plain() bool { return !k.Ctrl && !k.Meta && !k.Shift }

func (k Key) String() string {
	var parts []string
	if k.Ctrl {
		parts = append(parts, "ctrl")
	}
	if k.Meta {
		parts = append(parts, "cmd")
	}
	if k.Shift {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, k.Name), "+")
}

// Effect asks the surface to do something outside the editor.
type Effect string

const (
	EffectNone    Effect = ""
	EffectExit    Effect = "exit"
	EffectPreview Effect = "preview"
)

// KeyResult reports what a key press did.
type KeyResult struct {
	Handled    bool   `json:"handled"`
	Effect     Effect `json:"effect,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

type binding struct {
	name string
	// always bindings also fire while a text input has focus.
	always bool
	match  func(Key) bool
	run    func(*Controller, context.Context, Key) (KeyResult, error)
}

var bindings = []binding{
	{
		name:   "escape",
		always: true,
		match:  func(k Key) bool { return k.Name == "escape" },
		run: func(c *Controller, _ context.Context, _ Key) (KeyResult, error) {
			if c.drag.phase() != PhaseIdle {
				c.Cancel()
				return KeyResult{Handled: true}, nil
			}
			if c.selected != "" {
				return KeyResult{Handled: true}, c.Select("")
			}
			return KeyResult{Handled: true, Effect: EffectExit}, nil
		},
	},
	{
		name:  "remove",
		match: func(k Key) bool { return k.plain() && (k.Name == "delete" || k.Name == "backspace") },
		run: func(c *Controller, ctx context.Context, _ Key) (KeyResult, error) {
			if c.selected == "" {
				return KeyResult{}, nil
			}
			return KeyResult{Handled: true}, c.Remove(ctx, c.selected)
		},
	},
	{
		name:  "duplicate",
		match: func(k Key) bool { return k.command() && !k.Shift && k.Name == "d" },
		run: func(c *Controller, ctx context.Context, _ Key) (KeyResult, error) {
			if !c.bodySelected() {
				return KeyResult{}, nil
			}
			_, err := c.Duplicate(ctx, c.selected)
			return KeyResult{Handled: true}, err
		},
	},
	{
		name:  "reorder",
		match: func(k Key) bool { return k.command() && !k.Shift && (k.Name == "up" || k.Name == "down") },
		run: func(c *Controller, ctx context.Context, k Key) (KeyResult, error) {
			if !c.bodySelected() {
				return KeyResult{}, nil
			}
			delta := 1
			if k.Name == "up" {
				delta = -1
			}
			return KeyResult{Handled: true}, c.Move(ctx, c.selected, delta)
		},
	},
	{
		name:  "undo",
		match: func(k Key) bool { return k.command() && !k.Shift && k.Name == "z" },
		run: func(c *Controller, ctx context.Context, _ Key) (KeyResult, error) {
			if !c.history.CanUndo() {
				return KeyResult{Handled: true}, nil
			}
			return KeyResult{Handled: true}, c.Undo(ctx)
		},
	},
	{
		name:  "redo",
		match: func(k Key) bool { return k.command() && k.Shift && k.Name == "z" },
		run: func(c *Controller, ctx context.Context, _ Key) (KeyResult, error) {
			if !c.history.CanRedo() {
				return KeyResult{Handled: true}, nil
			}
			return KeyResult{Handled: true}, c.Redo(ctx)
		},
	},
	{
		name:  "preview",
		match: func(k Key) bool { return k.plain() && k.Name == "p" },
		run: func(c *Controller, ctx context.Context, _ Key) (KeyResult, error) {
			return c.Preview(ctx)
		},
	},
}

// HandleKey dispatches a key press. While a text input has focus only
// Escape is active.
func (c *Controller) HandleKey(ctx context.Context, key Key, inputFocused bool) (KeyResult, error) {
	for _, b := range bindings {
		if inputFocused && !b.always {
			continue
		}
		if !b.match(key) {
			continue
		}
		result, err := b.run(c, ctx, key)
		if err != nil {
			c.logger.Debug().Err(err).Str("binding", b.name).Str("key", key.String()).Msg("canvas: key command failed")
		}
		return result, err
	}
	return KeyResult{}, nil
}

// Preview saves the draft and returns the preview URL. A failed save keeps
// the editor open and leaves an error notice.
func (c *Controller) Preview(ctx context.Context) (KeyResult, error) {
	if err := c.Flush(ctx); err != nil {
		return KeyResult{Handled: true}, err
	}
	return KeyResult{Handled: true, Effect: EffectPreview, PreviewURL: c.previewURL(c.key.Slug)}, nil
}

func (c *Controller) bodySelected() bool {
	zone, ok := c.draft.ZoneOf(c.selected)
	return ok && zone == document.ZoneBody
}
