package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/render"
)

var (
	ErrDragInProgress = errors.New("canvas: drag already in progress")
	ErrNoDrag         = errors.New("canvas: no drag in progress")
	ErrNoDropTarget   = errors.New("canvas: drop without a target")
)

// Phase is the drag state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseDragging Phase = "dragging"
	PhaseHovering Phase = "hovering"
)

// DragPayload is what the block library attaches to a drag.
type DragPayload struct {
	Type  string         `json:"type"`
	Label string         `json:"label,omitempty"`
	Props map[string]any `json:"props,omitempty"`
}

// DragState is a snapshot of the drag state machine.
type DragState struct {
	Phase   Phase              `json:"phase"`
	Payload *DragPayload       `json:"payload,omitempty"`
	Target  *render.DropTarget `json:"target,omitempty"`
}

type dragState struct {
	payload *DragPayload
	target  *render.DropTarget
}

func (s dragState) phase() Phase {
	switch {
	case s.payload == nil:
		return PhaseIdle
	case s.target == nil:
		return PhaseDragging
	default:
		return PhaseHovering
	}
}

// DragState reports the current drag.
func (c *Controller) DragState() DragState {
	state := DragState{Phase: c.drag.phase()}
	if c.drag.payload != nil {
		payload := *c.drag.payload
		state.Payload = &payload
	}
	if c.drag.target != nil {
		target := *c.drag.target
		state.Target = &target
	}
	return state
}

// BeginDrag starts a drag from the block library. Payloads that are not JSON
// or carry no type are logged and ignored. An unknown block type is rejected
// with a notice. Only one drag can be pending.
func (c *Controller) BeginDrag(ctx context.Context, raw []byte) error {
	if c.drag.phase() != PhaseIdle {
		return ErrDragInProgress
	}
	var payload DragPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Debug().Err(err).Int("bytes", len(raw)).Msg("canvas: malformed drag payload ignored")
		return nil
	}
	payload.Type = strings.TrimSpace(payload.Type)
	if payload.Type == "" {
		c.logger.Debug().Msg("canvas: drag payload without type ignored")
		return nil
	}
	if !document.KnownType(payload.Type) {
		err := &document.ValidationError{Op: "drag", Reason: fmt.Sprintf("unknown block type %q", payload.Type)}
		c.reject(ctx, "drag", err)
		return err
	}
	c.drag = dragState{payload: &payload}
	return nil
}

// Hover moves the pending drag over target. Body gaps are clamped to
// [0, len(body)]; slot targets ignore Index.
func (c *Controller) Hover(target render.DropTarget) (render.DropTarget, error) {
	if c.drag.phase() == PhaseIdle {
		return render.DropTarget{}, ErrNoDrag
	}
	switch target.Zone {
	case document.ZoneHeader, document.ZoneFooter:
		target.Index = 0
	case document.ZoneBody:
		target.Index = max(0, min(target.Index, len(c.draft.Body)))
	default:
		return render.DropTarget{}, &document.ValidationError{Op: "hover", Reason: fmt.Sprintf("unknown drop zone %q", target.Zone)}
	}
	c.drag.target = &target
	return target, nil
}

// Drop commits the pending drag at the hovered target and selects the new
// block. An occupied header or footer slot, or a block whose type belongs to
// another zone, rejects the drop with a notice and leaves the draft as it
// was. The state machine returns to idle either way.
func (c *Controller) Drop(ctx context.Context) (string, error) {
	drag := c.drag
	c.drag = dragState{}

	if drag.payload == nil {
		return "", ErrNoDrag
	}
	if drag.target == nil {
		return "", ErrNoDropTarget
	}
	target := *drag.target

	block, err := c.engine.NewBlock(c.gen, drag.payload.Type, drag.payload.Label, drag.payload.Props)
	if err != nil {
		c.reject(ctx, "drop", err)
		return "", err
	}
	if block.Zone != target.Zone {
		err := &document.ValidationError{Op: "drop", Reason: fmt.Sprintf("a %s block cannot be dropped in the %s", block.Type, target.Zone)}
		c.reject(ctx, "drop", err)
		return "", err
	}

	var cmd Command
	switch target.Zone {
	case document.ZoneHeader, document.ZoneFooter:
		if occupied := c.slot(target.Zone); occupied != nil {
			err := &document.ValidationError{Op: "drop", Reason: fmt.Sprintf("the %s slot already holds %q; remove it first", target.Zone, blockName(*occupied))}
			c.reject(ctx, "drop", err)
			return "", err
		}
		cmd = SetSlot{Zone: target.Zone, Block: &block}
	default:
		cmd = InsertBody{Index: target.Index, Block: block}
	}
	if err := c.Execute(ctx, cmd); err != nil {
		return "", err
	}
	c.Select(block.ID)
	return block.ID, nil
}

// Cancel abandons the pending drag.
func (c *Controller) Cancel() {
	c.drag = dragState{}
}

func (c *Controller) slot(zone document.Zone) *document.Block {
	if zone == document.ZoneHeader {
		return c.draft.Header
	}
	return c.draft.Footer
}
