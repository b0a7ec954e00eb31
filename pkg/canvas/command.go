package canvas

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// Command is one reversible draft mutation. Apply returns the new draft and
// the command that reverts it when applied to that new draft. Applying the
// returned inverse yields the inverse of the inverse, which is how redo works.
type Command interface {
	Label() string
	Apply(d document.Draft) (document.Draft, Command, error)
}

// RestorePolicy decides where an undone body removal puts the block back.
type RestorePolicy string

const (
	// RestoreAppend re-appends the block at the end of the body.
	RestoreAppend RestorePolicy = "append"
	// RestoreOriginalIndex puts the block back where it was removed from.
	RestoreOriginalIndex RestorePolicy = "original-index"
)

// ParseRestorePolicy maps a config value to a policy. Empty means append.
func ParseRestorePolicy(raw string) (RestorePolicy, error) {
	switch RestorePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RestoreAppend:
		return RestoreAppend, nil
	case RestoreOriginalIndex, "original":
		return RestoreOriginalIndex, nil
	default:
		return "", fmt.Errorf("canvas: unknown restore policy %q", raw)
	}
}

// InsertBody places Block at Index.
type InsertBody struct {
	Index int
	Block document.Block
}

func (c InsertBody) Label() string { return "insert " + c.Block.Type }

func (c InsertBody) Apply(d document.Draft) (document.Draft, Command, error) {
	next, err := document.InsertBody(d, c.Index, c.Block)
	if err != nil {
		return d, nil, err
	}
	return next, RemoveBody{ID: c.Block.ID, Policy: RestoreOriginalIndex}, nil
}

// RemoveBody drops a body block. Its inverse reinserts the block according
// to Policy.
type RemoveBody struct {
	ID     string
	Policy RestorePolicy
}

func (c RemoveBody) Label() string { return "remove block" }

func (c RemoveBody) Apply(d document.Draft) (document.Draft, Command, error) {
	idx := d.IndexOf(c.ID)
	if idx < 0 {
		return d, nil, &document.NotFoundError{Kind: "block", ID: c.ID}
	}
	removed := d.Body[idx].Clone()
	next := document.RemoveBody(d, c.ID)
	restoreAt := len(next.Body)
	if c.Policy == RestoreOriginalIndex {
		restoreAt = idx
	}
	return next, InsertBody{Index: restoreAt, Block: removed}, nil
}

// MoveBody shifts a body block by Delta. The inverse moves it back by the
// distance actually travelled, so clamped moves undo exactly.
type MoveBody struct {
	ID    string
	Delta int
}

func (c MoveBody) Label() string { return "move block" }

func (c MoveBody) Apply(d document.Draft) (document.Draft, Command, error) {
	from := d.IndexOf(c.ID)
	if from < 0 {
		return d, nil, &document.NotFoundError{Kind: "block", ID: c.ID}
	}
	next := document.MoveBody(d, c.ID, c.Delta)
	moved := next.IndexOf(c.ID) - from
	return next, MoveBody{ID: c.ID, Delta: -moved}, nil
}

// DuplicateBody copies a body block right after itself with a fresh id from
// Gen.
type DuplicateBody struct {
	ID  string
	Gen document.IDGenerator
}

func (c DuplicateBody) Label() string { return "duplicate block" }

func (c DuplicateBody) Apply(d document.Draft) (document.Draft, Command, error) {
	next, copyID, err := document.DuplicateBody(d, c.ID, c.Gen)
	if err != nil {
		return d, nil, err
	}
	return next, RemoveBody{ID: copyID, Policy: RestoreOriginalIndex}, nil
}

// SetSlot replaces the header or footer. A nil Block clears the slot.
type SetSlot struct {
	Zone  document.Zone
	Block *document.Block
}

func (c SetSlot) Label() string {
	if c.Block == nil {
		return "remove " + string(c.Zone)
	}
	return "set " + string(c.Zone)
}

func (c SetSlot) Apply(d document.Draft) (document.Draft, Command, error) {
	var (
		previous *document.Block
		next     document.Draft
		err      error
	)
	switch c.Zone {
	case document.ZoneHeader:
		previous = d.Header
		next, err = document.SetHeader(d, c.Block)
	case document.ZoneFooter:
		previous = d.Footer
		next, err = document.SetFooter(d, c.Block)
	default:
		return d, nil, &document.ValidationError{Op: "set slot", Reason: fmt.Sprintf("zone %q has no slot", c.Zone)}
	}
	if err != nil {
		return d, nil, err
	}
	inverse := SetSlot{Zone: c.Zone}
	if previous != nil {
		restored := previous.Clone()
		inverse.Block = &restored
	}
	return next, inverse, nil
}

// PropOp sets Value at Path, or removes the leaf when Delete is true.
type PropOp struct {
	Path   string
	Value  any
	Delete bool
}

// EditProps applies ops in order to the props of block ID. The inverse
// restores every touched path from the pre-edit props: values that existed
// are written back, and keys the edit created are deleted again.
type EditProps struct {
	ID  string
	Ops []PropOp
}

// PatchProps wraps document patches as an EditProps command.
func PatchProps(id string, patches ...document.Patch) EditProps {
	ops := make([]PropOp, len(patches))
	for i, patch := range patches {
		ops[i] = PropOp{Path: patch.Path, Value: patch.Value}
	}
	return EditProps{ID: id, Ops: ops}
}

func (c EditProps) Label() string {
	if len(c.Ops) == 1 {
		return "edit " + c.Ops[0].Path
	}
	return "edit properties"
}

func (c EditProps) Apply(d document.Draft) (document.Draft, Command, error) {
	block, ok := d.Find(c.ID)
	if !ok {
		return d, nil, &document.NotFoundError{Kind: "block", ID: c.ID}
	}
	before := block.Props

	next := d
	for _, op := range c.Ops {
		var err error
		if op.Delete {
			next, err = document.DeletePropsAt(next, c.ID, op.Path)
		} else {
			next, err = document.UpdatePropsAt(next, c.ID, document.Patch{Path: op.Path, Value: op.Value})
		}
		if err != nil {
			return d, nil, err
		}
	}

	inverse := EditProps{ID: c.ID}
	for i := len(c.Ops) - 1; i >= 0; i-- {
		if restore, ok := restoreOp(before, c.Ops[i].Path); ok {
			inverse.Ops = append(inverse.Ops, restore)
		}
	}
	return next, inverse, nil
}

// restoreOp returns the op that brings path back to its value in before. When
// path did not exist, the shallowest missing segment is deleted; when that
// segment indexes an array, the whole array is restored so padding added by
// the edit disappears too.
func restoreOp(before map[string]any, path string) (PropOp, bool) {
	if value, ok := document.GetPath(before, path); ok {
		return PropOp{Path: path, Value: value}, true
	}
	segments, err := document.ParsePath(path)
	if err != nil {
		return PropOp{}, false
	}
	for i := range segments {
		prefix := strings.Join(segments[:i+1], ".")
		if _, ok := document.GetPath(before, prefix); ok {
			continue
		}
		if i > 0 {
			parent := strings.Join(segments[:i], ".")
			if list, isList := mustGet(before, parent).([]any); isList {
				return PropOp{Path: parent, Value: list}, true
			}
		}
		return PropOp{Path: prefix, Delete: true}, true
	}
	return PropOp{}, false
}

func mustGet(props map[string]any, path string) any {
	value, _ := document.GetPath(props, path)
	return value
}

// ReplaceProps swaps the whole props bag of block ID.
type ReplaceProps struct {
	ID    string
	Props map[string]any
	Name  string
}

func (c ReplaceProps) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return "replace properties"
}

func (c ReplaceProps) Apply(d document.Draft) (document.Draft, Command, error) {
	block, ok := d.Find(c.ID)
	if !ok {
		return d, nil, &document.NotFoundError{Kind: "block", ID: c.ID}
	}
	next, err := document.ReplaceProps(d, c.ID, c.Props)
	if err != nil {
		return d, nil, err
	}
	return next, ReplaceProps{ID: c.ID, Props: block.Props, Name: c.Name}, nil
}

// ReplaceDraft swaps the whole document, as loading a template does.
type ReplaceDraft struct {
	Draft document.Draft
	Name  string
}

func (c ReplaceDraft) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return "replace page"
}

func (c ReplaceDraft) Apply(d document.Draft) (document.Draft, Command, error) {
	if err := document.Validate(c.Draft); err != nil {
		return d, nil, err
	}
	return c.Draft.Clone(), ReplaceDraft{Draft: d.Clone(), Name: c.Name}, nil
}
