// Package canvas is the authoring controller: it owns the working draft,
// runs the drag and drop state machine, tracks the selection, records every
// mutation as an undoable command and hands saves to the persistence
// service.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	"github.com/goliatone/go-pagebuilder/pkg/templates"
)

var (
	ErrNothingToUndo = errors.New("canvas: nothing to undo")
	ErrNothingToRedo = errors.New("canvas: nothing to redo")
	ErrNoticeExpired = errors.New("canvas: notice action no longer available")
)

type Option func(*Controller)

// WithPersistence injects the save service. Without it edits only reach
// the mirror.
func WithPersistence(svc *persist.Service) Option {
	return func(c *Controller) {
		c.service = svc
	}
}

// WithMirror sets the local mirror written on every mutation.
func WithMirror(m persist.Mirror) Option {
	return func(c *Controller) {
		c.mirror = m
	}
}

// WithIDGenerator overrides document.DefaultIDGenerator.
func WithIDGenerator(gen document.IDGenerator) Option {
	return func(c *Controller) {
		if gen != nil {
			c.gen = gen
		}
	}
}

// WithEngine sets the property engine used for defaults and edits.
func WithEngine(engine *properties.Engine) Option {
	return func(c *Controller) {
		if engine != nil {
			c.engine = engine
		}
	}
}

// WithTemplates sets the template catalog.
func WithTemplates(catalog *templates.Catalog) Option {
	return func(c *Controller) {
		if catalog != nil {
			c.templates = catalog
		}
	}
}

// WithRestorePolicy picks where undoing a body removal puts the block.
func WithRestorePolicy(policy RestorePolicy) Option {
	return func(c *Controller) {
		if policy != "" {
			c.policy = policy
		}
	}
}

// WithHistoryDepth bounds the undo stack.
func WithHistoryDepth(depth int) Option {
	return func(c *Controller) {
		c.history = NewHistory(depth)
	}
}

// WithEmitter forwards controller events.
func WithEmitter(emitter Emitter) Option {
	return func(c *Controller) {
		if emitter != nil {
			c.emitter = emitter
		}
	}
}

// WithPreviewURL builds the URL returned by the preview shortcut.
func WithPreviewURL(fn func(slug string) string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.previewURL = fn
		}
	}
}

// WithContext sets the context async saves run under.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller edits one draft. Its methods are meant to be called from a
// single goroutine; only save completions arrive concurrently.
type Controller struct {
	key        persist.PageKey
	draft      document.Draft
	selected   string
	hovered    string
	drag       dragState
	history    *History
	policy     RestorePolicy
	gen        document.IDGenerator
	engine     *properties.Engine
	templates  *templates.Catalog
	service    *persist.Service
	mirror     persist.Mirror
	emitter    Emitter
	previewURL func(string) string
	ctx        context.Context
	logger     zerolog.Logger

	pending sync.WaitGroup
	emitMu  sync.Mutex

	mu        sync.Mutex
	seq       uint64
	savedSeq  uint64
	status    persist.Status
	saveErr   error
	notices   []Notice
	noticeSeq uint64
}

// New returns a controller editing a copy of initial under key.
func New(key persist.PageKey, initial document.Draft, options ...Option) *Controller {
	c := &Controller{
		key:     key,
		draft:   document.Migrate(initial),
		history: NewHistory(DefaultHistoryDepth),
		policy:  RestoreAppend,
		gen:     document.DefaultIDGenerator,
		emitter: nopEmitter{},
		ctx:     context.Background(),
		logger:  zerolog.Nop(),
		status:  persist.StatusIdle,
		previewURL: func(slug string) string {
			return "/p/" + url.PathEscape(slug)
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.engine == nil {
		c.engine = properties.New()
	}
	if c.templates == nil {
		c.templates = templates.MustDefaultCatalog()
	}
	if c.service != nil {
		// Continue the page's sequence so an earlier session on the same
		// service does not make every save of this one stale.
		if _, last, ok := c.service.LastApplied(key); ok {
			c.seq, c.savedSeq = last, last
		}
	}
	return c
}

// Open loads key.Slug through svc and returns a controller editing it. A
// missing page starts from an empty draft.
func Open(ctx context.Context, svc *persist.Service, key persist.PageKey, options ...Option) (*Controller, error) {
	if svc == nil {
		return nil, errors.New("canvas: persistence service is required")
	}
	d, err := svc.Load(ctx, key.Slug)
	switch {
	case document.IsNotFound(err):
		d = document.Draft{Body: []document.Block{}}
	case err != nil:
		return nil, fmt.Errorf("canvas: open %s: %w", key.Slug, err)
	}
	return New(key, d, append(options, WithPersistence(svc))...), nil
}

// Key returns the page key saves are written under.
func (c *Controller) Key() persist.PageKey { return c.key }

// Draft returns a copy of the working draft.
func (c *Controller) Draft() document.Draft { return c.draft.Clone() }

// Seq returns the sequence number of the latest mutation.
func (c *Controller) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Engine returns the property engine.
func (c *Controller) Engine() *properties.Engine { return c.engine }

// Selected returns the selected block id or "".
func (c *Controller) Selected() string { return c.selected }

// Select selects id. An empty id clears the selection.
func (c *Controller) Select(id string) error {
	if id != "" {
		if _, ok := c.draft.Find(id); !ok {
			return &document.NotFoundError{Kind: "block", ID: id}
		}
	}
	if c.selected == id {
		return nil
	}
	c.selected = id
	c.emit(c.ctx, EventSelection, id)
	return nil
}

// SetHovered marks the block under the pointer for edit chrome.
func (c *Controller) SetHovered(id string) {
	c.hovered = id
}

// Panel resolves the property panel of the selected block.
func (c *Controller) Panel() (properties.Panel, bool) {
	block, ok := c.draft.Find(c.selected)
	if !ok {
		return properties.Panel{}, false
	}
	return c.engine.Panel(block), true
}

// RenderOptions describes the edit surface for the current state.
func (c *Controller) RenderOptions() render.RenderOptions {
	opts := render.RenderOptions{
		Mode:     render.ModeEdit,
		Selected: c.selected,
		Hovered:  c.hovered,
	}
	if c.drag.target != nil {
		target := *c.drag.target
		opts.DropTarget = &target
	}
	return opts
}

// Execute runs cmd against the working draft and records its inverse. A
// rejected command leaves the draft untouched and raises an error notice.
func (c *Controller) Execute(ctx context.Context, cmd Command) error {
	_, err := c.execute(ctx, cmd)
	return err
}

func (c *Controller) execute(ctx context.Context, cmd Command) (uint64, error) {
	next, inverse, err := cmd.Apply(c.draft)
	if err == nil {
		err = checkChangedProps(c.draft, next)
	}
	if err != nil {
		c.reject(ctx, cmd.Label(), err)
		return 0, err
	}
	id := c.history.push(cmd.Label(), inverse)
	c.commit(ctx, next)
	return id, nil
}

// Undo reverts the latest command.
func (c *Controller) Undo(ctx context.Context) error {
	e, ok := c.history.popUndo()
	if !ok {
		return ErrNothingToUndo
	}
	next, redo, err := e.cmd.Apply(c.draft)
	if err != nil {
		c.logger.Warn().Err(err).Str("command", e.label).Msg("canvas: undo failed")
		return fmt.Errorf("canvas: undo %s: %w", e.label, err)
	}
	c.history.pushRedo(e.label, redo)
	c.commit(ctx, next)
	return nil
}

// Redo re-applies the latest undone command.
func (c *Controller) Redo(ctx context.Context) error {
	e, ok := c.history.popRedo()
	if !ok {
		return ErrNothingToRedo
	}
	next, inverse, err := e.cmd.Apply(c.draft)
	if err != nil {
		c.logger.Warn().Err(err).Str("command", e.label).Msg("canvas: redo failed")
		return fmt.Errorf("canvas: redo %s: %w", e.label, err)
	}
	c.history.pushUndo(e.label, inverse)
	c.commit(ctx, next)
	return nil
}

// History exposes the command history.
func (c *Controller) History() *History { return c.history }

// Remove deletes block id from whichever zone holds it and raises a notice
// whose action restores it.
func (c *Controller) Remove(ctx context.Context, id string) error {
	zone, ok := c.draft.ZoneOf(id)
	if !ok {
		return &document.NotFoundError{Kind: "block", ID: id}
	}
	block, _ := c.draft.Find(id)

	var cmd Command = RemoveBody{ID: id, Policy: c.policy}
	if zone != document.ZoneBody {
		cmd = SetSlot{Zone: zone}
	}
	entryID, err := c.execute(ctx, cmd)
	if err != nil {
		return err
	}
	c.notify(ctx, Notice{
		Level:   LevelInfo,
		Message: fmt.Sprintf("%s removed", blockName(block)),
		Action:  "Undo",
		entryID: entryID,
	})
	return nil
}

// Duplicate copies body block id right after itself and selects the copy.
func (c *Controller) Duplicate(ctx context.Context, id string) (string, error) {
	idx := c.draft.IndexOf(id)
	if idx < 0 {
		return "", &document.NotFoundError{Kind: "block", ID: id}
	}
	if err := c.Execute(ctx, DuplicateBody{ID: id, Gen: c.gen}); err != nil {
		return "", err
	}
	copyID := c.draft.Body[idx+1].ID
	c.Select(copyID)
	return copyID, nil
}

// Move shifts body block id by delta. Moves past either end are no-ops and
// record nothing.
func (c *Controller) Move(ctx context.Context, id string, delta int) error {
	from := c.draft.IndexOf(id)
	if from < 0 {
		return &document.NotFoundError{Kind: "block", ID: id}
	}
	if document.MoveBody(c.draft, id, delta).IndexOf(id) == from {
		return nil
	}
	return c.Execute(ctx, MoveBody{ID: id, Delta: delta})
}

// ChangeProperty converts input through the control registered under key
// for the block's type and applies it.
func (c *Controller) ChangeProperty(ctx context.Context, id, key string, input any) error {
	block, control, err := c.control(id, key)
	if err != nil {
		return err
	}
	patch, err := c.engine.Patch(control, input)
	if err != nil {
		c.reject(ctx, "edit "+key, err)
		return err
	}
	if current, ok := document.GetPath(block.Props, key); ok && equalValue(current, patch.Value) {
		return nil
	}
	return c.Execute(ctx, PatchProps(id, patch))
}

// ApplyPatches applies raw dot-path patches to block id as one command.
func (c *Controller) ApplyPatches(ctx context.Context, id string, patches ...document.Patch) error {
	if len(patches) == 0 {
		return nil
	}
	return c.Execute(ctx, PatchProps(id, patches...))
}

// AddListItem appends a default item to the list control key.
func (c *Controller) AddListItem(ctx context.Context, id, key string) error {
	block, control, err := c.control(id, key)
	if err != nil {
		return err
	}
	patch, err := c.engine.AddItemPatch(block, control, "")
	if err != nil {
		c.reject(ctx, "add item", err)
		return err
	}
	return c.Execute(ctx, PatchProps(id, patch))
}

// RemoveListItem drops item index from the list control key.
func (c *Controller) RemoveListItem(ctx context.Context, id, key string, index int) error {
	block, control, err := c.control(id, key)
	if err != nil {
		return err
	}
	patch, err := c.engine.RemoveItemPatch(block, control, index)
	if err != nil {
		c.reject(ctx, "remove item", err)
		return err
	}
	return c.Execute(ctx, PatchProps(id, patch))
}

// UpdateListItem edits one field of item index, keeping the item's href or
// url key.
func (c *Controller) UpdateListItem(ctx context.Context, id, key string, index int, field, value string) error {
	block, control, err := c.control(id, key)
	if err != nil {
		return err
	}
	patch, err := c.engine.UpdateItemPatch(block, control, index, field, value)
	if err != nil {
		c.reject(ctx, "update item", err)
		return err
	}
	return c.Execute(ctx, PatchProps(id, patch))
}

func (c *Controller) control(id, key string) (document.Block, properties.Control, error) {
	block, ok := c.draft.Find(id)
	if !ok {
		return document.Block{}, properties.Control{}, &document.NotFoundError{Kind: "block", ID: id}
	}
	control, ok := c.engine.Catalog().Control(block.Type, key)
	if !ok {
		return document.Block{}, properties.Control{}, &document.NotFoundError{Kind: "control", ID: block.Type + "." + key}
	}
	return block, control, nil
}

// UseTemplate replaces the whole draft with a fresh instance of template id.
func (c *Controller) UseTemplate(ctx context.Context, id string) error {
	tpl, err := c.templates.Get(id)
	if err != nil {
		return err
	}
	if err := c.Execute(ctx, ReplaceDraft{Draft: templates.Instantiate(tpl, c.gen), Name: "use template " + id}); err != nil {
		return err
	}
	return c.Select("")
}

// ApplyTemplate restyles block blockID with the matching block of template
// id.
func (c *Controller) ApplyTemplate(ctx context.Context, id, blockID string) error {
	tpl, err := c.templates.Get(id)
	if err != nil {
		return err
	}
	next, err := templates.Apply(tpl, c.draft, blockID)
	if err != nil {
		return err
	}
	block, _ := next.Find(blockID)
	return c.Execute(ctx, ReplaceProps{ID: blockID, Props: block.Props, Name: "apply template " + id})
}

// commit installs next as the working draft, bumps the sequence number,
// writes the mirror and schedules a save.
func (c *Controller) commit(ctx context.Context, next document.Draft) {
	c.draft = next
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.Write(next); err != nil {
			c.logger.Warn().Err(err).Uint64("seq", seq).Msg("canvas: mirror write failed")
		}
	}
	if c.selected != "" {
		if _, ok := next.Find(c.selected); !ok {
			c.selected = ""
			c.emit(ctx, EventSelection, "")
		}
	}
	c.emit(ctx, EventDraftChanged, seq)
	c.scheduleSave(next, seq)
}

func (c *Controller) reject(ctx context.Context, op string, err error) {
	var verr *document.ValidationError
	message := err.Error()
	if errors.As(err, &verr) {
		message = verr.Reason
	}
	c.logger.Debug().Err(err).Str("op", op).Msg("canvas: operation rejected")
	c.notify(ctx, Notice{Level: LevelError, Message: message})
}

func (c *Controller) emit(ctx context.Context, event string, data any) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.emitter.Emit(ctx, event, data)
}

func blockName(block document.Block) string {
	if block.Label != "" {
		return block.Label
	}
	return block.Type
}

// checkChangedProps decodes the props of every block that is new in next or
// whose props differ from prev, so a command can never commit props the
// renderer and codec would refuse.
func checkChangedProps(prev, next document.Draft) error {
	for _, id := range next.IDs() {
		block, _ := next.Find(id)
		if old, ok := prev.Find(id); ok && old.Type == block.Type &&
			reflect.DeepEqual(document.NormalizeProps(old.Props), document.NormalizeProps(block.Props)) {
			continue
		}
		if _, err := document.DecodeProps(block); err != nil {
			return err
		}
	}
	return nil
}

func equalValue(a, b any) bool {
	normalized := document.NormalizeProps(map[string]any{"a": a, "b": b})
	return reflect.DeepEqual(normalized["a"], normalized["b"])
}
