package canvas

import "context"

// Level grades a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a user-visible message. A notice with an Action can be acted on
// once through Controller.RunNoticeAction.
type Notice struct {
	ID      uint64 `json:"id"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`

	entryID uint64
}

// Events emitted by the controller.
const (
	EventNotice       = "notice"
	EventDraftChanged = "draft:changed"
	EventSelection    = "selection"
	EventSaveStatus   = "save:status"
)

// Emitter forwards controller events to a UI surface.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, string, any) {}

// RecordingEmitter keeps every emitted event. It is safe for concurrent use
// through the controller, which serialises its calls.
type RecordingEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent is one recorded emission.
type EmittedEvent struct {
	Event string
	Data  any
}

func (r *RecordingEmitter) Emit(_ context.Context, event string, data any) {
	r.Events = append(r.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded events called event.
func (r *RecordingEmitter) Named(event string) []EmittedEvent {
	var out []EmittedEvent
	for _, e := range r.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (c *Controller) notify(ctx context.Context, n Notice) Notice {
	c.mu.Lock()
	c.noticeSeq++
	n.ID = c.noticeSeq
	c.notices = append(c.notices, n)
	c.mu.Unlock()
	c.emit(ctx, EventNotice, n)
	return n
}

// Notices returns the notices not yet dismissed, oldest first.
func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

// DismissNotice drops notice id.
func (c *Controller) DismissNotice(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropNoticeLocked(id)
}

func (c *Controller) dropNoticeLocked(id uint64) (Notice, bool) {
	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return n, true
		}
	}
	return Notice{}, false
}

// RunNoticeAction performs the action of notice id once: it reverts the
// command the notice was raised for. When that command is still the latest,
// this is a plain Undo; otherwise its inverse runs as a new command so later
// edits are kept.
func (c *Controller) RunNoticeAction(ctx context.Context, id uint64) error {
	c.mu.Lock()
	n, ok := c.dropNoticeLocked(id)
	c.mu.Unlock()
	if !ok || n.entryID == 0 {
		return ErrNoticeExpired
	}

	if top := c.history.undo; len(top) > 0 && top[len(top)-1].id == n.entryID {
		return c.Undo(ctx)
	}
	e, ok := c.history.take(n.entryID)
	if !ok {
		return ErrNoticeExpired
	}
	next, inverse, err := e.cmd.Apply(c.draft)
	if err != nil {
		c.reject(ctx, "restore", err)
		return err
	}
	c.history.push("restore", inverse)
	c.commit(ctx, next)
	return nil
}
