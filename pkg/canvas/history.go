package canvas

// DefaultHistoryDepth bounds the undo stack.
const DefaultHistoryDepth = 100

type entry struct {
	id    uint64
	label string
	cmd   Command
}

// History holds the undo and redo stacks. Undo entries carry the inverse of
// the command that was executed; redo entries carry the inverse of the
// inverse.
type History struct {
	depth  int
	nextID uint64
	undo   []entry
	redo   []entry
}

func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// push records the inverse of a fresh command and clears the redo stack.
func (h *History) push(label string, inverse Command) uint64 {
	h.redo = nil
	return h.pushUndo(label, inverse)
}

func (h *History) pushUndo(label string, inverse Command) uint64 {
	h.nextID++
	h.undo = append(h.undo, entry{id: h.nextID, label: label, cmd: inverse})
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
	return h.nextID
}

func (h *History) pushRedo(label string, cmd Command) {
	h.nextID++
	h.redo = append(h.redo, entry{id: h.nextID, label: label, cmd: cmd})
}

func (h *History) popUndo() (entry, bool) {
	if len(h.undo) == 0 {
		return entry{}, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return top, true
}

func (h *History) popRedo() (entry, bool) {
	if len(h.redo) == 0 {
		return entry{}, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return top, true
}

// take removes the undo entry with id wherever it sits.
func (h *History) take(id uint64) (entry, bool) {
	for i := len(h.undo) - 1; i >= 0; i-- {
		if h.undo[i].id == id {
			found := h.undo[i]
			h.undo = append(h.undo[:i], h.undo[i+1:]...)
			return found, true
		}
	}
	return entry{}, false
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Labels lists the undo stack labels, most recent last.
func (h *History) Labels() []string {
	out := make([]string, len(h.undo))
	for i, e := range h.undo {
		out[i] = e.label
	}
	return out
}
