package properties

import (
	"sort"
	"strings"
	"sync"
)

// Built-in editor widget identifiers.
const (
	WidgetInput    = "input"
	WidgetTextarea = "textarea"
	WidgetSelect   = "select"
	WidgetSegments = "segmented"
	WidgetSwitch   = "switch"
	WidgetRange    = "range"
	WidgetSwatch   = "swatch"
	WidgetImageURL = "image-url"
	WidgetLinkList = "link-list"
)

// Matcher decides whether a widget should edit the supplied control.
type Matcher func(control Control) bool

type widgetRule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// WidgetRegistry picks an editor widget for each control. An explicit
// Control.Widget wins; otherwise the highest priority matcher does, ties
// falling back to registration order.
type WidgetRegistry struct {
	mu    sync.RWMutex
	rules []widgetRule
}

// NewWidgetRegistry returns a registry with the built-in matchers.
func NewWidgetRegistry() *WidgetRegistry {
	reg := &WidgetRegistry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher. Higher priority values take precedence.
func (r *WidgetRegistry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, widgetRule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
	sort.SliceStable(r.rules, func(i, j int) bool {
		if r.rules[i].priority == r.rules[j].priority {
			return r.rules[i].order < r.rules[j].order
		}
		return r.rules[i].priority > r.rules[j].priority
	})
}

// Resolve returns the widget for control.
func (r *WidgetRegistry) Resolve(control Control) (string, bool) {
	if explicit := strings.TrimSpace(control.Widget); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.rules {
		if entry.match(control) {
			return entry.name, true
		}
	}
	return "", false
}

func (r *WidgetRegistry) registerBuiltins() {
	r.Register(WidgetLinkList, 90, func(c Control) bool { return c.Type == KindList })
	r.Register(WidgetSwatch, 90, func(c Control) bool { return c.Type == KindColor })
	r.Register(WidgetSwitch, 90, func(c Control) bool { return c.Type == KindToggle })
	r.Register(WidgetRange, 90, func(c Control) bool { return c.Type == KindSlider })
	r.Register(WidgetImageURL, 90, func(c Control) bool { return c.Type == KindImage })
	r.Register(WidgetSegments, 80, func(c Control) bool {
		return c.Type == KindSelect && len(c.Options) > 0 && len(c.Options) <= 3
	})
	r.Register(WidgetSelect, 70, func(c Control) bool { return c.Type == KindSelect })
	r.Register(WidgetTextarea, 60, func(c Control) bool {
		return c.Type == KindText && c.Key == "text"
	})
	r.Register(WidgetInput, 10, func(c Control) bool { return c.Type == KindText })
}
