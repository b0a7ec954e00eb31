package properties

import "strings"

// Kind enumerates the editor control kinds.
type Kind string

const (
	KindText   Kind = "text"
	KindSelect Kind = "select"
	KindToggle Kind = "toggle"
	KindSlider Kind = "slider"
	KindColor  Kind = "color"
	KindImage  Kind = "image"
	KindList   Kind = "list"
)

// Valid reports whether k is a known control kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindSelect, KindToggle, KindSlider, KindColor, KindImage, KindList:
		return true
	default:
		return false
	}
}

// Group names used by the catalog.
const (
	GroupContent  = "Content"
	GroupStyle    = "Style"
	GroupAdvanced = "Advanced"
)

// SelectOption is one choice of a select control.
type SelectOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Control describes how one prop of a block is edited.
type Control struct {
	Type        Kind           `json:"type" yaml:"type"`
	Label       string         `json:"label" yaml:"label"`
	Key         string         `json:"key" yaml:"key"`
	Options     []SelectOption `json:"options,omitempty" yaml:"options,omitempty"`
	Min         *float64       `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64       `json:"max,omitempty" yaml:"max,omitempty"`
	Step        *float64       `json:"step,omitempty" yaml:"step,omitempty"`
	Placeholder string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	ShowIf      string         `json:"showIf,omitempty" yaml:"showIf,omitempty"`
	Widget      string         `json:"widget,omitempty" yaml:"widget,omitempty"`
}

// HasOption reports whether value is one of the control's option values.
func (c Control) HasOption(value string) bool {
	for _, opt := range c.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// OptionLabel returns the display label for value, falling back to value.
func (c Control) OptionLabel(value string) string {
	for _, opt := range c.Options {
		if opt.Value == value && strings.TrimSpace(opt.Label) != "" {
			return opt.Label
		}
	}
	return value
}

func (c Control) bounds() (lo, hi, step float64) {
	lo, hi, step = 0, 100, 1
	if c.Min != nil {
		lo = *c.Min
	}
	if c.Max != nil {
		hi = *c.Max
	}
	if c.Step != nil && *c.Step > 0 {
		step = *c.Step
	}
	return lo, hi, step
}

// Group is a named list of controls shown together in the property panel.
type Group struct {
	Name     string    `json:"name" yaml:"name"`
	Controls []Control `json:"controls" yaml:"controls"`
}

// ColorValue is a color prop seen from both sides: the stored Raw string plus
// the Hex and Token it links to. Either side may be empty when the palette
// has no counterpart.
type ColorValue struct {
	Raw   string `json:"raw"`
	Hex   string `json:"hex,omitempty"`
	Token string `json:"token,omitempty"`
}

// ListItem is one entry of a list control. LinkKey records whether the stored
// item uses "href" or "url" so edits write back to the same key.
type ListItem struct {
	Label   string `json:"label"`
	Href    string `json:"href,omitempty"`
	URL     string `json:"url,omitempty"`
	LinkKey string `json:"linkKey"`
	// Blank marks a stored entry that is not an object, such as the hole a
	// deleted path leaves. It keeps later items at their stored index.
	Blank bool `json:"blank,omitempty"`
}

// Target returns the link of the item regardless of its key.
func (i ListItem) Target() string {
	if i.LinkKey == "url" {
		return i.URL
	}
	return i.Href
}

// ControlState is a control resolved against a block.
type ControlState struct {
	Control Control `json:"control"`
	Widget  string  `json:"widget,omitempty"`
	Visible bool    `json:"visible"`
	// Value holds a string, bool, float64, ColorValue or []ListItem depending
	// on the control kind.
	Value any `json:"value"`
	// Unknown is set when a select holds a value outside its options.
	Unknown bool `json:"unknown,omitempty"`
}

// PanelGroup is a group of resolved, visible controls.
type PanelGroup struct {
	Name     string         `json:"name"`
	Controls []ControlState `json:"controls"`
}

// Panel is everything a property panel needs to edit one block.
type Panel struct {
	BlockID   string       `json:"blockId"`
	BlockType string       `json:"blockType"`
	Label     string       `json:"label"`
	Groups    []PanelGroup `json:"groups"`
}
