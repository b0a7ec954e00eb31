package properties

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/properties/expr"
)

// Engine resolves controls against block props and turns edits into dot-path
// patches. It holds no per-draft state and is safe for concurrent use once
// constructed.
type Engine struct {
	catalog *Catalog
	palette *Palette
	widgets *WidgetRegistry
	eval    *expr.Evaluator
	logger  zerolog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithCatalog overrides the embedded catalog.
func WithCatalog(catalog *Catalog) Option {
	return func(e *Engine) {
		if catalog != nil {
			e.catalog = catalog
		}
	}
}

// WithPalette sets the palette used to link color tokens and hex values.
func WithPalette(palette *Palette) Option {
	return func(e *Engine) {
		if palette != nil {
			e.palette = palette
		}
	}
}

// WithWidgets replaces the widget registry.
func WithWidgets(reg *WidgetRegistry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.widgets = reg
		}
	}
}

// WithLogger sets the logger used for rule evaluation failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New builds an Engine backed by the embedded catalog and default palette
// unless options say otherwise.
func New(options ...Option) *Engine {
	e := &Engine{
		widgets: NewWidgetRegistry(),
		eval:    expr.New(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.catalog == nil {
		e.catalog = MustDefaultCatalog()
	}
	if e.palette == nil {
		e.palette = NewPalette(DefaultManifest(), "")
	}
	return e
}

// Catalog exposes the engine's catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Palette exposes the engine's palette.
func (e *Engine) Palette() *Palette { return e.palette }

// NewBlock creates a block of blockType with the catalog defaults, shallowly
// overridden by props.
func (e *Engine) NewBlock(gen document.IDGenerator, blockType, label string, props map[string]any) (document.Block, error) {
	merged := e.catalog.Defaults(blockType)
	for key, value := range document.NormalizeProps(props) {
		merged[key] = value
	}
	return document.NewBlock(gen, blockType, label, merged)
}

// Visible evaluates the control's showIf rule against the block props. Rule
// errors are logged and the control stays visible.
func (e *Engine) Visible(block document.Block, control Control) bool {
	if strings.TrimSpace(control.ShowIf) == "" {
		return true
	}
	ok, err := e.eval.Eval(control.ShowIf, block.Props)
	if err != nil {
		e.logger.Debug().Err(err).
			Str("block", block.ID).
			Str("key", control.Key).
			Msg("properties: showIf evaluation failed")
		return true
	}
	return ok
}

// Resolve reads the control's current value from the block, normalised per
// control kind. It never fails: absent or ill-typed values resolve to the
// kind's default.
func (e *Engine) Resolve(block document.Block, control Control) ControlState {
	state := ControlState{Control: control, Visible: e.Visible(block, control)}
	state.Widget, _ = e.widgets.Resolve(control)

	raw, present := document.GetPath(block.Props, control.Key)
	switch control.Type {
	case KindText, KindImage:
		state.Value = stringOf(raw)
	case KindSelect:
		value := stringOf(raw)
		switch {
		case !present || value == "":
			if len(control.Options) > 0 {
				value = control.Options[0].Value
			}
		case !control.HasOption(value):
			state.Unknown = true
		}
		state.Value = value
	case KindToggle:
		state.Value = boolOf(raw)
	case KindSlider:
		lo, _, _ := control.bounds()
		n, ok := numberOf(raw)
		if !present || !ok {
			n = lo
		}
		state.Value = stepClamp(control, n)
	case KindColor:
		state.Value = e.palette.ParseColor(stringOf(raw))
	case KindList:
		state.Value = ReadList(raw)
	default:
		state.Value = raw
	}
	return state
}

// Panel resolves every visible control of the block's catalog. Groups left
// without visible controls are omitted.
func (e *Engine) Panel(block document.Block) Panel {
	panel := Panel{BlockID: block.ID, BlockType: block.Type, Label: block.Label, Groups: []PanelGroup{}}
	for _, group := range e.catalog.Groups(block.Type) {
		resolved := PanelGroup{Name: group.Name}
		for _, control := range group.Controls {
			state := e.Resolve(block, control)
			if !state.Visible {
				continue
			}
			resolved.Controls = append(resolved.Controls, state)
		}
		if len(resolved.Controls) > 0 {
			panel.Groups = append(panel.Groups, resolved)
		}
	}
	return panel
}

// Patch converts input into the stored value for control and returns the
// patch that writes it. Inputs are checked per kind: select values must be
// options, colors must be hex or a known token, sliders are clamped and
// stepped.
func (e *Engine) Patch(control Control, input any) (document.Patch, error) {
	value, err := e.convert(control, input)
	if err != nil {
		return document.Patch{}, err
	}
	return document.Patch{Path: control.Key, Value: value}, nil
}

// Change applies input to the control of block id.
func (e *Engine) Change(d document.Draft, id string, control Control, input any) (document.Draft, error) {
	patch, err := e.Patch(control, input)
	if err != nil {
		return d, err
	}
	return document.UpdatePropsAt(d, id, patch)
}

// AddItemPatch appends a default item to the list control of block.
func (e *Engine) AddItemPatch(block document.Block, control Control, label string) (document.Patch, error) {
	items, err := listOf(block, control)
	if err != nil {
		return document.Patch{}, err
	}
	return document.Patch{Path: control.Key, Value: AddItem(items, label)}, nil
}

// RemoveItemPatch drops the list entry at index.
func (e *Engine) RemoveItemPatch(block document.Block, control Control, index int) (document.Patch, error) {
	items, err := listOf(block, control)
	if err != nil {
		return document.Patch{}, err
	}
	return document.Patch{Path: control.Key, Value: RemoveItem(items, index)}, nil
}

// UpdateItemPatch edits one field of the list entry at index.
func (e *Engine) UpdateItemPatch(block document.Block, control Control, index int, field, value string) (document.Patch, error) {
	items, err := listOf(block, control)
	if err != nil {
		return document.Patch{}, err
	}
	updated, err := UpdateItem(items, index, field, value)
	if err != nil {
		return document.Patch{}, &document.ValidationError{Op: "update item", Reason: err.Error()}
	}
	return document.Patch{Path: control.Key, Value: updated}, nil
}

// AddItem appends a default item to the list control of block id.
func (e *Engine) AddItem(d document.Draft, id string, control Control) (document.Draft, error) {
	return e.applyList(d, id, func(block document.Block) (document.Patch, error) {
		return e.AddItemPatch(block, control, "")
	})
}

// RemoveItem drops the entry at index from the list control of block id.
func (e *Engine) RemoveItem(d document.Draft, id string, control Control, index int) (document.Draft, error) {
	return e.applyList(d, id, func(block document.Block) (document.Patch, error) {
		return e.RemoveItemPatch(block, control, index)
	})
}

// UpdateItem edits one field of a list entry of block id.
func (e *Engine) UpdateItem(d document.Draft, id string, control Control, index int, field, value string) (document.Draft, error) {
	return e.applyList(d, id, func(block document.Block) (document.Patch, error) {
		return e.UpdateItemPatch(block, control, index, field, value)
	})
}

func (e *Engine) applyList(d document.Draft, id string, build func(document.Block) (document.Patch, error)) (document.Draft, error) {
	block, ok := d.Find(id)
	if !ok {
		return d, &document.NotFoundError{Kind: "block", ID: id}
	}
	patch, err := build(block)
	if err != nil {
		return d, err
	}
	return document.UpdatePropsAt(d, id, patch)
}

func listOf(block document.Block, control Control) ([]any, error) {
	if control.Type != KindList {
		return nil, &document.ValidationError{Op: "list", Reason: fmt.Sprintf("control %q is a %s, not a list", control.Key, control.Type)}
	}
	raw, _ := document.GetPath(block.Props, control.Key)
	items, _ := raw.([]any)
	return items, nil
}

func (e *Engine) convert(control Control, input any) (any, error) {
	reject := func(format string, args ...any) error {
		return &document.ValidationError{Op: "change " + control.Key, Reason: fmt.Sprintf(format, args...)}
	}

	switch control.Type {
	case KindText, KindImage:
		return stringOf(input), nil
	case KindSelect:
		value := stringOf(input)
		if !control.HasOption(value) {
			return nil, reject("%q is not an option", value)
		}
		return value, nil
	case KindToggle:
		switch typed := input.(type) {
		case bool:
			return typed, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
			if err != nil {
				return nil, reject("%q is not a boolean", typed)
			}
			return parsed, nil
		default:
			return nil, reject("%T is not a boolean", input)
		}
	case KindSlider:
		n, ok := numberOf(input)
		if !ok {
			return nil, reject("%v is not a number", input)
		}
		return stepClamp(control, n), nil
	case KindColor:
		return e.convertColor(input, reject)
	case KindList:
		return convertList(input, reject)
	default:
		return nil, reject("unsupported control type %q", control.Type)
	}
}

func (e *Engine) convertColor(input any, reject func(string, ...any) error) (any, error) {
	var raw string
	switch typed := input.(type) {
	case ColorValue:
		switch {
		case typed.Token != "" && typed.Raw == "":
			raw = TokenExpr(typed.Token)
		case typed.Hex != "" && typed.Raw == "":
			raw = typed.Hex
		default:
			raw = typed.Raw
		}
	case string:
		raw = typed
	default:
		return nil, reject("%T is not a color", input)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if m := tokenPattern.FindStringSubmatch(raw); m != nil {
		value, err := e.palette.FromToken(m[1])
		if err != nil {
			return nil, reject("%v", err)
		}
		return value.Raw, nil
	}
	value, err := e.palette.FromHex(raw)
	if err != nil {
		return nil, reject("%q is neither a hex color nor token(name)", raw)
	}
	return value.Raw, nil
}

func convertList(input any, reject func(string, ...any) error) (any, error) {
	switch typed := input.(type) {
	case []ListItem:
		out := make([]any, len(typed))
		for i, item := range typed {
			if item.Blank {
				continue
			}
			entry := map[string]any{"label": item.Label}
			if item.LinkKey == FieldURL {
				entry["url"] = item.URL
			} else {
				href := item.Href
				if href == "" {
					href = item.URL
				}
				entry["href"] = href
			}
			out[i] = entry
		}
		return out, nil
	case []any:
		block := document.Block{Props: map[string]any{"items": typed}}
		return block.Clone().Props["items"], nil
	case []map[string]any:
		return document.NormalizeProps(map[string]any{"items": typed})["items"], nil
	default:
		return nil, reject("%T is not a list", input)
	}
}

func stepClamp(control Control, n float64) float64 {
	lo, hi, step := control.bounds()
	if math.IsNaN(n) {
		n = lo
	}
	n = lo + math.Round((n-lo)/step)*step
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return n
}

func boolOf(v any) bool {
	switch typed := v.(type) {
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		return err == nil && parsed
	default:
		return false
	}
}

func numberOf(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
