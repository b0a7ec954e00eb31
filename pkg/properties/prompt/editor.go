// Package prompt edits a block's properties in a terminal, one question per
// visible control, and returns the resulting patches.
package prompt

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
)

// Editor walks the property panel of a block and asks the driver for new
// values.
type Editor struct {
	engine *properties.Engine
	driver Driver
	logger zerolog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithDriver overrides the survey driver.
func WithDriver(driver Driver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithLogger sets the editor logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New builds an Editor over engine.
func New(engine *properties.Engine, options ...Option) *Editor {
	if engine == nil {
		engine = properties.New()
	}
	e := &Editor{engine: engine, logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver()
	}
	return e
}

// Result is the outcome of an editing session.
type Result struct {
	Draft   document.Draft
	Patches []document.Patch
}

const (
	listDone = "Done"
	listAdd  = "Add item"
)

// Edit prompts for every visible control of block id, in catalog order.
// Visibility is re-evaluated after each answer, so switching a header to the
// search layout asks for the search placeholder next. Unchanged answers emit
// no patch.
func (e *Editor) Edit(ctx context.Context, d document.Draft, id string) (Result, error) {
	block, ok := d.Find(id)
	if !ok {
		return Result{Draft: d}, &document.NotFoundError{Kind: "block", ID: id}
	}
	result := Result{Draft: d}

	groups := e.engine.Catalog().Groups(block.Type)
	if len(groups) == 0 {
		return result, e.driver.Info(ctx, fmt.Sprintf("No editable properties for %s blocks.", block.Type))
	}
	for _, group := range groups {
		if err := e.driver.Info(ctx, "== "+group.Name+" =="); err != nil {
			return result, err
		}
		for _, control := range group.Controls {
			block, _ = result.Draft.Find(id)
			state := e.engine.Resolve(block, control)
			if !state.Visible {
				continue
			}
			patches, err := e.ask(ctx, block, state)
			if err != nil {
				return result, err
			}
			for _, patch := range patches {
				next, err := document.UpdatePropsAt(result.Draft, id, patch)
				if err != nil {
					return result, err
				}
				result.Draft = next
				result.Patches = append(result.Patches, patch)
				e.logger.Debug().Str("block", id).Str("path", patch.Path).Msg("prompt: property changed")
			}
		}
	}
	return result, nil
}

func (e *Editor) ask(ctx context.Context, block document.Block, state properties.ControlState) ([]document.Patch, error) {
	control := state.Control
	var input any

	switch control.Type {
	case properties.KindText, properties.KindImage:
		current, _ := state.Value.(string)
		var (
			answer string
			err    error
		)
		if state.Widget == properties.WidgetTextarea {
			answer, err = e.driver.TextArea(ctx, TextAreaConfig{Message: control.Label, Default: current})
		} else {
			answer, err = e.driver.Input(ctx, InputConfig{Message: control.Label, Default: current, Help: control.Placeholder})
		}
		if err != nil {
			return nil, err
		}
		input = answer
	case properties.KindSelect:
		current, _ := state.Value.(string)
		options := make([]string, 0, len(control.Options)+1)
		def := 0
		for i, opt := range control.Options {
			options = append(options, control.OptionLabel(opt.Value))
			if opt.Value == current {
				def = i
			}
		}
		if state.Unknown {
			options = append(options, fmt.Sprintf("Keep %q", current))
			def = len(options) - 1
		}
		idx, err := e.driver.Select(ctx, SelectConfig{Message: control.Label, Options: options, DefaultIndex: def})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(control.Options) {
			return nil, nil
		}
		input = control.Options[idx].Value
	case properties.KindToggle:
		current, _ := state.Value.(bool)
		answer, err := e.driver.Confirm(ctx, ConfirmConfig{Message: control.Label, Default: current})
		if err != nil {
			return nil, err
		}
		input = answer
	case properties.KindSlider:
		current, _ := state.Value.(float64)
		answer, err := e.driver.Input(ctx, InputConfig{
			Message: control.Label,
			Default: strconv.FormatFloat(current, 'f', -1, 64),
			Help:    sliderHelp(control),
			Validator: func(s string) error {
				_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				return err
			},
		})
		if err != nil {
			return nil, err
		}
		input = answer
	case properties.KindColor:
		current, _ := state.Value.(properties.ColorValue)
		answer, err := e.driver.Input(ctx, InputConfig{
			Message: control.Label,
			Default: current.Raw,
			Help:    "hex (#rrggbb) or token(name): " + strings.Join(e.engine.Palette().Tokens(), ", "),
			Validator: func(s string) error {
				_, err := e.engine.Patch(control, s)
				return err
			},
		})
		if err != nil {
			return nil, err
		}
		input = answer
	case properties.KindList:
		return e.askList(ctx, block, control)
	default:
		return nil, nil
	}

	patch, err := e.engine.Patch(control, input)
	if err != nil {
		return nil, err
	}
	current, ok := document.GetPath(block.Props, control.Key)
	if ok && reflect.DeepEqual(current, patch.Value) {
		return nil, nil
	}
	if !ok && (reflect.DeepEqual(state.Value, patch.Value) || patch.Value == "") {
		return nil, nil
	}
	return []document.Patch{patch}, nil
}

func (e *Editor) askList(ctx context.Context, block document.Block, control properties.Control) ([]document.Patch, error) {
	var patches []document.Patch
	for {
		items := properties.ReadList(valueAt(block, control.Key))
		options := []string{listDone, listAdd}
		for _, item := range items {
			options = append(options, "Edit "+itemTitle(item), "Remove "+itemTitle(item))
		}
		idx, err := e.driver.Select(ctx, SelectConfig{Message: control.Label, Options: options})
		if err != nil {
			return nil, err
		}

		var patch document.Patch
		switch {
		case idx <= 0 || idx >= len(options):
			return patches, nil
		case idx == 1:
			patch, err = e.engine.AddItemPatch(block, control, "")
		default:
			item := (idx - 2) / 2
			if (idx-2)%2 == 1 {
				patch, err = e.engine.RemoveItemPatch(block, control, item)
				break
			}
			patch, err = e.editItem(ctx, block, control, item, items[item])
		}
		if err != nil {
			return nil, err
		}
		props, err := document.SetPath(block.Props, patch.Path, patch.Value)
		if err != nil {
			return nil, err
		}
		block.Props = props
		patches = append(patches, patch)
	}
}

func (e *Editor) editItem(ctx context.Context, block document.Block, control properties.Control, index int, item properties.ListItem) (document.Patch, error) {
	label, err := e.driver.Input(ctx, InputConfig{Message: "Label", Default: item.Label})
	if err != nil {
		return document.Patch{}, err
	}
	link, err := e.driver.Input(ctx, InputConfig{Message: "Link (" + item.LinkKey + ")", Default: item.Target()})
	if err != nil {
		return document.Patch{}, err
	}
	patch, err := e.engine.UpdateItemPatch(block, control, index, properties.FieldLabel, label)
	if err != nil {
		return document.Patch{}, err
	}
	props, err := document.SetPath(block.Props, patch.Path, patch.Value)
	if err != nil {
		return document.Patch{}, err
	}
	block.Props = props
	return e.engine.UpdateItemPatch(block, control, index, properties.FieldLink, link)
}

func valueAt(block document.Block, key string) any {
	value, _ := document.GetPath(block.Props, key)
	return value
}

func itemTitle(item properties.ListItem) string {
	if item.Blank {
		return "(empty entry)"
	}
	label := strings.TrimSpace(item.Label)
	if label == "" {
		label = "(untitled)"
	}
	if target := item.Target(); target != "" {
		return label + " -> " + target
	}
	return label
}

func sliderHelp(control properties.Control) string {
	var parts []string
	if control.Min != nil {
		parts = append(parts, "min "+strconv.FormatFloat(*control.Min, 'f', -1, 64))
	}
	if control.Max != nil {
		parts = append(parts, "max "+strconv.FormatFloat(*control.Max, 'f', -1, 64))
	}
	if control.Step != nil {
		parts = append(parts, "step "+strconv.FormatFloat(*control.Step, 'f', -1, 64))
	}
	return strings.Join(parts, ", ")
}
