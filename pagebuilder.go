// Package pagebuilder re-exports the pieces most callers need: the draft
// types, a renderer registry with the built-in outputs, and constructors for
// the editing controller and persistence service.
package pagebuilder

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagebuilder/pkg/canvas"
	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	htmlrenderer "github.com/goliatone/go-pagebuilder/pkg/renderers/html"
	jsonrenderer "github.com/goliatone/go-pagebuilder/pkg/renderers/json"
)

// Draft is the serialisable page document.
type Draft = document.Draft

// Block is one typed block of a Draft.
type Block = document.Block

// RenderOptions carries the mode and edit chrome state of a render.
type RenderOptions = render.RenderOptions

// PageKey addresses a stored page.
type PageKey = persist.PageKey

type config struct {
	palette *properties.Palette
	lang    string
	indent  string
	logger  zerolog.Logger
}

// Option configures NewRegistry.
type Option func(*config)

// WithPalette sets the color tokens the HTML shell emits as CSS variables.
func WithPalette(palette *properties.Palette) Option {
	return func(cfg *config) {
		cfg.palette = palette
	}
}

// WithLang sets the html lang attribute.
func WithLang(lang string) Option {
	return func(cfg *config) {
		cfg.lang = lang
	}
}

// WithJSONIndent pretty-prints the json renderer output.
func WithJSONIndent(indent string) Option {
	return func(cfg *config) {
		cfg.indent = indent
	}
}

// WithLogger passes a logger to the renderers.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// NewRegistry returns a registry holding the html renderer (the default) and
// the json renderer.
func NewRegistry(options ...Option) (*render.Registry, error) {
	cfg := config{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	htmlOpts := []htmlrenderer.Option{htmlrenderer.WithLogger(cfg.logger)}
	if cfg.palette != nil {
		htmlOpts = append(htmlOpts, htmlrenderer.WithPalette(cfg.palette))
	}
	if cfg.lang != "" {
		htmlOpts = append(htmlOpts, htmlrenderer.WithLang(cfg.lang))
	}
	html, err := htmlrenderer.New(htmlOpts...)
	if err != nil {
		return nil, fmt.Errorf("pagebuilder: %w", err)
	}

	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(jsonrenderer.New(jsonrenderer.WithIndent(cfg.indent))); err != nil {
		return nil, err
	}
	return registry, nil
}

// RenderHTML renders d as a standalone HTML page in mode.
func RenderHTML(ctx context.Context, d Draft, mode render.Mode, options ...Option) ([]byte, error) {
	registry, err := NewRegistry(options...)
	if err != nil {
		return nil, err
	}
	out, _, err := registry.Render(ctx, htmlrenderer.Name, d, RenderOptions{Mode: mode})
	return out, err
}

// NewService wraps store with save sequencing, timeouts and retries.
func NewService(store persist.Store, options ...persist.ServiceOption) *persist.Service {
	return persist.NewService(store, options...)
}

// NewEditor returns a controller editing d under key.
func NewEditor(key PageKey, d Draft, options ...canvas.Option) *canvas.Controller {
	return canvas.New(key, d, options...)
}

// OpenEditor loads key through svc and returns a controller editing it.
func OpenEditor(ctx context.Context, svc *persist.Service, key PageKey, options ...canvas.Option) (*canvas.Controller, error) {
	return canvas.Open(ctx, svc, key, options...)
}
