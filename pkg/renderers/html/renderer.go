// Package html renders a Draft as a standalone HTML document: the shared
// node tree encoded by Encoder inside an embedded pongo2 page shell.
package html

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-pagebuilder/pkg/render/template"
	"github.com/goliatone/go-pagebuilder/pkg/render/template/gotemplate"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/pagebuilder.css
var stylesheet string

// Name is the registry name of this renderer.
const Name = "html"

const pageTemplate = "templates/page.tpl"

// TemplatesFS exposes the embedded page shell.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// Stylesheet returns the embedded base stylesheet.
func Stylesheet() string {
	return stylesheet
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	policy           *bluemonday.Policy
	palette          *properties.Palette
	lang             string
	logger           zerolog.Logger
}

// WithTemplatesFS supplies an alternate shell bundle. It must contain
// templates/page.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads the shell bundle from disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithPolicy overrides the text sanitisation policy.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithPalette sets the palette used for token CSS variables when a request
// carries no theme.
func WithPalette(palette *properties.Palette) Option {
	return func(cfg *config) {
		if palette != nil {
			cfg.palette = palette
		}
	}
}

// WithLang sets the html lang attribute.
func WithLang(lang string) Option {
	return func(cfg *config) {
		if lang != "" {
			cfg.lang = lang
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// Renderer implements render.Renderer for HTML documents.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	encoder   *Encoder
	palette   *properties.Palette
	lang      string
	logger    zerolog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		lang:       "en",
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.palette == nil {
		cfg.palette = properties.NewPalette(properties.DefaultManifest(), "")
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
			gotemplate.WithGlobalData(map[string]any{"generator": "go-pagebuilder"}),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		encoder:   NewEncoder(cfg.policy),
		palette:   cfg.palette,
		lang:      cfg.lang,
		logger:    cfg.logger,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Fragment encodes the page tree without the document shell.
func (r *Renderer) Fragment(d document.Draft, options render.RenderOptions) string {
	return r.encoder.Encode(render.RenderDraft(d, options))
}

func (r *Renderer) Render(ctx context.Context, d document.Draft, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if options.Mode == "" {
		options.Mode = render.ModePreview
	}

	title := options.Title
	if title == "" {
		title = pageTitle(d)
	}
	themeCfg := options.Theme
	if themeCfg == nil {
		themeCfg = r.palette.RendererConfig("pagebuilder", "")
	}

	result, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"lang":       r.lang,
		"title":      title,
		"mode":       string(options.Mode),
		"stylesheet": stylesheet,
		"body":       r.Fragment(d, options),
		"theme": map[string]any{
			"name":    themeCfg.Theme,
			"variant": themeCfg.Variant,
			"cssVars": themeCfg.CSSVars,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	r.logger.Debug().Str("mode", string(options.Mode)).Int("blocks", len(d.IDs())).Msg("html: page rendered")
	return []byte(result), nil
}

func pageTitle(d document.Draft) string {
	if d.Header != nil {
		if props, err := document.DecodeProps(*d.Header); err == nil {
			if header, ok := props.(document.HeaderProps); ok && header.Logo.Text != "" {
				return header.Logo.Text
			}
		}
	}
	return "Page"
}
