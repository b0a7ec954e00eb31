// Package server exposes the preview surface and a JSON API over the page
// store.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	"github.com/goliatone/go-pagebuilder/pkg/templates"
)

const (
	// OwnerHeader carries the opaque owner token on writes.
	OwnerHeader = "X-Page-Owner"
	// SeqHeader optionally carries the editor's mutation sequence number.
	SeqHeader = "X-Draft-Seq"

	maxBodyBytes = 1 << 20
)

type Option func(*Server)

// WithRegistry sets the renderers served by /p, /edit and /api/render.
func WithRegistry(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithTemplates sets the template catalog.
func WithTemplates(catalog *templates.Catalog) Option {
	return func(s *Server) {
		if catalog != nil {
			s.templates = catalog
		}
	}
}

// WithEngine sets the property engine behind /api/schema.
func WithEngine(engine *properties.Engine) Option {
	return func(s *Server) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithMirror lets /p/{slug}?source=mirror read the local mirror instead of
// the store.
func WithMirror(mirror persist.Mirror) Option {
	return func(s *Server) {
		s.mirror = mirror
	}
}

// WithPalette sets the palette whose tokens the pages are themed with.
func WithPalette(palette *properties.Palette, themeName, variant string) Option {
	return func(s *Server) {
		if palette != nil {
			s.themeCfg = palette.RendererConfig(themeName, variant)
		}
	}
}

// WithIDGenerator sets the generator used when instantiating templates.
func WithIDGenerator(gen document.IDGenerator) Option {
	return func(s *Server) {
		if gen != nil {
			s.gen = gen
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server serves pages out of a persist.Service.
type Server struct {
	service   *persist.Service
	registry  *render.Registry
	templates *templates.Catalog
	engine    *properties.Engine
	mirror    persist.Mirror
	themeCfg  *theme.RendererConfig
	gen       document.IDGenerator
	logger    zerolog.Logger
}

// New returns a server over svc. The registry must be supplied through
// WithRegistry; templates and schema default to the embedded catalogs.
func New(svc *persist.Service, options ...Option) (*Server, error) {
	if svc == nil {
		return nil, errors.New("server: persistence service is required")
	}
	s := &Server{
		service: svc,
		gen:     document.DefaultIDGenerator,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.registry == nil {
		return nil, errors.New("server: renderer registry is required")
	}
	if s.templates == nil {
		catalog, err := templates.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.templates = catalog
	}
	if s.engine == nil {
		s.engine = properties.New()
	}
	return s, nil
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/p/{slug}", s.handlePreview)
	r.Get("/edit/{slug}", s.handleEdit)

	r.Route("/api", func(r chi.Router) {
		r.Get("/pages/{slug}", s.handleGetPage)
		r.Put("/pages/{slug}", s.handlePutPage)
		r.Get("/templates", s.handleTemplates)
		r.Post("/templates/{id}/instantiate", s.handleInstantiate)
		r.Get("/schema/{type}", s.handleSchema)
		r.Get("/render/{slug}", s.handleRender)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("server: request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps typed errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var verr *document.ValidationError
	switch {
	case document.IsNotFound(err):
		status = http.StatusNotFound
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, persist.ErrStaleSave):
		status = http.StatusConflict
	case errors.Is(err, persist.ErrOwnerMismatch):
		status = http.StatusForbidden
	case persist.IsPersistence(err):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("server: request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func parseSeq(raw string) (uint64, error) {
	seq, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || seq == 0 {
		return 0, &document.ValidationError{Op: "save", Reason: fmt.Sprintf("invalid %s %q", SeqHeader, raw)}
	}
	return seq, nil
}
