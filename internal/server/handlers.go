package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	"github.com/goliatone/go-pagebuilder/pkg/templates"
)

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var (
		d   document.Draft
		err error
	)
	if r.URL.Query().Get("source") == "mirror" && s.mirror != nil {
		d, err = s.readMirror()
	} else {
		d, err = s.service.Load(r.Context(), slug)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderPage(w, r, "html", d, render.RenderOptions{Mode: render.ModePreview})
}

// readMirror reads the mirror once per request; there is no live
// subscription.
func (s *Server) readMirror() (document.Draft, error) {
	d, ok, err := s.mirror.Read()
	if err != nil {
		return document.Draft{}, err
	}
	if !ok {
		return document.Draft{}, &document.NotFoundError{Kind: "mirror", ID: "local"}
	}
	return d, nil
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Load(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	query := r.URL.Query()
	s.renderPage(w, r, "html", d, render.RenderOptions{
		Mode:     render.ModeEdit,
		Selected: query.Get("selected"),
		Hovered:  query.Get("hovered"),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode, err := render.ParseMode(query.Get("mode"))
	if err != nil {
		s.writeError(w, r, &document.ValidationError{Op: "render", Reason: err.Error()})
		return
	}
	d, err := s.service.Load(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := query.Get("renderer")
	if name == "" {
		name = "json"
	}
	s.renderPage(w, r, name, d, render.RenderOptions{Mode: mode, Selected: query.Get("selected")})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, d document.Draft, opts render.RenderOptions) {
	opts.Theme = s.themeCfg
	out, contentType, err := s.registry.Render(r.Context(), name, d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Load(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDraft(w, r, http.StatusOK, d)
}

func (s *Server) writeDraft(w http.ResponseWriter, r *http.Request, status int, d document.Draft) {
	data, err := document.Encode(d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

type saveResponse struct {
	Slug   string         `json:"slug"`
	Seq    uint64         `json:"seq"`
	Status persist.Status `json:"status"`
}

// handlePutPage stores the request body under the slug. A request whose
// X-Draft-Seq is not newer than the last sequenced save is refused with 409.
func (s *Server) handlePutPage(w http.ResponseWriter, r *http.Request) {
	key := persist.PageKey{Owner: r.Header.Get(OwnerHeader), Slug: chi.URLParam(r, "slug")}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, &document.ValidationError{Op: "save", Reason: err.Error()})
		return
	}
	d, err := document.Decode(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Without SeqHeader the write replaces the page and restarts its
	// sequence, so an editor that saves afterwards starts from seq 1.
	var seq uint64
	if header := r.Header.Get(SeqHeader); header != "" {
		if seq, err = parseSeq(header); err != nil {
			s.writeError(w, r, err)
			return
		}
		err = s.service.Save(r.Context(), key, d, seq)
	} else {
		err = s.service.Replace(r.Context(), key, d)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.mirror != nil {
		if err := s.mirror.Write(d); err != nil {
			s.logger.Warn().Err(err).Str("page", key.String()).Msg("server: mirror write failed")
		}
	}
	writeJSON(w, http.StatusOK, saveResponse{Slug: key.Slug, Seq: seq, Status: persist.StatusSaved})
}

type templateSummary struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Category    templates.Category `json:"category"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	list := s.templates.List()
	if raw := r.URL.Query().Get("category"); raw != "" {
		category := templates.Category(strings.ToLower(raw))
		if !category.Valid() {
			s.writeError(w, r, &document.ValidationError{Op: "templates", Reason: "unknown category " + raw})
			return
		}
		list = s.templates.ByCategory(category)
	}
	out := make([]templateSummary, 0, len(list))
	for _, tpl := range list {
		out = append(out, templateSummary{ID: tpl.ID, Name: tpl.Name, Description: tpl.Description, Category: tpl.Category})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleInstantiate returns a fresh draft built from the template. With a
// slug query parameter the draft is also stored under that slug.
func (s *Server) handleInstantiate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.templates.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d := templates.Instantiate(tpl, s.gen)

	slug := r.URL.Query().Get("slug")
	if slug == "" {
		s.writeDraft(w, r, http.StatusOK, d)
		return
	}
	key := persist.PageKey{Owner: r.Header.Get(OwnerHeader), Slug: slug}
	if err := s.service.Replace(r.Context(), key, d); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDraft(w, r, http.StatusCreated, d)
}

type schemaResponse struct {
	Type     string             `json:"type"`
	Zone     document.Zone      `json:"zone"`
	Defaults map[string]any     `json:"defaults"`
	Groups   []properties.Group `json:"groups"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	blockType := chi.URLParam(r, "type")
	zone, ok := document.ZoneForType(blockType)
	if !ok {
		s.writeError(w, r, &document.NotFoundError{Kind: "block type", ID: blockType})
		return
	}
	catalog := s.engine.Catalog()
	writeJSON(w, http.StatusOK, schemaResponse{
		Type:     blockType,
		Zone:     zone,
		Defaults: catalog.Defaults(blockType),
		Groups:   catalog.Groups(blockType),
	})
}
