// Package templates ships named, category-tagged page presets. A template can
// seed a brand-new Draft or restyle one block of an existing Draft.
package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

//go:embed catalog/*.yaml
var embeddedTemplates embed.FS

// EmbeddedFS returns the bundled template presets.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "catalog")
	if err != nil {
		panic(err)
	}
	return sub
}

// Category is the closed set of template families.
type Category string

const (
	CategoryProfile   Category = "profile"
	CategoryLanding   Category = "landing"
	CategoryPortfolio Category = "portfolio"
	CategoryStore     Category = "store"
	CategoryBlog      Category = "blog"
	CategoryCreator   Category = "creator"
	CategoryAgency    Category = "agency"
	CategoryEvent     Category = "event"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryProfile,
		CategoryLanding,
		CategoryPortfolio,
		CategoryStore,
		CategoryBlog,
		CategoryCreator,
		CategoryAgency,
		CategoryEvent,
	}
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Template is a structural preset. Structure ids are placeholders and never
// reach an instantiated Draft.
type Template struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category    Category       `json:"category" yaml:"category"`
	Structure   document.Draft `json:"structure" yaml:"structure"`
	// Structural names the body-block keys Apply forces to the template
	// value. Header and footer blocks always force layout and height.
	Structural []string `json:"structural,omitempty" yaml:"structural,omitempty"`
}

// Catalog is an immutable, id-indexed template list.
type Catalog struct {
	ordered []Template
	byID    map[string]int
}

// DefaultCatalog loads the embedded presets.
func DefaultCatalog() (*Catalog, error) {
	return LoadFS(EmbeddedFS())
}

// MustDefaultCatalog panics when the embedded presets fail to load.
func MustDefaultCatalog() *Catalog {
	catalog, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// LoadFS parses every .yaml, .yml or .json file under fsys. Templates are
// listed by category order and then by id.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var loaded []Template
	if fsys != nil {
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml", ".json":
			default:
				return nil
			}
			data, err := fs.ReadFile(fsys, path)
			if err != nil {
				return fmt.Errorf("templates: read %s: %w", path, err)
			}
			tpl, err := parseTemplate(data, path)
			if err != nil {
				return err
			}
			loaded = append(loaded, tpl)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return New(loaded...)
}

// New builds a catalog from in-memory templates after validating each one.
func New(templates ...Template) (*Catalog, error) {
	catalog := &Catalog{byID: make(map[string]int, len(templates))}
	for _, tpl := range templates {
		tpl, err := normalise(tpl)
		if err != nil {
			return nil, err
		}
		if _, dup := catalog.byID[tpl.ID]; dup {
			return nil, fmt.Errorf("templates: duplicate template id %q", tpl.ID)
		}
		catalog.byID[tpl.ID] = len(catalog.ordered)
		catalog.ordered = append(catalog.ordered, tpl)
	}
	rank := make(map[Category]int)
	for i, c := range Categories() {
		rank[c] = i
	}
	sort.SliceStable(catalog.ordered, func(i, j int) bool {
		a, b := catalog.ordered[i], catalog.ordered[j]
		if rank[a.Category] != rank[b.Category] {
			return rank[a.Category] < rank[b.Category]
		}
		return a.ID < b.ID
	})
	for i, tpl := range catalog.ordered {
		catalog.byID[tpl.ID] = i
	}
	return catalog, nil
}

func parseTemplate(data []byte, source string) (Template, error) {
	var tpl Template
	if strings.TrimSpace(string(data)) == "" {
		return tpl, fmt.Errorf("templates: file %s is empty", source)
	}
	var err error
	if strings.EqualFold(filepath.Ext(source), ".json") {
		err = json.Unmarshal(data, &tpl)
	} else {
		err = yaml.Unmarshal(data, &tpl)
	}
	if err != nil {
		return tpl, fmt.Errorf("templates: parse %s: %w", source, err)
	}
	return tpl, nil
}

func normalise(tpl Template) (Template, error) {
	tpl.ID = strings.TrimSpace(tpl.ID)
	if tpl.ID == "" {
		return tpl, fmt.Errorf("templates: template %q has no id", tpl.Name)
	}
	if !tpl.Category.Valid() {
		return tpl, fmt.Errorf("templates: %s: unknown category %q", tpl.ID, tpl.Category)
	}
	if tpl.Name == "" {
		tpl.Name = tpl.ID
	}
	structure := document.Migrate(tpl.Structure)
	normaliseBlock(structure.Header)
	normaliseBlock(structure.Footer)
	for i := range structure.Body {
		normaliseBlock(&structure.Body[i])
	}
	if err := document.Check(structure); err != nil {
		return tpl, fmt.Errorf("templates: %s: %w", tpl.ID, err)
	}
	tpl.Structure = structure
	return tpl, nil
}

func normaliseBlock(block *document.Block) {
	if block == nil {
		return
	}
	block.Props = document.NormalizeProps(block.Props)
}

// List returns every template, profile first.
func (c *Catalog) List() []Template {
	if c == nil {
		return []Template{}
	}
	out := make([]Template, len(c.ordered))
	for i, tpl := range c.ordered {
		out[i] = tpl.clone()
	}
	return out
}

// ByCategory returns the templates of one category. Placeholder categories
// yield an empty slice.
func (c *Catalog) ByCategory(category Category) []Template {
	out := []Template{}
	if c == nil {
		return out
	}
	for _, tpl := range c.ordered {
		if tpl.Category == category {
			out = append(out, tpl.clone())
		}
	}
	return out
}

// Get returns the template with id or a *document.NotFoundError.
func (c *Catalog) Get(id string) (Template, error) {
	if c != nil {
		if idx, ok := c.byID[strings.TrimSpace(id)]; ok {
			return c.ordered[idx].clone(), nil
		}
	}
	return Template{}, &document.NotFoundError{Kind: "template", ID: id}
}

func (t Template) clone() Template {
	out := t
	out.Structure = t.Structure.Clone()
	if t.Structural != nil {
		out.Structural = append([]string(nil), t.Structural...)
	}
	return out
}
