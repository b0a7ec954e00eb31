package properties

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
	"github.com/goliatone/go-pagebuilder/pkg/properties/expr"
)

//go:embed catalog/*.yaml
var embeddedCatalog embed.FS

// EmbeddedFS returns the bundled block catalogs.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedCatalog, "catalog")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Catalog holds one property schema per block type. It is immutable after
// loading and safe for concurrent readers.
type Catalog struct {
	entries map[string]entry
}

type entry struct {
	blockType string
	source    string
	defaults  map[string]any
	groups    []Group
}

type catalogFile struct {
	Type     string         `json:"type" yaml:"type"`
	Defaults map[string]any `json:"defaults" yaml:"defaults"`
	Groups   []Group        `json:"groups" yaml:"groups"`
}

// DefaultCatalog loads the embedded catalogs.
func DefaultCatalog() (*Catalog, error) {
	return LoadFS(EmbeddedFS())
}

// MustDefaultCatalog is DefaultCatalog for package initialisation and tests.
func MustDefaultCatalog() *Catalog {
	catalog, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// LoadFS walks fsys and parses every JSON/YAML catalog file. A nil fsys
// yields an empty catalog.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{entries: make(map[string]entry)}
	if fsys == nil {
		return catalog, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isCatalogFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("properties: read %s: %w", path, err)
		}
		file, err := parseCatalogFile(data, path)
		if err != nil {
			return err
		}
		parsed, err := normaliseEntry(file, path)
		if err != nil {
			return err
		}
		if existing, dup := catalog.entries[parsed.blockType]; dup {
			return fmt.Errorf("properties: block type %q defined in %s and %s", parsed.blockType, existing.source, path)
		}
		catalog.entries[parsed.blockType] = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

func parseCatalogFile(data []byte, source string) (catalogFile, error) {
	var file catalogFile
	if strings.TrimSpace(string(data)) == "" {
		return file, fmt.Errorf("properties: file %s is empty", source)
	}
	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &file); err != nil {
			return file, fmt.Errorf("properties: parse %s: %w", source, err)
		}
		return file, nil
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("properties: parse %s: %w", source, err)
	}
	return file, nil
}

func normaliseEntry(file catalogFile, source string) (entry, error) {
	blockType := strings.TrimSpace(file.Type)
	if blockType == "" {
		return entry{}, fmt.Errorf("properties: file %s has no block type", source)
	}
	out := entry{
		blockType: blockType,
		source:    source,
		defaults:  document.NormalizeProps(file.Defaults),
		groups:    make([]Group, 0, len(file.Groups)),
	}
	for _, group := range file.Groups {
		name := strings.TrimSpace(group.Name)
		switch name {
		case GroupContent, GroupStyle, GroupAdvanced:
		default:
			return entry{}, fmt.Errorf("properties: %s: unknown group %q", source, group.Name)
		}
		controls := make([]Control, 0, len(group.Controls))
		for idx, control := range group.Controls {
			if err := checkControl(control); err != nil {
				return entry{}, fmt.Errorf("properties: %s: group %s control %d: %w", source, name, idx, err)
			}
			controls = append(controls, control)
		}
		out.groups = append(out.groups, Group{Name: name, Controls: controls})
	}
	return out, nil
}

func checkControl(c Control) error {
	if !c.Type.Valid() {
		return fmt.Errorf("unknown control type %q", c.Type)
	}
	if _, err := document.ParsePath(c.Key); err != nil {
		return err
	}
	if c.Type == KindSelect && len(c.Options) == 0 {
		return fmt.Errorf("select %q has no options", c.Key)
	}
	if c.Type == KindSlider {
		lo, hi, _ := c.bounds()
		if lo > hi {
			return fmt.Errorf("slider %q has min %v above max %v", c.Key, lo, hi)
		}
	}
	if _, err := expr.Compile(c.ShowIf); err != nil {
		return fmt.Errorf("showIf of %q: %w", c.Key, err)
	}
	return nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Groups returns the property groups for blockType. Unknown types yield an
// empty slice, never an error.
func (c *Catalog) Groups(blockType string) []Group {
	if c == nil {
		return []Group{}
	}
	e, ok := c.entries[blockType]
	if !ok {
		return []Group{}
	}
	out := make([]Group, len(e.groups))
	for i, group := range e.groups {
		out[i] = Group{Name: group.Name, Controls: append([]Control(nil), group.Controls...)}
	}
	return out
}

// Defaults returns a fresh copy of the default props for blockType.
func (c *Catalog) Defaults(blockType string) map[string]any {
	if c == nil {
		return map[string]any{}
	}
	e, ok := c.entries[blockType]
	if !ok || e.defaults == nil {
		return map[string]any{}
	}
	block := document.Block{Props: e.defaults}
	return block.Clone().Props
}

// Control finds the control bound to key for blockType.
func (c *Catalog) Control(blockType, key string) (Control, bool) {
	for _, group := range c.Groups(blockType) {
		for _, control := range group.Controls {
			if control.Key == key {
				return control, true
			}
		}
	}
	return Control{}, false
}

// Types lists the block types that have a catalog, sorted.
func (c *Catalog) Types() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.entries))
	for name := range c.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
