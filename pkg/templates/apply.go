package templates

import (
	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// HeaderFooterStructural are the keys Apply always forces on header and
// footer blocks.
var HeaderFooterStructural = []string{"layout", "height"}

// Instantiate returns a brand-new Draft deep-copied from the template with
// every block id regenerated by gen. Two instantiations of the same template
// never share an id.
func Instantiate(tpl Template, gen document.IDGenerator) document.Draft {
	return document.RegenerateIDs(document.Migrate(tpl.Structure), gen)
}

// Apply restyles block blockID of d with the template block of the same type.
// Template defaults fill the keys the block lacks, current values win for
// everything else, and the structural keys are forced to the template value.
// It returns a *document.NotFoundError when the block is missing or the
// template has no block of that type.
func Apply(tpl Template, d document.Draft, blockID string) (document.Draft, error) {
	target, ok := d.Find(blockID)
	if !ok {
		return d, &document.NotFoundError{Kind: "block", ID: blockID}
	}
	source, ok := tpl.blockOfType(target.Type)
	if !ok {
		return d, &document.NotFoundError{Kind: "template block", ID: tpl.ID + "/" + target.Type}
	}

	merged := make(map[string]any, len(source.Props)+len(target.Props))
	for key, value := range source.Props {
		merged[key] = value
	}
	for key, value := range target.Props {
		merged[key] = value
	}
	for _, key := range tpl.structuralKeys(target.Zone) {
		if value, ok := source.Props[key]; ok {
			merged[key] = value
		}
	}
	return document.ReplaceProps(d, blockID, document.NormalizeProps(merged))
}

// StructuralKeys reports the keys Apply forces for blocks in zone.
func (t Template) StructuralKeys(zone document.Zone) []string {
	return append([]string(nil), t.structuralKeys(zone)...)
}

func (t Template) structuralKeys(zone document.Zone) []string {
	if zone == document.ZoneHeader || zone == document.ZoneFooter {
		return HeaderFooterStructural
	}
	return t.Structural
}

func (t Template) blockOfType(blockType string) (document.Block, bool) {
	if t.Structure.Header != nil && t.Structure.Header.Type == blockType {
		return t.Structure.Header.Clone(), true
	}
	if t.Structure.Footer != nil && t.Structure.Footer.Type == blockType {
		return t.Structure.Footer.Clone(), true
	}
	for _, block := range t.Structure.Body {
		if block.Type == blockType {
			return block.Clone(), true
		}
	}
	return document.Block{}, false
}
