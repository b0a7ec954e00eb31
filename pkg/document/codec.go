package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode serialises the draft as JSON.
func Encode(d Draft) ([]byte, error) {
	out := d.Clone()
	if out.Body == nil {
		out.Body = []Block{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("document: encode draft: %w", err)
	}
	return data, nil
}

// Decode parses a serialised draft, migrates legacy shapes and rejects
// anything that breaks the draft invariants or carries an unknown block type.
// Empty input decodes to an empty draft.
func Decode(raw []byte) (Draft, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Draft{Body: []Block{}}, nil
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, invalid("decode", "malformed draft: %v", err)
	}
	d = Migrate(d)
	if err := Check(d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Check runs Validate and additionally requires every block type to be known,
// to sit in its type's zone and to carry props that decode into its typed
// variant.
func Check(d Draft) error {
	if err := Validate(d); err != nil {
		return err
	}
	blocks := make([]Block, 0, len(d.Body)+2)
	if d.Header != nil {
		blocks = append(blocks, *d.Header)
	}
	blocks = append(blocks, d.Body...)
	if d.Footer != nil {
		blocks = append(blocks, *d.Footer)
	}
	for _, block := range blocks {
		zone, ok := ZoneForType(block.Type)
		if !ok {
			return invalid("check", "block %q has unknown type %q", block.ID, block.Type)
		}
		if zone != block.Zone {
			return invalid("check", "block %q of type %q cannot live in zone %q", block.ID, block.Type, block.Zone)
		}
		if _, err := DecodeProps(block); err != nil {
			return err
		}
	}
	return nil
}

// Migrate upgrades drafts written by earlier editors:
//   - blocks persisted without a zone take the zone of their slot;
//   - header nav items with neither href nor url get href "#".
func Migrate(d Draft) Draft {
	out := d.Clone()
	if out.Header != nil {
		if out.Header.Zone == "" {
			out.Header.Zone = ZoneHeader
		}
		out.Header.Props = migrateNav(out.Header.Props)
	}
	if out.Footer != nil && out.Footer.Zone == "" {
		out.Footer.Zone = ZoneFooter
	}
	for i := range out.Body {
		if out.Body[i].Zone == "" {
			out.Body[i].Zone = ZoneBody
		}
	}
	if out.Body == nil {
		out.Body = []Block{}
	}
	return out
}

func migrateNav(props map[string]any) map[string]any {
	nav, ok := props["nav"].([]any)
	if !ok {
		return props
	}
	for i, entry := range nav {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		_, hasHref := item["href"]
		_, hasURL := item["url"]
		if hasHref || hasURL {
			continue
		}
		item["href"] = "#"
		nav[i] = item
	}
	return props
}
