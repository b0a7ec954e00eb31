package properties

import (
	"fmt"
	"strings"
)

// List item fields accepted by UpdateItem. FieldLink writes to whichever of
// href/url the item already uses.
const (
	FieldLabel = "label"
	FieldLink  = "link"
	FieldHref  = "href"
	FieldURL   = "url"
)

// DefaultItemLabel is the label given to appended list items.
const DefaultItemLabel = "New link"

// ReadList converts a stored list into ListItems, one per stored entry so an
// item's index is also its index in the stored array. Entries that are not
// objects come back as Blank items.
func ReadList(raw any) []ListItem {
	entries, _ := raw.([]any)
	out := make([]ListItem, 0, len(entries))
	for _, entry := range entries {
		item, ok := entry.(map[string]any)
		if !ok {
			out = append(out, ListItem{LinkKey: FieldHref, Blank: true})
			continue
		}
		li := ListItem{Label: stringOf(item["label"]), LinkKey: linkKey(item)}
		if li.LinkKey == FieldURL {
			li.URL = stringOf(item["url"])
		} else {
			li.Href = stringOf(item["href"])
		}
		out = append(out, li)
	}
	return out
}

// AddItem returns items with a default entry appended. New entries use href.
func AddItem(items []any, label string) []any {
	if strings.TrimSpace(label) == "" {
		label = DefaultItemLabel
	}
	out := make([]any, len(items), len(items)+1)
	copy(out, items)
	return append(out, map[string]any{"label": label, "href": "#"})
}

// RemoveItem returns items without the entry at index. Out of range indices
// leave the list unchanged.
func RemoveItem(items []any, index int) []any {
	if index < 0 || index >= len(items) {
		return items
	}
	out := make([]any, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}

// UpdateItem sets field on the entry at index. Link edits keep the key the
// entry already uses, so an item stored with "url" is never rewritten to
// "href" and the other way round.
func UpdateItem(items []any, index int, field, value string) ([]any, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("properties: list index %d out of range (len %d)", index, len(items))
	}
	current, _ := items[index].(map[string]any)
	item := make(map[string]any, len(current)+1)
	for k, v := range current {
		item[k] = v
	}

	switch field {
	case FieldLabel:
		item["label"] = value
	case FieldLink, FieldHref, FieldURL:
		item[linkKey(item)] = value
	default:
		return nil, fmt.Errorf("properties: unknown list item field %q", field)
	}

	out := make([]any, len(items))
	copy(out, items)
	out[index] = item
	return out, nil
}

// linkKey reports the key an item stores its link under: "url" when only url
// is present, "href" otherwise.
func linkKey(item map[string]any) string {
	_, hasHref := item["href"]
	_, hasURL := item["url"]
	if hasURL && !hasHref {
		return FieldURL
	}
	return FieldHref
}

func stringOf(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
