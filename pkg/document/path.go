package document

import (
	"strconv"
	"strings"
)

// Patch sets Value at the dot path Path inside a block's props.
type Patch struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// ParsePath splits a dot path into segments. Bracket indices are accepted and
// normalised ("nav[0].href" becomes nav, 0, href). Empty segments, unbalanced
// brackets and negative indices are malformed.
func ParsePath(path string) ([]string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, invalid("parse path", "empty dot-path")
	}
	if strings.Count(trimmed, "[") != strings.Count(trimmed, "]") {
		return nil, invalid("parse path", "unbalanced brackets in %q", path)
	}
	replacer := strings.NewReplacer("[", ".", "]", "")
	normalised := replacer.Replace(trimmed)

	segments := strings.Split(normalised, ".")
	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, invalid("parse path", "malformed dot-path %q", path)
		}
		if strings.HasPrefix(segment, "-") {
			if _, err := strconv.Atoi(segment); err == nil {
				return nil, invalid("parse path", "negative index in %q", path)
			}
		}
		segments[i] = segment
	}
	return segments, nil
}

// GetPath resolves path inside props. Numeric segments index arrays.
func GetPath(props map[string]any, path string) (any, bool) {
	segments, err := ParsePath(path)
	if err != nil || props == nil {
		return nil, false
	}
	var current any = props
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// SetPath returns a copy of props with value stored at path. Only the maps and
// slices along the path are copied; every sibling keeps its identity. Missing
// intermediate containers are created (a slice when the next segment is
// numeric, a map otherwise). An index may address an existing element or the
// slot one past the end, which appends. Larger indices, and paths that run
// through a scalar leaf, are malformed.
func SetPath(props map[string]any, path string, value any) (map[string]any, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	root, err := setIn(props, segments, value, path)
	if err != nil {
		return nil, err
	}
	out, _ := root.(map[string]any)
	return out, nil
}

func setIn(node any, segments []string, value any, path string) (any, error) {
	segment := segments[0]
	last := len(segments) == 1

	switch node.(type) {
	case nil, map[string]any, []any:
	default:
		return nil, invalid("set path", "segment %q of %q descends into a %T value", segment, path, node)
	}

	if idx, err := strconv.Atoi(segment); err == nil {
		if _, isMap := node.(map[string]any); isMap {
			return nil, invalid("set path", "segment %q of %q indexes an object", segment, path)
		}
		list, _ := node.([]any)
		if idx > len(list) {
			return nil, invalid("set path", "index %d of %q is past the end of a %d item array", idx, path, len(list))
		}
		copied := make([]any, len(list), len(list)+1)
		copy(copied, list)
		if idx == len(list) {
			copied = append(copied, nil)
		}
		if last {
			copied[idx] = value
			return copied, nil
		}
		child, err := setIn(copied[idx], segments[1:], value, path)
		if err != nil {
			return nil, err
		}
		copied[idx] = child
		return copied, nil
	}

	if _, isList := node.([]any); isList {
		return nil, invalid("set path", "segment %q of %q is not an index into an array", segment, path)
	}
	current, _ := node.(map[string]any)
	copied := make(map[string]any, len(current)+1)
	for k, v := range current {
		copied[k] = v
	}
	if last {
		copied[segment] = value
		return copied, nil
	}
	child, err := setIn(copied[segment], segments[1:], value, path)
	if err != nil {
		return nil, err
	}
	copied[segment] = child
	return copied, nil
}

// DeletePath returns a copy of props without the leaf named by path. Deleting
// the last element of an array shortens it; deleting any other element leaves
// a nil hole so later indices keep their meaning. A missing path is a no-op.
func DeletePath(props map[string]any, path string) (map[string]any, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if _, ok := GetPath(props, path); !ok {
		return props, nil
	}
	root := deleteIn(props, segments)
	out, _ := root.(map[string]any)
	return out, nil
}

func deleteIn(node any, segments []string) any {
	segment := segments[0]
	last := len(segments) == 1

	switch typed := node.(type) {
	case map[string]any:
		copied := make(map[string]any, len(typed))
		for k, v := range typed {
			copied[k] = v
		}
		if last {
			delete(copied, segment)
			return copied
		}
		copied[segment] = deleteIn(copied[segment], segments[1:])
		return copied
	case []any:
		idx, _ := strconv.Atoi(segment)
		copied := make([]any, len(typed))
		copy(copied, typed)
		if last {
			if idx == len(copied)-1 {
				return copied[:idx]
			}
			copied[idx] = nil
			return copied
		}
		copied[idx] = deleteIn(copied[idx], segments[1:])
		return copied
	default:
		return node
	}
}
