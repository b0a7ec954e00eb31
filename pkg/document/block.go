package document

import (
	"sort"
	"strings"

	"github.com/mohae/deepcopy"
)

// Zone names the structural slot a block occupies.
type Zone string

const (
	ZoneHeader Zone = "header"
	ZoneBody   Zone = "body"
	ZoneFooter Zone = "footer"
)

// Valid reports whether z is one of the three known zones.
func (z Zone) Valid() bool {
	switch z {
	case ZoneHeader, ZoneBody, ZoneFooter:
		return true
	default:
		return false
	}
}

// Built-in block types.
const (
	TypeHeader = "header"
	TypeFooter = "footer"
	TypeHero   = "hero"
	TypeText   = "text"
	TypeImage  = "image"
	TypeLinks  = "links"
	TypeSpacer = "spacer"
)

var blockZones = map[string]Zone{
	TypeHeader: ZoneHeader,
	TypeFooter: ZoneFooter,
	TypeHero:   ZoneBody,
	TypeText:   ZoneBody,
	TypeImage:  ZoneBody,
	TypeLinks:  ZoneBody,
	TypeSpacer: ZoneBody,
}

// ZoneForType returns the zone a block type lives in. Unknown types report
// false.
func ZoneForType(blockType string) (Zone, bool) {
	zone, ok := blockZones[strings.TrimSpace(blockType)]
	return zone, ok
}

// KnownType reports whether blockType has a registered zone and prop shape.
func KnownType(blockType string) bool {
	_, ok := ZoneForType(blockType)
	return ok
}

// Types returns the sorted list of built-in block types.
func Types() []string {
	out := make([]string, 0, len(blockZones))
	for name := range blockZones {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Block is one placed component instance.
type Block struct {
	ID    string         `json:"id" bson:"id" yaml:"id"`
	Type  string         `json:"type" bson:"type" yaml:"type"`
	Label string         `json:"label,omitempty" bson:"label,omitempty" yaml:"label,omitempty"`
	Zone  Zone           `json:"zone" bson:"zone" yaml:"zone"`
	Props map[string]any `json:"props,omitempty" bson:"props,omitempty" yaml:"props,omitempty"`
}

// Clone returns a deep copy of the block, props included.
func (b Block) Clone() Block {
	out := b
	out.Props = cloneProps(b.Props)
	return out
}

func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	copied, ok := deepcopy.Copy(NormalizeProps(props)).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return copied
}

// NewBlock builds a block of blockType with a fresh id from gen. The zone is
// derived from the type; unknown types are rejected.
func NewBlock(gen IDGenerator, blockType, label string, props map[string]any) (Block, error) {
	blockType = strings.TrimSpace(blockType)
	zone, ok := ZoneForType(blockType)
	if !ok {
		return Block{}, invalid("new block", "unknown block type %q", blockType)
	}
	if gen == nil {
		gen = DefaultIDGenerator
	}
	if label == "" {
		label = defaultLabel(blockType)
	}
	return Block{
		ID:    gen.NewID(blockType),
		Type:  blockType,
		Label: label,
		Zone:  zone,
		Props: cloneProps(props),
	}, nil
}

func defaultLabel(blockType string) string {
	if blockType == "" {
		return ""
	}
	return strings.ToUpper(blockType[:1]) + blockType[1:]
}

// NormalizeProps rewrites Go-constructed values ([]map[string]any,
// map[string]string, []string, integers) into the map[string]any / []any /
// float64 shapes that decoded JSON produces, so dot paths walk every props
// bag the same way and a draft compares equal to its own round trip.
func NormalizeProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for key, value := range props {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return NormalizeProps(typed)
	case map[string]string:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = v
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			if key, ok := k.(string); ok {
				out[key] = normalizeValue(v)
			}
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeValue(v)
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = NormalizeProps(v)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	default:
		return value
	}
}
