package document

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator mints block ids. Implementations must never return the same id
// twice, including for blocks created within the same clock tick.
type IDGenerator interface {
	NewID(blockType string) string
}

// IDFunc adapts a function into an IDGenerator.
type IDFunc func(blockType string) string

// NewID calls the underlying function.
func (fn IDFunc) NewID(blockType string) string {
	return fn(blockType)
}

// DefaultIDGenerator prefixes a random UUIDv4 with the block type, e.g.
// "hero-3f1c...". Random ids do not depend on the clock.
var DefaultIDGenerator IDGenerator = IDFunc(func(blockType string) string {
	prefix := strings.TrimSpace(blockType)
	if prefix == "" {
		prefix = "block"
	}
	return prefix + "-" + uuid.NewString()
})

// RegenerateIDs returns a copy of d where every block carries a fresh id from
// gen. Templates use it so instantiating the same preset twice never yields
// colliding ids.
func RegenerateIDs(d Draft, gen IDGenerator) Draft {
	if gen == nil {
		gen = DefaultIDGenerator
	}
	out := d.Clone()
	if out.Header != nil {
		out.Header.ID = gen.NewID(out.Header.Type)
	}
	if out.Footer != nil {
		out.Footer.ID = gen.NewID(out.Footer.Type)
	}
	for i := range out.Body {
		out.Body[i].ID = gen.NewID(out.Body[i].Type)
	}
	return out
}
