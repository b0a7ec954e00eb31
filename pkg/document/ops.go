package document

// SetHeader places block in the header slot, replacing any previous header.
// A nil block clears the slot. The block's zone must be ZoneHeader and its id
// must not collide with a body or footer block.
func SetHeader(d Draft, block *Block) (Draft, error) {
	return setSlot(d, ZoneHeader, block)
}

// SetFooter places block in the footer slot; see SetHeader.
func SetFooter(d Draft, block *Block) (Draft, error) {
	return setSlot(d, ZoneFooter, block)
}

func setSlot(d Draft, slot Zone, block *Block) (Draft, error) {
	op := "set " + string(slot)
	out := d.Clone()
	if block == nil {
		if slot == ZoneHeader {
			out.Header = nil
		} else {
			out.Footer = nil
		}
		return out, nil
	}
	if block.Zone != slot {
		return d, invalid(op, "block %q has zone %q", block.ID, block.Zone)
	}
	if block.ID == "" {
		return d, invalid(op, "block id is required")
	}
	if d.IndexOf(block.ID) >= 0 {
		return d, invalid(op, "block id %q already used in body", block.ID)
	}
	other := d.Footer
	if slot == ZoneFooter {
		other = d.Header
	}
	if other != nil && other.ID == block.ID {
		return d, invalid(op, "block id %q already used", block.ID)
	}

	copied := block.Clone()
	if slot == ZoneHeader {
		out.Header = &copied
	} else {
		out.Footer = &copied
	}
	return out, nil
}

// InsertBody inserts block at index, clamped to [0, len(body)].
func InsertBody(d Draft, index int, block Block) (Draft, error) {
	if block.Zone != ZoneBody {
		return d, invalid("insert body", "block %q has zone %q", block.ID, block.Zone)
	}
	if block.ID == "" {
		return d, invalid("insert body", "block id is required")
	}
	if _, exists := d.Find(block.ID); exists {
		return d, invalid("insert body", "duplicate block id %q", block.ID)
	}
	index = clamp(index, 0, len(d.Body))

	out := d.Clone()
	body := make([]Block, 0, len(out.Body)+1)
	body = append(body, out.Body[:index]...)
	body = append(body, block.Clone())
	body = append(body, out.Body[index:]...)
	out.Body = body
	return out, nil
}

// RemoveBody drops the body block with id. Unknown ids are a no-op.
func RemoveBody(d Draft, id string) Draft {
	idx := d.IndexOf(id)
	if idx < 0 {
		return d
	}
	out := d.Clone()
	out.Body = append(out.Body[:idx], out.Body[idx+1:]...)
	return out
}

// MoveBody shifts the body block with id by delta positions, clamping at the
// list bounds. Moving past a boundary and unknown ids are no-ops.
func MoveBody(d Draft, id string, delta int) Draft {
	from := d.IndexOf(id)
	if from < 0 || delta == 0 {
		return d
	}
	to := clamp(from+delta, 0, len(d.Body)-1)
	if to == from {
		return d
	}
	out := d.Clone()
	block := out.Body[from]
	body := append(out.Body[:from:from], out.Body[from+1:]...)
	body = append(body[:to], append([]Block{block}, body[to:]...)...)
	out.Body = body
	return out
}

// DuplicateBody inserts a copy of the body block id right after it. The copy
// differs from the original only by a fresh id from gen. It returns the new
// draft and the id of the copy.
func DuplicateBody(d Draft, id string, gen IDGenerator) (Draft, string, error) {
	idx := d.IndexOf(id)
	if idx < 0 {
		return d, "", &NotFoundError{Kind: "block", ID: id}
	}
	if gen == nil {
		gen = DefaultIDGenerator
	}
	copied := d.Body[idx].Clone()
	copied.ID = gen.NewID(copied.Type)
	out, err := InsertBody(d, idx+1, copied)
	if err != nil {
		return d, "", err
	}
	return out, copied.ID, nil
}

// UpdatePropsAt applies patches, in order, to the props of the block with id
// (header, footer or body). Each patch only rebuilds the nested chain its
// path names. Either every patch applies or the draft is returned unchanged.
func UpdatePropsAt(d Draft, id string, patches ...Patch) (Draft, error) {
	zone, ok := d.ZoneOf(id)
	if !ok {
		return d, &NotFoundError{Kind: "block", ID: id}
	}
	props := NormalizeProps(d.propsOf(zone, id))
	for _, patch := range patches {
		next, err := SetPath(props, patch.Path, patch.Value)
		if err != nil {
			return d, err
		}
		props = next
	}
	return replaceProps(d, zone, id, props), nil
}

// DeletePropsAt removes the leaves named by paths from the block's props. It
// exists so inverse patches can restore keys that were absent before an edit.
func DeletePropsAt(d Draft, id string, paths ...string) (Draft, error) {
	zone, ok := d.ZoneOf(id)
	if !ok {
		return d, &NotFoundError{Kind: "block", ID: id}
	}
	props := NormalizeProps(d.propsOf(zone, id))
	for _, path := range paths {
		next, err := DeletePath(props, path)
		if err != nil {
			return d, err
		}
		props = next
	}
	return replaceProps(d, zone, id, props), nil
}

// ReplaceProps swaps the whole props bag of the block with id.
func ReplaceProps(d Draft, id string, props map[string]any) (Draft, error) {
	zone, ok := d.ZoneOf(id)
	if !ok {
		return d, &NotFoundError{Kind: "block", ID: id}
	}
	return replaceProps(d, zone, id, cloneProps(props)), nil
}

// propsOf returns the stored props without copying.
func (d Draft) propsOf(zone Zone, id string) map[string]any {
	switch zone {
	case ZoneHeader:
		return d.Header.Props
	case ZoneFooter:
		return d.Footer.Props
	default:
		return d.Body[d.IndexOf(id)].Props
	}
}

func replaceProps(d Draft, zone Zone, id string, props map[string]any) Draft {
	out := Draft{Header: d.Header, Footer: d.Footer, Body: d.Body}
	switch zone {
	case ZoneHeader:
		header := *d.Header
		header.Props = props
		out.Header = &header
	case ZoneFooter:
		footer := *d.Footer
		footer.Props = props
		out.Footer = &footer
	default:
		idx := d.IndexOf(id)
		body := make([]Block, len(d.Body))
		copy(body, d.Body)
		body[idx].Props = props
		out.Body = body
	}
	return out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
