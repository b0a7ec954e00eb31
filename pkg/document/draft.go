package document

// Draft is the serialisable page: an optional header, an ordered body and an
// optional footer. Body order is the rendering order.
type Draft struct {
	Header *Block  `json:"header" bson:"header" yaml:"header"`
	Footer *Block  `json:"footer" bson:"footer" yaml:"footer"`
	Body   []Block `json:"body" bson:"body" yaml:"body"`
}

// Clone returns a deep copy sharing no mutable state with d.
func (d Draft) Clone() Draft {
	out := Draft{}
	if d.Header != nil {
		header := d.Header.Clone()
		out.Header = &header
	}
	if d.Footer != nil {
		footer := d.Footer.Clone()
		out.Footer = &footer
	}
	if d.Body != nil {
		out.Body = make([]Block, len(d.Body))
		for i, block := range d.Body {
			out.Body[i] = block.Clone()
		}
	}
	return out
}

// Empty reports whether the draft holds no blocks at all.
func (d Draft) Empty() bool {
	return d.Header == nil && d.Footer == nil && len(d.Body) == 0
}

// IDs lists every block id in render order: header, body, footer.
func (d Draft) IDs() []string {
	ids := make([]string, 0, len(d.Body)+2)
	if d.Header != nil {
		ids = append(ids, d.Header.ID)
	}
	for _, block := range d.Body {
		ids = append(ids, block.ID)
	}
	if d.Footer != nil {
		ids = append(ids, d.Footer.ID)
	}
	return ids
}

// BodyIDs lists the body block ids in order.
func (d Draft) BodyIDs() []string {
	ids := make([]string, len(d.Body))
	for i, block := range d.Body {
		ids[i] = block.ID
	}
	return ids
}

// IndexOf returns the body index of id or -1.
func (d Draft) IndexOf(id string) int {
	for i, block := range d.Body {
		if block.ID == id {
			return i
		}
	}
	return -1
}

// Find returns a copy of the block with id wherever it lives.
func (d Draft) Find(id string) (Block, bool) {
	if id == "" {
		return Block{}, false
	}
	if d.Header != nil && d.Header.ID == id {
		return d.Header.Clone(), true
	}
	if d.Footer != nil && d.Footer.ID == id {
		return d.Footer.Clone(), true
	}
	if idx := d.IndexOf(id); idx >= 0 {
		return d.Body[idx].Clone(), true
	}
	return Block{}, false
}

// ZoneOf reports the slot holding id.
func (d Draft) ZoneOf(id string) (Zone, bool) {
	switch {
	case id == "":
		return "", false
	case d.Header != nil && d.Header.ID == id:
		return ZoneHeader, true
	case d.Footer != nil && d.Footer.ID == id:
		return ZoneFooter, true
	case d.IndexOf(id) >= 0:
		return ZoneBody, true
	default:
		return "", false
	}
}

// Validate checks the Draft invariants: slot zones match, body blocks are
// body-zoned, ids are non-empty and unique.
func Validate(d Draft) error {
	seen := make(map[string]struct{}, len(d.Body)+2)
	check := func(block Block, slot Zone) error {
		if block.ID == "" {
			return invalid("validate", "%s block of type %q has an empty id", slot, block.Type)
		}
		if block.Zone != slot {
			return invalid("validate", "block %q has zone %q but sits in the %s slot", block.ID, block.Zone, slot)
		}
		if _, dup := seen[block.ID]; dup {
			return invalid("validate", "duplicate block id %q", block.ID)
		}
		seen[block.ID] = struct{}{}
		return nil
	}

	if d.Header != nil {
		if err := check(*d.Header, ZoneHeader); err != nil {
			return err
		}
	}
	for _, block := range d.Body {
		if err := check(block, ZoneBody); err != nil {
			return err
		}
	}
	if d.Footer != nil {
		if err := check(*d.Footer, ZoneFooter); err != nil {
			return err
		}
	}
	return nil
}
