package document

import (
	"encoding/json"
	"fmt"
)

// Props is the typed view of a block's property bag. Each block type has
// exactly one implementation; DecodeProps selects it by Block.Type.
type Props interface {
	BlockType() string
}

// LinkItem is one entry of a nav, action or link list. Items persisted with
// either Href or URL are both valid.
type LinkItem struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Target returns whichever of Href or URL the item carries.
func (l LinkItem) Target() string {
	if l.Href != "" {
		return l.Href
	}
	return l.URL
}

// Logo is the brand mark shown by headers and rich footers.
type Logo struct {
	Text string `json:"text,omitempty"`
	Src  string `json:"src,omitempty"`
}

// Image is a source plus alternate text.
type Image struct {
	Src string `json:"src,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// Search is the search box of the logo-search-actions header.
type Search struct {
	Placeholder string `json:"placeholder,omitempty"`
}

type HeaderProps struct {
	Layout     string     `json:"layout,omitempty"`
	Height     float64    `json:"height,omitempty"`
	Sticky     bool       `json:"sticky,omitempty"`
	Background string     `json:"background,omitempty"`
	TextColor  string     `json:"textColor,omitempty"`
	Logo       Logo       `json:"logo"`
	Nav        []LinkItem `json:"nav,omitempty"`
	Actions    []LinkItem `json:"actions,omitempty"`
	Search     Search     `json:"search"`
}

func (HeaderProps) BlockType() string { return TypeHeader }

// FooterColumn groups links under a title in column layouts.
type FooterColumn struct {
	Title string     `json:"title,omitempty"`
	Links []LinkItem `json:"links,omitempty"`
}

// Newsletter is the signup strip of the rich footer.
type Newsletter struct {
	Title       string `json:"title,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	ButtonLabel string `json:"buttonLabel,omitempty"`
}

type FooterProps struct {
	Layout     string         `json:"layout,omitempty"`
	Height     float64        `json:"height,omitempty"`
	Background string         `json:"background,omitempty"`
	TextColor  string         `json:"textColor,omitempty"`
	Logo       Logo           `json:"logo"`
	Copyright  string         `json:"copyright,omitempty"`
	Links      []LinkItem     `json:"links,omitempty"`
	Social     []LinkItem     `json:"social,omitempty"`
	Columns    []FooterColumn `json:"columns,omitempty"`
	Newsletter Newsletter     `json:"newsletter"`
}

func (FooterProps) BlockType() string { return TypeFooter }

type HeroProps struct {
	Layout     string   `json:"layout,omitempty"`
	Title      string   `json:"title,omitempty"`
	Subtitle   string   `json:"subtitle,omitempty"`
	Image      Image    `json:"image"`
	CTA        LinkItem `json:"cta"`
	Align      string   `json:"align,omitempty"`
	Background string   `json:"background,omitempty"`
}

func (HeroProps) BlockType() string { return TypeHero }

type TextProps struct {
	Text  string  `json:"text,omitempty"`
	Align string  `json:"align,omitempty"`
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
}

func (TextProps) BlockType() string { return TypeText }

type ImageProps struct {
	Image   Image   `json:"image"`
	Caption string  `json:"caption,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Rounded bool    `json:"rounded,omitempty"`
}

func (ImageProps) BlockType() string { return TypeImage }

type LinksProps struct {
	Title string     `json:"title,omitempty"`
	Style string     `json:"style,omitempty"`
	Items []LinkItem `json:"items,omitempty"`
	Color string     `json:"color,omitempty"`
}

func (LinksProps) BlockType() string { return TypeLinks }

type SpacerProps struct {
	Height float64 `json:"height,omitempty"`
}

func (SpacerProps) BlockType() string { return TypeSpacer }

// DecodeProps converts the block's untyped props into the typed variant for
// its type. A value of the wrong JSON kind (a string where a number belongs)
// is a schema mismatch and yields a ValidationError.
func DecodeProps(block Block) (Props, error) {
	var target Props
	switch block.Type {
	case TypeHeader:
		target = &HeaderProps{}
	case TypeFooter:
		target = &FooterProps{}
	case TypeHero:
		target = &HeroProps{}
	case TypeText:
		target = &TextProps{}
	case TypeImage:
		target = &ImageProps{}
	case TypeLinks:
		target = &LinksProps{}
	case TypeSpacer:
		target = &SpacerProps{}
	default:
		return nil, invalid("decode props", "unknown block type %q", block.Type)
	}

	if len(block.Props) > 0 {
		raw, err := json.Marshal(NormalizeProps(block.Props))
		if err != nil {
			return nil, fmt.Errorf("document: encode props of %q: %w", block.ID, err)
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, invalid("decode props", "block %q (%s): %v", block.ID, block.Type, err)
		}
	}

	switch typed := target.(type) {
	case *HeaderProps:
		return *typed, nil
	case *FooterProps:
		return *typed, nil
	case *HeroProps:
		return *typed, nil
	case *TextProps:
		return *typed, nil
	case *ImageProps:
		return *typed, nil
	case *LinksProps:
		return *typed, nil
	case *SpacerProps:
		return *typed, nil
	}
	return target, nil
}
