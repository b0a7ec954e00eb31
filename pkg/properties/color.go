package properties

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

var (
	tokenPattern = regexp.MustCompile(`^token\(\s*([A-Za-z0-9_.-]+)\s*\)$`)
	hexPattern   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// DefaultManifest is the palette used when no theme is configured. Only its
// color tokens matter to the property engine.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "pagebuilder",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#4f46e5",
			"accent":  "#f59e0b",
			"ink":     "#111827",
			"muted":   "#6b7280",
			"surface": "#ffffff",
			"subtle":  "#f3f4f6",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"ink":     "#f9fafb",
					"muted":   "#9ca3af",
					"surface": "#111827",
					"subtle":  "#1f2937",
				},
			},
		},
	}
}

// Palette links design tokens to hex colors.
type Palette struct {
	tokens map[string]string
	byHex  map[string]string
}

// NewPalette builds a palette from the manifest's tokens with the variant's
// tokens layered on top. Tokens whose value is not a hex color are ignored.
func NewPalette(manifest *theme.Manifest, variant string) *Palette {
	p := &Palette{tokens: map[string]string{}, byHex: map[string]string{}}
	if manifest == nil {
		return p
	}
	merged := make(map[string]string, len(manifest.Tokens))
	for name, value := range manifest.Tokens {
		merged[name] = value
	}
	if v, ok := manifest.Variants[variant]; ok {
		for name, value := range v.Tokens {
			merged[name] = value
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		hex, ok := normalizeHex(merged[name])
		if !ok {
			continue
		}
		p.tokens[name] = hex
		if _, taken := p.byHex[hex]; !taken {
			p.byHex[hex] = name
		}
	}
	return p
}

// PaletteFromSelection builds a palette from a go-theme selection.
func PaletteFromSelection(sel *theme.Selection) *Palette {
	if sel == nil {
		return NewPalette(nil, "")
	}
	return NewPalette(sel.Manifest, sel.Variant)
}

// Hex returns the hex value of token.
func (p *Palette) Hex(token string) (string, bool) {
	if p == nil {
		return "", false
	}
	hex, ok := p.tokens[token]
	return hex, ok
}

// Token returns the first token name (alphabetically) whose value is hex.
func (p *Palette) Token(hex string) (string, bool) {
	if p == nil {
		return "", false
	}
	normalized, ok := normalizeHex(hex)
	if !ok {
		return "", false
	}
	name, ok := p.byHex[normalized]
	return name, ok
}

// Tokens returns the sorted token names.
func (p *Palette) Tokens() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.tokens))
	for name := range p.tokens {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseColor resolves a stored color string against the palette. Hex values
// and token(name) expressions are linked both ways; anything else is kept
// in Raw with both sides empty.
func (p *Palette) ParseColor(raw string) ColorValue {
	trimmed := strings.TrimSpace(raw)
	out := ColorValue{Raw: trimmed}
	if m := tokenPattern.FindStringSubmatch(trimmed); m != nil {
		out.Token = m[1]
		out.Hex, _ = p.Hex(m[1])
		return out
	}
	if hex, ok := normalizeHex(trimmed); ok {
		out.Hex = hex
		out.Token, _ = p.Token(hex)
	}
	return out
}

// FromHex returns the value stored when the hex side is edited.
func (p *Palette) FromHex(hex string) (ColorValue, error) {
	normalized, ok := normalizeHex(hex)
	if !ok {
		return ColorValue{}, fmt.Errorf("properties: %q is not a hex color", hex)
	}
	return p.ParseColor(normalized), nil
}

// FromToken returns the value stored when the token side is edited.
func (p *Palette) FromToken(name string) (ColorValue, error) {
	name = strings.TrimSpace(name)
	if _, ok := p.Hex(name); !ok {
		return ColorValue{}, fmt.Errorf("properties: unknown color token %q", name)
	}
	return p.ParseColor(TokenExpr(name)), nil
}

// CSSVarPrefix prefixes the custom property emitted for every palette token.
const CSSVarPrefix = "--pb-"

// CSSValue converts a stored color into a CSS value: tokens become custom
// property references, hex values are normalised, anything else yields "".
func CSSValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := tokenPattern.FindStringSubmatch(trimmed); m != nil {
		return "var(" + CSSVarPrefix + m[1] + ")"
	}
	if hex, ok := normalizeHex(trimmed); ok {
		return hex
	}
	return ""
}

// RendererConfig exposes the palette as go-theme renderer data, one CSS
// custom property per token.
func (p *Palette) RendererConfig(themeName, variant string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Theme:   themeName,
		Variant: variant,
		Tokens:  map[string]string{},
		CSSVars: map[string]string{},
	}
	if p == nil {
		return cfg
	}
	for name, hex := range p.tokens {
		cfg.Tokens[name] = hex
		cfg.CSSVars[CSSVarPrefix+name] = hex
	}
	return cfg
}

// TokenExpr formats a token reference.
func TokenExpr(name string) string {
	return "token(" + name + ")"
}

func normalizeHex(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !hexPattern.MatchString(value) {
		return "", false
	}
	digits := strings.ToLower(value[1:])
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	return "#" + digits, true
}
