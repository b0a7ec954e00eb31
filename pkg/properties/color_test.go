package properties

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"
)

func TestPalette_LinksTokensAndHex(t *testing.T) {
	palette := NewPalette(DefaultManifest(), "")

	tests := []struct {
		raw  string
		want ColorValue
	}{
		{raw: "token(brand)", want: ColorValue{Raw: "token(brand)", Hex: "#4f46e5", Token: "brand"}},
		{raw: "token( ink )", want: ColorValue{Raw: "token( ink )", Hex: "#111827", Token: "ink"}},
		{raw: "#FFF", want: ColorValue{Raw: "#FFF", Hex: "#ffffff", Token: "surface"}},
		{raw: "#123456", want: ColorValue{Raw: "#123456", Hex: "#123456"}},
		{raw: "token(nope)", want: ColorValue{Raw: "token(nope)", Token: "nope"}},
		{raw: "rebeccapurple", want: ColorValue{Raw: "rebeccapurple"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, palette.ParseColor(tt.raw)); diff != "" {
			t.Fatalf("%q: mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}

func TestPalette_EditEitherSide(t *testing.T) {
	palette := NewPalette(DefaultManifest(), "")

	fromToken, err := palette.FromToken("accent")
	if err != nil {
		t.Fatalf("FromToken: %v", err)
	}
	fromHex, err := palette.FromHex(fromToken.Hex)
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if fromHex.Token != "accent" || fromToken.Hex != fromHex.Hex {
		t.Fatalf("sides disagree: token=%+v hex=%+v", fromToken, fromHex)
	}
	if _, err := palette.FromHex("blue"); err == nil {
		t.Fatalf("expected error for non-hex input")
	}
	if _, err := palette.FromToken("nope"); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestPalette_VariantOverridesTokens(t *testing.T) {
	dark := PaletteFromSelection(&theme.Selection{Theme: "pagebuilder", Variant: "dark", Manifest: DefaultManifest()})

	if hex, _ := dark.Hex("surface"); hex != "#111827" {
		t.Fatalf("dark surface = %q", hex)
	}
	if hex, _ := dark.Hex("brand"); hex != "#4f46e5" {
		t.Fatalf("dark brand = %q", hex)
	}
	want := []string{"accent", "brand", "ink", "muted", "subtle", "surface"}
	if diff := cmp.Diff(want, dark.Tokens()); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestWidgetRegistry(t *testing.T) {
	reg := NewWidgetRegistry()
	tests := []struct {
		control Control
		want    string
	}{
		{control: Control{Type: KindList, Key: "nav"}, want: WidgetLinkList},
		{control: Control{Type: KindColor, Key: "background"}, want: WidgetSwatch},
		{control: Control{Type: KindSelect, Key: "align", Options: []SelectOption{{Value: "left"}, {Value: "right"}}}, want: WidgetSegments},
		{control: Control{Type: KindSelect, Key: "layout", Options: make([]SelectOption, 5)}, want: WidgetSelect},
		{control: Control{Type: KindText, Key: "text"}, want: WidgetTextarea},
		{control: Control{Type: KindText, Key: "logo.text"}, want: WidgetInput},
		{control: Control{Type: KindText, Key: "title", Widget: "rich-text"}, want: "rich-text"},
	}
	for _, tt := range tests {
		got, ok := reg.Resolve(tt.control)
		if !ok || got != tt.want {
			t.Fatalf("%s: got %q (ok=%v), want %q", tt.control.Key, got, ok, tt.want)
		}
	}

	reg.Register("markdown", 100, func(c Control) bool { return c.Key == "text" })
	if got, _ := reg.Resolve(Control{Type: KindText, Key: "text"}); got != "markdown" {
		t.Fatalf("higher priority matcher ignored, got %q", got)
	}
}

func TestCSSValueAndRendererConfig(t *testing.T) {
	tests := map[string]string{
		"token(brand)": "var(--pb-brand)",
		"#ABC":         "#aabbcc",
		"red":          "",
		"":             "",
	}
	for raw, want := range tests {
		if got := CSSValue(raw); got != want {
			t.Fatalf("CSSValue(%q) = %q, want %q", raw, got, want)
		}
	}

	cfg := NewPalette(DefaultManifest(), "dark").RendererConfig("pagebuilder", "dark")
	if cfg.CSSVars["--pb-surface"] != "#111827" || cfg.Tokens["brand"] != "#4f46e5" {
		t.Fatalf("unexpected renderer config: %+v", cfg)
	}
}
