package expr

import "testing"

func TestEvaluator(t *testing.T) {
	t.Parallel()

	props := map[string]any{
		"layout":  "logo-search-actions",
		"sticky":  true,
		"height":  float64(64),
		"compact": "false",
		"logo":    map[string]any{"text": "Acme", "src": ""},
		"nav":     []any{map[string]any{"label": "Home", "href": "/"}},
	}

	tests := []struct {
		rule string
		want bool
	}{
		{rule: "", want: true},
		{rule: `layout == "logo-search-actions"`, want: true},
		{rule: `layout == 'logo-burger'`, want: false},
		{rule: `layout != logo-burger`, want: true},
		{rule: `layout in ["rich", "logo-search-actions"]`, want: true},
		{rule: `layout in []`, want: false},
		{rule: `sticky && height == 64`, want: true},
		{rule: `!sticky || height != 64`, want: false},
		{rule: `compact == false`, want: true},
		{rule: `logo.text`, want: true},
		{rule: `logo.src`, want: false},
		{rule: `nav.0.href == "/"`, want: true},
		{rule: `missing == null`, want: true},
		{rule: `logo != null && (layout == "x" || sticky)`, want: true},
	}

	eval := New()
	for _, tt := range tests {
		got, err := eval.Eval(tt.rule, props)
		if err != nil {
			t.Fatalf("%q: %v", tt.rule, err)
		}
		if got != tt.want {
			t.Fatalf("%q = %v, want %v", tt.rule, got, tt.want)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	for _, rule := range []string{
		`layout = "x"`,
		`a & b`,
		`(a || b`,
		`layout ==`,
		`"x" == layout`,
		`layout in "x"`,
		`layout in ["a" "b"]`,
		`name == "unterminated`,
		`a b`,
	} {
		if _, err := Compile(rule); err == nil {
			t.Fatalf("%q: expected compile error", rule)
		}
	}
}

func TestEvaluatorCachesRules(t *testing.T) {
	t.Parallel()

	eval := New()
	if _, err := eval.Eval("sticky", nil); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	first, _ := eval.compile("sticky")
	second, _ := eval.compile("sticky")
	if first != second {
		t.Fatalf("expected cached rule to be reused")
	}
	if first.Source() != "sticky" {
		t.Fatalf("Source() = %q", first.Source())
	}
}
