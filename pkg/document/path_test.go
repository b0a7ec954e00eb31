package document_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path    string
		want    []string
		wantErr bool
	}{
		{path: "logo.text", want: []string{"logo", "text"}},
		{path: "nav[0].href", want: []string{"nav", "0", "href"}},
		{path: " nav.3 ", want: []string{"nav", "3"}},
		{path: "", wantErr: true},
		{path: "a..b", wantErr: true},
		{path: "a.", wantErr: true},
		{path: "a[1", wantErr: true},
		{path: "a.-2", wantErr: true},
	}
	for _, tt := range tests {
		got, err := document.ParsePath(tt.path)
		if tt.wantErr {
			if !document.IsValidation(err) {
				t.Fatalf("%q: expected validation error, got %v", tt.path, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.path, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%q: segments mismatch (-want +got):\n%s", tt.path, diff)
		}
	}
}

func TestGetPath(t *testing.T) {
	props := document.NormalizeProps(map[string]any{
		"logo": map[string]any{"text": "Acme"},
		"nav":  []map[string]any{{"label": "Home", "href": "/"}},
	})

	if got, ok := document.GetPath(props, "logo.text"); !ok || got != "Acme" {
		t.Fatalf("logo.text = %v, %v", got, ok)
	}
	if got, ok := document.GetPath(props, "nav.0.href"); !ok || got != "/" {
		t.Fatalf("nav.0.href = %v, %v", got, ok)
	}
	for _, path := range []string{"nav.1.href", "logo.src", "logo.text.more", "nav.x"} {
		if _, ok := document.GetPath(props, path); ok {
			t.Fatalf("%s: expected miss", path)
		}
	}
}

func TestSetPath_CopyOnWrite(t *testing.T) {
	nav := []any{map[string]any{"label": "Home"}}
	props := map[string]any{
		"logo": map[string]any{"text": "Acme", "src": "/a.png"},
		"nav":  nav,
	}

	got, err := document.SetPath(props, "logo.text", "Other")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	if props["logo"].(map[string]any)["text"] != "Acme" {
		t.Fatalf("input mutated")
	}
	if &got["nav"].([]any)[0] != &nav[0] {
		t.Fatalf("sibling nav was copied")
	}
	want := map[string]any{
		"logo": map[string]any{"text": "Other", "src": "/a.png"},
		"nav":  []any{map[string]any{"label": "Home"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}
}

func TestSetPath_CreatesContainers(t *testing.T) {
	got, err := document.SetPath(nil, "columns.0.title", "About")
	if err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	got, err = document.SetPath(got, "columns[1].links.0.label", "Blog")
	if err != nil {
		t.Fatalf("SetPath append: %v", err)
	}
	want := map[string]any{
		"columns": []any{
			map[string]any{"title": "About"},
			map[string]any{"links": []any{map[string]any{"label": "Blog"}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}
}

func TestSetPath_KindMismatch(t *testing.T) {
	props := map[string]any{
		"logo": map[string]any{"text": "Acme"},
		"nav":  []any{"a"},
	}
	if _, err := document.SetPath(props, "logo.0", "x"); !document.IsValidation(err) {
		t.Fatalf("index into object: expected validation error, got %v", err)
	}
	if _, err := document.SetPath(props, "nav.label", "x"); !document.IsValidation(err) {
		t.Fatalf("key into array: expected validation error, got %v", err)
	}
}

func TestSetPath_RejectsUnreachableTargets(t *testing.T) {
	props := map[string]any{
		"text": "Hello",
		"size": 16.0,
		"nav":  []any{map[string]any{"label": "Home"}},
	}
	paths := []string{
		"nav.2",
		"nav.2.label",
		"nav.99999999999999",
		"nav.99999999999999999999999",
		"fresh.1",
		"text.inner",
		"text.0",
		"size.unit",
		"nav.0.label.first",
	}
	for _, path := range paths {
		got, err := document.SetPath(props, path, "x")
		if !document.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", path, err)
		}
		if got != nil {
			t.Fatalf("%s: returned props %v", path, got)
		}
	}
	if props["text"] != "Hello" || len(props["nav"].([]any)) != 1 {
		t.Fatalf("input mutated: %v", props)
	}

	got, err := document.SetPath(props, "nav.1.label", "Blog")
	if err != nil {
		t.Fatalf("append at end: %v", err)
	}
	if n := len(got["nav"].([]any)); n != 2 {
		t.Fatalf("nav len = %d, want 2", n)
	}
}

func TestDeletePath(t *testing.T) {
	props := map[string]any{
		"logo": map[string]any{"text": "Acme", "src": "/a.png"},
		"nav":  []any{"a", "b", "c"},
	}

	got, err := document.DeletePath(props, "logo.src")
	if err != nil {
		t.Fatalf("DeletePath: %v", err)
	}
	got, _ = document.DeletePath(got, "nav.2")
	got, _ = document.DeletePath(got, "nav.0")
	got, _ = document.DeletePath(got, "missing.key")

	want := map[string]any{
		"logo": map[string]any{"text": "Acme"},
		"nav":  []any{nil, "b"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}
	if _, ok := props["logo"].(map[string]any)["src"]; !ok {
		t.Fatalf("input mutated")
	}
}
