package json

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/render"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

func TestRenderer_TreeRoundTrips(t *testing.T) {
	d := testsupport.SampleDraft(t, 2)
	out, err := New(WithIndent("  ")).Render(context.Background(), d, render.RenderOptions{Mode: render.ModeEdit, Selected: "b0"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var payload Payload
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Mode != render.ModeEdit {
		t.Fatalf("mode = %q", payload.Mode)
	}
	want := render.RenderDraft(d, render.RenderOptions{Mode: render.ModeEdit, Selected: "b0"})
	if diff := cmp.Diff(want, payload.Tree); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(render.RenderDraft(d, render.RenderOptions{}), render.StripChrome(payload.Tree)); diff != "" {
		t.Fatalf("stripped tree differs from preview (-want +got):\n%s", diff)
	}
}

func TestRenderer_DefaultsToPreview(t *testing.T) {
	out, err := New().Render(context.Background(), testsupport.SampleDraft(t, 0), render.RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var payload Payload
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Mode != render.ModePreview {
		t.Fatalf("mode = %q", payload.Mode)
	}
}
