package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/properties"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string
	info      []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int
	selects    []SelectConfig
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.info = append(s.info, msg)
	return nil
}

func linksDraft(t *testing.T, engine *properties.Engine) document.Draft {
	t.Helper()
	block, err := engine.NewBlock(document.IDFunc(func(string) string { return "l1" }), document.TypeLinks, "", nil)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	return document.Draft{Body: []document.Block{block}}
}

func TestEditor_WalksVisibleControls(t *testing.T) {
	engine := properties.New()
	driver := &stubDriver{
		inputs:    []string{"My links", "Site", "https://x.dev"},
		selectIdx: []int{1, 2, 0, 1},
	}
	editor := New(engine, WithDriver(driver))

	result, err := editor.Edit(context.Background(), linksDraft(t, engine), "l1")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}

	want := map[string]any{
		"title": "My links",
		"style": "list",
		"color": "token(brand)",
		"items": []any{
			map[string]any{"label": "Site", "href": "https://x.dev"},
			map[string]any{"label": properties.DefaultItemLabel, "href": "#"},
		},
	}
	if diff := cmp.Diff(want, result.Draft.Body[0].Props); diff != "" {
		t.Fatalf("props mismatch (-want +got):\n%s", diff)
	}

	var paths []string
	for _, patch := range result.Patches {
		paths = append(paths, patch.Path)
	}
	if diff := cmp.Diff([]string{"title", "items", "items", "style"}, paths); diff != "" {
		t.Fatalf("patch paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"== Content ==", "== Style =="}, driver.info); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if driver.inputPos != len(driver.inputs) {
		t.Fatalf("accent color should be hidden for list style; inputs used %d", driver.inputPos)
	}
}

func TestEditor_UnchangedAnswersEmitNoPatch(t *testing.T) {
	engine := properties.New()
	driver := &stubDriver{inputs: []string{"32"}}
	editor := New(engine, WithDriver(driver))

	spacer, _ := engine.NewBlock(document.IDFunc(func(string) string { return "s" }), document.TypeSpacer, "", nil)
	d := document.Draft{Body: []document.Block{spacer}}

	result, err := editor.Edit(context.Background(), d, "s")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if len(result.Patches) != 0 {
		t.Fatalf("expected no patches, got %v", result.Patches)
	}
}

func TestEditor_UnknownSelectValueKept(t *testing.T) {
	engine := properties.New()
	driver := &stubDriver{
		selectIdx: []int{3},
		textAreas: []string{"hi"},
		inputs:    []string{"40", "#111827"},
	}
	editor := New(engine, WithDriver(driver))

	d := document.Draft{Body: []document.Block{{
		ID: "t", Type: document.TypeText, Zone: document.ZoneBody,
		Props: map[string]any{"text": "hi", "align": "justify", "size": float64(40), "color": "#111827"},
	}}}

	result, err := editor.Edit(context.Background(), d, "t")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if len(result.Patches) != 0 {
		t.Fatalf("expected no patches, got %v", result.Patches)
	}
	last := driver.selects[0]
	if last.Options[last.DefaultIndex] != `Keep "justify"` {
		t.Fatalf("default option = %q", last.Options[last.DefaultIndex])
	}
}

func TestEditor_Errors(t *testing.T) {
	engine := properties.New()
	editor := New(engine, WithDriver(&stubDriver{}))

	if _, err := editor.Edit(context.Background(), document.Draft{}, "missing"); !document.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err := editor.Edit(context.Background(), linksDraft(t, engine), "l1")
	if err == nil {
		t.Fatalf("expected driver error to propagate")
	}
}
