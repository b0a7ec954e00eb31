package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/properties/prompt"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PAGEBUILDER_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSample(t *testing.T, bodyCount int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "home.json")
	if err := persist.NewFileMirror(path).Write(testsupport.SampleDraft(t, bodyCount)); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestNew_WritesDraftFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.json")
	out, err := run(t, "new", path, "--template", "minimal-profile")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !strings.Contains(out, "Created") {
		t.Fatalf("unexpected output %q", out)
	}
	d, err := readDraft(path)
	if err != nil {
		t.Fatalf("readDraft: %v", err)
	}
	if d.Empty() {
		t.Fatalf("instantiated draft is empty")
	}

	if _, err := run(t, "new", path); err == nil {
		t.Fatalf("expected refusal to overwrite without --force")
	}
	if _, err := run(t, "new", path, "--force"); err != nil {
		t.Fatalf("new --force: %v", err)
	}
	if _, err := run(t, "new", "--template", "nope"); !document.IsNotFound(err) {
		t.Fatalf("unknown template error = %v", err)
	}
}

func TestRender(t *testing.T) {
	path := writeSample(t, 2)

	out, err := run(t, "render", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "paragraph 1") || strings.Contains(out, "aria-selected") {
		t.Fatalf("unexpected preview output:\n%s", out)
	}

	out, err = run(t, "render", path, "--renderer", "json", "--mode", "edit", "--selected", "b1")
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if payload["mode"] != "edit" {
		t.Fatalf("mode = %v", payload["mode"])
	}

	if _, err := run(t, "render", path, "--mode", "print"); err == nil {
		t.Fatalf("expected bad mode error")
	}
	if _, err := run(t, "render", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestTemplates_JSON(t *testing.T) {
	out, err := run(t, "templates", "--category", "profile", "--json")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	var list []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	ids := make([]string, len(list))
	for i, item := range list {
		ids[i] = item.ID
	}
	if diff := cmp.Diff([]string{"minimal-profile", "personal-brand"}, ids); diff != "" {
		t.Fatalf("template ids mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema(t *testing.T) {
	out, err := run(t, "schema", "text")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, want := range []string{"Content", "Style", "align", "left|center|right"} {
		if !strings.Contains(out, want) {
			t.Errorf("schema output missing %q:\n%s", want, out)
		}
	}
	if _, err := run(t, "schema", "rocket"); err == nil {
		t.Fatalf("expected unknown type error")
	}
}

// scriptedDriver answers text prompts and selects from fixed queues.
type scriptedDriver struct {
	answers []string
	selects []int
}

func (s *scriptedDriver) next() (string, error) {
	if len(s.answers) == 0 {
		return "", errors.New("no answer scripted")
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func (s *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) { return s.next() }

func (s *scriptedDriver) TextArea(context.Context, prompt.TextAreaConfig) (string, error) {
	return s.next()
}

func (s *scriptedDriver) Confirm(_ context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	return cfg.Default, nil
}

func (s *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	if len(s.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	idx := s.selects[0]
	s.selects = s.selects[1:]
	return idx, nil
}

func (s *scriptedDriver) Info(context.Context, string) error { return nil }

func useDriver(t *testing.T, d prompt.Driver) {
	t.Helper()
	prev := newDriver
	newDriver = func(*cobra.Command) prompt.Driver { return d }
	t.Cleanup(func() { newDriver = prev })
}

func TestEdit_RewritesDraftFile(t *testing.T) {
	path := writeSample(t, 2)
	// The picker lists h, b0, b1, f.
	useDriver(t, &scriptedDriver{
		answers: []string{"edited", "16", "token(ink)"},
		selects: []int{1, 2},
	})

	out, err := run(t, "edit", path)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "b0") {
		t.Fatalf("summary missing block id: %q", out)
	}
	d, err := readDraft(path)
	if err != nil {
		t.Fatalf("readDraft: %v", err)
	}
	block, _ := d.Find("b0")
	if block.Props["text"] != "edited" || block.Props["align"] != "right" {
		t.Fatalf("props not updated: %+v", block.Props)
	}
	if other, _ := d.Find("b1"); other.Props["text"] != "paragraph 1" {
		t.Fatalf("untouched block changed: %+v", other.Props)
	}
}

func TestEdit_NamedBlock(t *testing.T) {
	path := writeSample(t, 1)
	useDriver(t, &scriptedDriver{
		answers: []string{"paragraph 0", "16", "token(ink)"},
		selects: []int{0},
	})
	out, err := run(t, "edit", path, "--block", "b0")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "No changes") && !strings.Contains(out, "Updated") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := run(t, "edit", path, "--block", "zz"); !document.IsNotFound(err) {
		t.Fatalf("unknown block error = %v", err)
	}
	if _, err := run(t, "edit"); err == nil {
		t.Fatalf("expected error without a file or slug")
	}
}
