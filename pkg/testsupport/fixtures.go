package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// SequentialIDs returns a deterministic id generator ("hero-1", "text-2", ...)
// so tests can assert on ids without depending on random UUIDs.
func SequentialIDs() document.IDGenerator {
	var (
		mu sync.Mutex
		n  int
	)
	return document.IDFunc(func(blockType string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return blockType + "-" + strconv.Itoa(n)
	})
}

// Block builds a block of blockType with a fixed id. The zone is derived from
// the type and unknown types fail the test.
func Block(t testing.TB, id, blockType string, props map[string]any) document.Block {
	t.Helper()

	zone, ok := document.ZoneForType(blockType)
	if !ok {
		t.Fatalf("testsupport: unknown block type %q", blockType)
	}
	return document.Block{
		ID:    id,
		Type:  blockType,
		Label: blockType,
		Zone:  zone,
		Props: document.NormalizeProps(props),
	}
}

// SampleDraft returns a draft with a header, bodyCount text blocks ("b0",
// "b1", ...) and a footer.
func SampleDraft(t testing.TB, bodyCount int) document.Draft {
	t.Helper()

	header := Block(t, "h", document.TypeHeader, map[string]any{
		"layout": "logo-nav-actions",
		"logo":   map[string]any{"text": "Acme", "src": "/logo.png"},
		"nav": []any{
			map[string]any{"label": "Home", "href": "/"},
			map[string]any{"label": "Blog", "url": "/blog"},
		},
	})
	footer := Block(t, "f", document.TypeFooter, map[string]any{
		"layout":    "single-row",
		"copyright": "© Acme",
	})
	d := document.Draft{Header: &header, Footer: &footer, Body: []document.Block{}}
	for i := 0; i < bodyCount; i++ {
		d.Body = append(d.Body, Block(t, fmt.Sprintf("b%d", i), document.TypeText, map[string]any{
			"text":  fmt.Sprintf("paragraph %d", i),
			"align": "left",
		}))
	}
	return d
}

// LoadDraft reads a serialised draft fixture through document.Decode.
func LoadDraft(t testing.TB, path string) document.Draft {
	t.Helper()

	d, err := LoadDraftFromPath(path)
	if err != nil {
		t.Fatalf("load draft: %v", err)
	}
	return d
}

// LoadDraftFromPath returns a Draft without requiring testing.T.
func LoadDraftFromPath(path string) (document.Draft, error) {
	if path == "" {
		return document.Draft{}, errors.New("testsupport: draft path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Draft{}, fmt.Errorf("testsupport: read draft: %w", err)
	}
	d, err := document.Decode(data)
	if err != nil {
		return document.Draft{}, fmt.Errorf("testsupport: decode draft: %w", err)
	}
	return d, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// CaptureOutput runs render against a buffer and returns both the returned
// string and what was written, so callers can assert they agree.
func CaptureOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	return out, buf.String()
}
