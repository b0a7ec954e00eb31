package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pagebuilder "github.com/goliatone/go-pagebuilder"
	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/render"
	jsonrenderer "github.com/goliatone/go-pagebuilder/pkg/renderers/json"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

type fixture struct {
	store  *persist.MemoryStore
	mirror *persist.MemoryMirror
	server *httptest.Server
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	registry, err := pagebuilder.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store := persist.NewMemoryStore()
	mirror := persist.NewMemoryMirror()
	srv, err := New(persist.NewService(store),
		WithRegistry(registry),
		WithMirror(mirror),
		WithIDGenerator(testsupport.SequentialIDs()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return fixture{store: store, mirror: mirror, server: ts}
}

func (f fixture) seed(t *testing.T, slug string, d document.Draft) {
	t.Helper()
	if err := f.store.Save(context.Background(), persist.PageKey{Owner: "tok", Slug: slug}, d); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (f fixture) do(t *testing.T, method, path string, body []byte, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, raw
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "home", testsupport.SampleDraft(t, 2))

	resp, body := f.do(t, http.MethodGet, "/p/home", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	html := string(body)
	if !strings.Contains(html, "paragraph 1") {
		t.Errorf("preview missing body text")
	}
	if strings.Contains(html, render.ChromeAttr) {
		t.Errorf("preview carries edit chrome")
	}

	resp, _ = f.do(t, http.MethodGet, "/p/missing", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing page status = %d", resp.StatusCode)
	}
}

func TestPreview_FromMirror(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodGet, "/p/home?source=mirror", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("empty mirror status = %d", resp.StatusCode)
	}

	d := testsupport.SampleDraft(t, 1)
	d.Body[0].Props["text"] = "local only"
	if err := f.mirror.Write(d); err != nil {
		t.Fatal(err)
	}
	resp, body := f.do(t, http.MethodGet, "/p/home?source=mirror", nil, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "local only") {
		t.Fatalf("mirror preview status=%d body=%s", resp.StatusCode, body)
	}
}

func TestEdit_CarriesChrome(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "home", testsupport.SampleDraft(t, 1))

	resp, body := f.do(t, http.MethodGet, "/edit/home?selected=b0", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{render.ChromeAttr, `aria-selected="true"`, `data-block-id="b0"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("edit page missing %q", want)
		}
	}
}

func TestPages_PutThenGet(t *testing.T) {
	f := newFixture(t)
	d := testsupport.SampleDraft(t, 2)
	raw, err := document.Encode(d)
	if err != nil {
		t.Fatal(err)
	}

	resp, body := f.do(t, http.MethodPut, "/api/pages/home", raw, map[string]string{OwnerHeader: "tok", SeqHeader: "5"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d body %s", resp.StatusCode, body)
	}
	var saved saveResponse
	if err := json.Unmarshal(body, &saved); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(saveResponse{Slug: "home", Seq: 5, Status: persist.StatusSaved}, saved); diff != "" {
		t.Fatalf("save response mismatch (-want +got):\n%s", diff)
	}

	resp, body = f.do(t, http.MethodGet, "/api/pages/home", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	got, err := document.Decode(body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(document.Migrate(d), got); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
	if _, ok, _ := f.mirror.Read(); !ok {
		t.Errorf("mirror not written on save")
	}
}

func TestPages_PutErrors(t *testing.T) {
	f := newFixture(t)
	raw, _ := document.Encode(testsupport.SampleDraft(t, 1))
	owner := map[string]string{OwnerHeader: "tok", SeqHeader: "3"}

	if resp, _ := f.do(t, http.MethodPut, "/api/pages/home", raw, owner); resp.StatusCode != http.StatusOK {
		t.Fatalf("first put status = %d", resp.StatusCode)
	}

	tests := []struct {
		name    string
		body    []byte
		headers map[string]string
		want    int
	}{
		{"stale seq", raw, owner, http.StatusConflict},
		{"other owner", raw, map[string]string{OwnerHeader: "intruder", SeqHeader: "9"}, http.StatusForbidden},
		{"malformed draft", []byte(`{"body":[{"id":"x","type":"rocket","zone":"body"}]}`), owner, http.StatusBadRequest},
		{"bad seq", raw, map[string]string{OwnerHeader: "tok", SeqHeader: "soon"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPut, "/api/pages/home", tt.body, tt.headers)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.want, body)
			}
			var payload errorBody
			if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
				t.Fatalf("expected error body, got %s", body)
			}
		})
	}
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/templates?category=profile", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var list []templateSummary
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	ids := make([]string, len(list))
	for i, tpl := range list {
		ids[i] = tpl.ID
	}
	if diff := cmp.Diff([]string{"minimal-profile", "personal-brand"}, ids); diff != "" {
		t.Fatalf("template ids mismatch (-want +got):\n%s", diff)
	}

	if resp, _ := f.do(t, http.MethodGet, "/api/templates?category=weather", nil, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown category status = %d", resp.StatusCode)
	}
}

func TestInstantiate(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/templates/personal-brand/instantiate", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body %s", resp.StatusCode, body)
	}
	d, err := document.Decode(body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Header == nil || len(d.Body) == 0 {
		t.Fatalf("instantiated draft is incomplete: %+v", d)
	}

	resp, _ = f.do(t, http.MethodPost, "/api/templates/personal-brand/instantiate?slug=fresh", nil, map[string]string{OwnerHeader: "tok"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status with slug = %d", resp.StatusCode)
	}
	if _, err := f.store.Load(context.Background(), "fresh"); err != nil {
		t.Fatalf("instantiated page not stored: %v", err)
	}

	if resp, _ := f.do(t, http.MethodPost, "/api/templates/nope/instantiate", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown template status = %d", resp.StatusCode)
	}
}

func TestInstantiate_ThenSequencedSave(t *testing.T) {
	f := newFixture(t)
	owner := map[string]string{OwnerHeader: "tok"}

	resp, body := f.do(t, http.MethodPost, "/api/templates/personal-brand/instantiate?slug=home", nil, owner)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("instantiate status = %d body %s", resp.StatusCode, body)
	}

	raw, _ := document.Encode(testsupport.SampleDraft(t, 1))
	seq1 := map[string]string{OwnerHeader: "tok", SeqHeader: "1"}
	if resp, body := f.do(t, http.MethodPut, "/api/pages/home", raw, seq1); resp.StatusCode != http.StatusOK {
		t.Fatalf("first sequenced put status = %d body %s", resp.StatusCode, body)
	}

	if resp, body := f.do(t, http.MethodPut, "/api/pages/home", raw, owner); resp.StatusCode != http.StatusOK {
		t.Fatalf("unsequenced put status = %d body %s", resp.StatusCode, body)
	}
	if resp, body := f.do(t, http.MethodPut, "/api/pages/home", raw, seq1); resp.StatusCode != http.StatusOK {
		t.Fatalf("sequenced put after replace status = %d body %s", resp.StatusCode, body)
	}
	if resp, _ := f.do(t, http.MethodPut, "/api/pages/home", raw, seq1); resp.StatusCode != http.StatusConflict {
		t.Fatalf("repeated seq status = %d, want 409", resp.StatusCode)
	}
}

func TestSchema(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/schema/text", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var schema schemaResponse
	if err := json.Unmarshal(body, &schema); err != nil {
		t.Fatal(err)
	}
	if schema.Zone != document.ZoneBody || len(schema.Groups) == 0 || schema.Defaults["align"] != "left" {
		t.Fatalf("unexpected schema %+v", schema)
	}

	if resp, _ := f.do(t, http.MethodGet, "/api/schema/rocket", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown type status = %d", resp.StatusCode)
	}
}

func TestRender_JSON(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "home", testsupport.SampleDraft(t, 1))

	resp, body := f.do(t, http.MethodGet, "/api/render/home?renderer=json&mode=edit&selected=b0", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body %s", resp.StatusCode, body)
	}
	var payload jsonrenderer.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Mode != render.ModeEdit {
		t.Fatalf("mode = %q", payload.Mode)
	}
	selected := payload.Tree.Find(render.ByAttr("aria-selected", "true"))
	if len(selected) != 1 || selected[0].Attr("data-block-id") != "b0" {
		t.Fatalf("selection chrome not found: %+v", selected)
	}

	if resp, _ := f.do(t, http.MethodGet, "/api/render/home?renderer=pdf", nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown renderer status = %d", resp.StatusCode)
	}
	if resp, _ := f.do(t, http.MethodGet, "/api/render/home?mode=print", nil, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad mode status = %d", resp.StatusCode)
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error without service")
	}
	if _, err := New(persist.NewService(persist.NewMemoryStore())); err == nil {
		t.Fatalf("expected error without registry")
	}
}
