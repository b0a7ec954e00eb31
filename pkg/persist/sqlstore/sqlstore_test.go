package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

func openTestStore(t *testing.T, options ...Option) *Store {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "pages.db"), options...)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	store := openTestStore(t, WithClock(func() time.Time { return fixed }))
	d := testsupport.SampleDraft(t, 3)

	if err := store.Save(ctx, persist.PageKey{Owner: "tok", Slug: "home"}, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}

	page, err := store.Page(ctx, "home")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if page.Owner != "tok" || !page.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected metadata %+v", page)
	}
	byID, err := store.Load(ctx, page.ID)
	if err != nil {
		t.Fatalf("Load by id: %v", err)
	}
	if diff := cmp.Diff(d, byID); diff != "" {
		t.Fatalf("draft by id mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_OverwriteAndOwnership(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := persist.PageKey{Owner: "tok", Slug: "home"}

	if err := store.Save(ctx, key, testsupport.SampleDraft(t, 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	updated := testsupport.SampleDraft(t, 2)
	if err := store.Save(ctx, key, updated); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err := store.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(updated, got); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}

	err = store.Save(ctx, persist.PageKey{Owner: "intruder", Slug: "home"}, document.Draft{})
	if !errors.Is(err, persist.ErrOwnerMismatch) {
		t.Fatalf("expected owner mismatch, got %v", err)
	}

	slugs, err := store.Slugs(ctx)
	if err != nil {
		t.Fatalf("Slugs: %v", err)
	}
	if diff := cmp.Diff([]string{"home"}, slugs); diff != "" {
		t.Fatalf("slugs mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_NotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Load(context.Background(), "missing"); !document.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStore_WithService(t *testing.T) {
	ctx := context.Background()
	svc := persist.NewService(openTestStore(t))
	key := persist.PageKey{Slug: "svc"}

	if err := svc.Save(ctx, key, testsupport.SampleDraft(t, 2), 5); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Save(ctx, key, testsupport.SampleDraft(t, 0), 4); !errors.Is(err, persist.ErrStaleSave) {
		t.Fatalf("expected stale save, got %v", err)
	}
	got, err := svc.Load(ctx, "svc")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Body) != 2 {
		t.Fatalf("body len = %d, want 2", len(got.Body))
	}
}

func TestParseDialectAndDSN(t *testing.T) {
	for name, want := range map[string]Dialect{"sqlite3": DialectSQLite, "PostgreSQL": DialectPostgres, "mariadb": DialectMySQL} {
		got, err := ParseDialect(name)
		if err != nil || got != want {
			t.Fatalf("ParseDialect(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := ParseDialect("oracle"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}

	cfg := ConnConfig{Host: "db", User: "u", Password: "p", Database: "pages"}
	if got, want := cfg.DSN(DialectPostgres), "host=db port=5432 user=u password=p dbname=pages sslmode=disable"; got != want {
		t.Fatalf("postgres DSN = %q", got)
	}
	if got, want := cfg.DSN(DialectMySQL), "u:p@tcp(db:3306)/pages?parseTime=true&charset=utf8mb4"; got != want {
		t.Fatalf("mysql DSN = %q", got)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: DialectPostgres}
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("rebind = %q", got)
	}
	lite := &Store{dialect: DialectSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("rebind = %q", got)
	}
}
