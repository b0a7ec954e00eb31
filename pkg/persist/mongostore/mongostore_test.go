package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

func TestLookupFilter(t *testing.T) {
	want := bson.M{"$or": bson.A{bson.M{"slug": "home"}, bson.M{"_id": "home"}}}
	if diff := cmp.Diff(want, lookupFilter("home")); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestToPage(t *testing.T) {
	d := testsupport.SampleDraft(t, 1)
	data, err := document.Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	page, err := toPage(record{ID: "id-1", Slug: "home", Owner: "tok", Draft: string(data), UpdatedAt: ts})
	if err != nil {
		t.Fatalf("toPage: %v", err)
	}
	want := persist.Page{ID: "id-1", Slug: "home", Owner: "tok", Draft: d, UpdatedAt: ts}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Fatalf("page mismatch (-want +got):\n%s", diff)
	}

	if _, err := toPage(record{Slug: "bad", Draft: "{"}); !document.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConnectRequiresDatabase(t *testing.T) {
	if _, err := Connect(context.Background(), "mongodb://localhost:27017", "", ""); err == nil {
		t.Fatalf("expected error for empty database")
	}
}

// TestStore_Live runs against a real server when PAGEBUILDER_TEST_MONGO_URI
// is set.
func TestStore_Live(t *testing.T) {
	uri := os.Getenv("PAGEBUILDER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PAGEBUILDER_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Connect(ctx, uri, "pagebuilder_test", "pages_"+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		store.coll.Drop(context.Background())
		store.Close(context.Background())
	})

	d := testsupport.SampleDraft(t, 2)
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
	if _, err := store.Load(ctx, "missing"); !document.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
