package persist

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

func TestMemoryStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(func() time.Time { return fixed }))
	d := testsupport.SampleDraft(t, 2)

	if err := store.Save(ctx, PageKey{Owner: "tok", Slug: "home"}, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	page, err := store.Page(ctx, "home")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if page.UpdatedAt != fixed || page.Owner != "tok" || page.ID == "" {
		t.Fatalf("unexpected page metadata %+v", page)
	}

	byID, err := store.Load(ctx, page.ID)
	if err != nil {
		t.Fatalf("Load by id: %v", err)
	}
	if diff := cmp.Diff(d, byID); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}

	byID.Body[0].Props["text"] = "mutated"
	again, _ := store.Load(ctx, "home")
	if again.Body[0].Props["text"] != "paragraph 0" {
		t.Fatalf("store shares state with callers")
	}

	if _, err := store.Load(ctx, "missing"); !document.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Save(ctx, PageKey{Owner: "other", Slug: "home"}, d); !errors.Is(err, ErrOwnerMismatch) {
		t.Fatalf("expected owner mismatch, got %v", err)
	}
	if err := store.Save(ctx, PageKey{Slug: " "}, d); !document.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if diff := cmp.Diff([]string{"home"}, store.Slugs()); diff != "" {
		t.Fatalf("slugs mismatch (-want +got):\n%s", diff)
	}
}

func TestService_DropsStaleSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	key := PageKey{Slug: "home"}

	newer := testsupport.SampleDraft(t, 2)
	older := testsupport.SampleDraft(t, 1)

	if err := svc.Save(ctx, key, newer, 2); err != nil {
		t.Fatalf("Save seq 2: %v", err)
	}
	if err := svc.Save(ctx, key, older, 1); !errors.Is(err, ErrStaleSave) {
		t.Fatalf("expected stale save, got %v", err)
	}
	if err := svc.Save(ctx, key, older, 2); !errors.Is(err, ErrStaleSave) {
		t.Fatalf("expected stale save for repeated seq, got %v", err)
	}

	got, err := svc.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(newer, got); diff != "" {
		t.Fatalf("stored draft mismatch (-want +got):\n%s", diff)
	}
	last, seq, ok := svc.LastApplied(key)
	if !ok || seq != 2 || len(last.Body) != 2 {
		t.Fatalf("LastApplied = %d %v", seq, ok)
	}
}

func TestService_ReplaceRestartsSequence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	key := PageKey{Owner: "tok", Slug: "home"}

	if err := svc.Save(ctx, key, testsupport.SampleDraft(t, 1), 9); err != nil {
		t.Fatalf("Save: %v", err)
	}
	created := testsupport.SampleDraft(t, 3)
	if err := svc.Replace(ctx, key, created); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	last, seq, ok := svc.LastApplied(key)
	if !ok || seq != 0 {
		t.Fatalf("LastApplied after Replace = %d %v, want 0 true", seq, ok)
	}
	if diff := cmp.Diff(created, last); diff != "" {
		t.Fatalf("last applied mismatch (-want +got):\n%s", diff)
	}

	edited := testsupport.SampleDraft(t, 2)
	if err := svc.Save(ctx, key, edited, 1); err != nil {
		t.Fatalf("first sequenced save after Replace: %v", err)
	}
	got, err := store.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(edited, got); diff != "" {
		t.Fatalf("stored draft mismatch (-want +got):\n%s", diff)
	}

	if err := svc.Replace(ctx, PageKey{}, created); !document.IsValidation(err) {
		t.Fatalf("Replace with empty key = %v, want validation error", err)
	}
}

func TestService_ConcurrentSavesKeepNewest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store)
	key := PageKey{Slug: "race"}

	var wg sync.WaitGroup
	for seq := 1; seq <= 20; seq++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			d := testsupport.SampleDraft(t, seq)
			if err := svc.Save(ctx, key, d, uint64(seq)); err != nil && !errors.Is(err, ErrStaleSave) {
				t.Errorf("Save %d: %v", seq, err)
			}
		}(seq)
	}
	wg.Wait()

	got, err := store.Load(ctx, "race")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, seq, _ := svc.LastApplied(key)
	if len(got.Body) != int(seq) {
		t.Fatalf("store holds %d blocks but last applied seq is %d", len(got.Body), seq)
	}
}

func TestService_RetriesOnceThenFails(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	boom := errors.New("connection reset")
	store := NewMemoryStore(WithFailures(func(op string) error {
		if op == "save" {
			calls.Add(1)
			return boom
		}
		return nil
	}))
	svc := NewService(store, WithRetryDelay(0))

	err := svc.Save(ctx, PageKey{Slug: "home"}, testsupport.SampleDraft(t, 1), 1)
	var perr *PersistenceError
	if !errors.As(err, &perr) || !errors.Is(err, boom) || !IsPersistence(err) {
		t.Fatalf("expected wrapped persistence error, got %v", err)
	}
	if perr.Op != "save" || perr.Key.Slug != "home" {
		t.Fatalf("unexpected error fields %+v", perr)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("store called %d times, want 2", got)
	}
	if _, _, ok := svc.LastApplied(PageKey{Slug: "home"}); ok {
		t.Fatalf("failed save recorded as applied")
	}
}

func TestService_RetrySucceeds(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	store := NewMemoryStore(WithFailures(func(op string) error {
		if op == "save" && calls.Add(1) == 1 {
			return errors.New("timeout")
		}
		return nil
	}))
	svc := NewService(store, WithRetryDelay(0))

	if err := svc.Save(ctx, PageKey{Slug: "home"}, testsupport.SampleDraft(t, 1), 1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("store called %d times, want 2", got)
	}
}

func TestService_NoRetryForPermanentErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(store, WithRetryDelay(0))
	if err := svc.Save(ctx, PageKey{Owner: "a", Slug: "home"}, document.Draft{}, 1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	err := svc.Save(ctx, PageKey{Owner: "b", Slug: "home"}, document.Draft{}, 1)
	if !errors.Is(err, ErrOwnerMismatch) {
		t.Fatalf("expected owner mismatch, got %v", err)
	}

	if _, err := svc.Load(ctx, "nope"); !document.IsNotFound(err) || IsPersistence(err) {
		t.Fatalf("expected bare not found, got %v", err)
	}
}

func TestService_TimeoutBoundsCalls(t *testing.T) {
	svc := NewService(blockingStore{}, WithTimeout(10*time.Millisecond), WithRetries(0))
	start := time.Now()
	err := svc.Save(context.Background(), PageKey{Slug: "slow"}, document.Draft{}, 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not applied")
	}
}

type blockingStore struct{}

func (blockingStore) Save(ctx context.Context, _ PageKey, _ document.Draft) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingStore) Load(ctx context.Context, _ string) (document.Draft, error) {
	<-ctx.Done()
	return document.Draft{}, ctx.Err()
}

func TestMirrors(t *testing.T) {
	mirrors := map[string]Mirror{
		"file":   NewFileMirror(filepath.Join(t.TempDir(), "nested", "draft.json")),
		"memory": NewMemoryMirror(),
	}
	for name, mirror := range mirrors {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := mirror.Read(); err != nil || ok {
				t.Fatalf("empty mirror Read = %v %v", ok, err)
			}
			first := testsupport.SampleDraft(t, 1)
			second := testsupport.SampleDraft(t, 3)
			for _, d := range []document.Draft{first, second} {
				if err := mirror.Write(d); err != nil {
					t.Fatalf("Write: %v", err)
				}
			}
			got, ok, err := mirror.Read()
			if err != nil || !ok {
				t.Fatalf("Read = %v %v", ok, err)
			}
			if diff := cmp.Diff(second, got); diff != "" {
				t.Fatalf("mirror mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
