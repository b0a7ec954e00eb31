package persist

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// Page is a stored draft with its bookkeeping.
type Page struct {
	ID        string         `json:"id"`
	Owner     string         `json:"owner,omitempty"`
	Slug      string         `json:"slug"`
	Draft     document.Draft `json:"draft"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// MemoryStore keeps pages in process. It backs tests and the default server.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]Page
	ids   map[string]string
	now   func() time.Time
	fail  func(op string) error
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFailures injects errors: fail is called with "save" or "load" before
// each operation and a non-nil result is returned as is.
func WithFailures(fail func(op string) error) MemoryOption {
	return func(s *MemoryStore) {
		s.fail = fail
	}
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(options ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		pages: make(map[string]Page),
		ids:   make(map[string]string),
		now:   time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) Save(ctx context.Context, key PageKey, d document.Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return err
	}
	if s.fail != nil {
		if err := s.fail("save"); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page, exists := s.pages[key.Slug]
	if exists && page.Owner != "" && page.Owner != key.Owner {
		return ErrOwnerMismatch
	}
	if !exists {
		page = Page{ID: uuid.NewString(), Slug: key.Slug, Owner: key.Owner}
		s.ids[page.ID] = key.Slug
	}
	if page.Owner == "" {
		page.Owner = key.Owner
	}
	page.Draft = d.Clone()
	page.UpdatedAt = s.now()
	s.pages[key.Slug] = page
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, slugOrID string) (document.Draft, error) {
	page, err := s.Page(ctx, slugOrID)
	if err != nil {
		return document.Draft{}, err
	}
	return page.Draft, nil
}

// Page returns the stored page with its metadata.
func (s *MemoryStore) Page(ctx context.Context, slugOrID string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if s.fail != nil {
		if err := s.fail("load"); err != nil {
			return Page{}, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.pages[slugOrID]
	if !ok {
		if slug, byID := s.ids[slugOrID]; byID {
			page, ok = s.pages[slug]
		}
	}
	if !ok {
		return Page{}, &document.NotFoundError{Kind: "page", ID: slugOrID}
	}
	page.Draft = page.Draft.Clone()
	return page, nil
}

// Slugs lists the stored slugs in sorted order.
func (s *MemoryStore) Slugs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.pages))
	for slug := range s.pages {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}
