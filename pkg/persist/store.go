// Package persist is the boundary between the editor and page storage. A
// Store reads and writes whole drafts, a Service sequences saves so the last
// edit wins, and a Mirror keeps a local copy of the working draft for the
// preview surface.
package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

var (
	// ErrPersistence matches every *PersistenceError via errors.Is.
	ErrPersistence = errors.New("persist: storage failure")
	// ErrStaleSave marks a save whose sequence number is older than one
	// already applied. The caller drops it.
	ErrStaleSave = errors.New("persist: stale save")
	// ErrOwnerMismatch is returned when a slug is already held by another
	// owner token.
	ErrOwnerMismatch = errors.New("persist: page owned by another token")
)

// PageKey addresses a stored page. Owner is an opaque token handed over by
// the identity layer.
type PageKey struct {
	Owner string `json:"owner,omitempty"`
	Slug  string `json:"slug"`
}

// Validate requires a slug.
func (k PageKey) Validate() error {
	if strings.TrimSpace(k.Slug) == "" {
		return &document.ValidationError{Op: "page key", Reason: "slug is required"}
	}
	return nil
}

func (k PageKey) String() string {
	if k.Owner == "" {
		return k.Slug
	}
	return k.Owner + "/" + k.Slug
}

// Store persists drafts. Load accepts either the page slug or the id the
// store assigned on first save and returns *document.NotFoundError when
// neither matches.
type Store interface {
	Save(ctx context.Context, key PageKey, d document.Draft) error
	Load(ctx context.Context, slugOrID string) (document.Draft, error)
}

// PersistenceError wraps a failed store call.
type PersistenceError struct {
	Op  string
	Key PageKey
	Err error
}

func (e *PersistenceError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Key.Slug == "" {
		return fmt.Sprintf("persist: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persist: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrPersistence) match.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// Status is the save state shown next to the editor.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)
