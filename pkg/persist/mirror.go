package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-pagebuilder/pkg/document"
)

// Mirror holds one serialised copy of the working draft. The editor
// overwrites it on every mutation and the preview surface reads it once when
// it loads.
type Mirror interface {
	Write(d document.Draft) error
	// Read reports false when nothing has been written yet.
	Read() (document.Draft, bool, error)
}

// FileMirror stores the draft in a single file, replaced atomically through a
// temp file and rename.
type FileMirror struct {
	path string
	mu   sync.Mutex
}

var _ Mirror = (*FileMirror)(nil)

func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

// Path returns the mirror file location.
func (m *FileMirror) Path() string {
	return m.path
}

func (m *FileMirror) Write(d document.Draft) error {
	data, err := document.Encode(d)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: mirror dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(m.path)+"-*")
	if err != nil {
		return fmt.Errorf("persist: mirror temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("persist: write mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: close mirror: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: replace mirror: %w", err)
	}
	return nil
}

func (m *FileMirror) Read() (document.Draft, bool, error) {
	m.mu.Lock()
	data, err := os.ReadFile(m.path)
	m.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return document.Draft{}, false, nil
	}
	if err != nil {
		return document.Draft{}, false, fmt.Errorf("persist: read mirror: %w", err)
	}
	d, err := document.Decode(data)
	if err != nil {
		return document.Draft{}, false, err
	}
	return d, true, nil
}

// MemoryMirror keeps the encoded draft in memory.
type MemoryMirror struct {
	mu     sync.RWMutex
	data   []byte
	writes int
}

var _ Mirror = (*MemoryMirror)(nil)

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{}
}

func (m *MemoryMirror) Write(d document.Draft) error {
	data, err := document.Encode(d)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.writes++
	m.mu.Unlock()
	return nil
}

func (m *MemoryMirror) Read() (document.Draft, bool, error) {
	m.mu.RLock()
	data := m.data
	m.mu.RUnlock()
	if data == nil {
		return document.Draft{}, false, nil
	}
	d, err := document.Decode(data)
	if err != nil {
		return document.Draft{}, false, err
	}
	return d, true, nil
}

// Writes counts successful writes.
func (m *MemoryMirror) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
