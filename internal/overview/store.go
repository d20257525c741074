// Package overview persists the financial overview document: a single JSON
// object on disk mapping section names (e.g. "account_balances",
// "monthly_overview", "goals", "action_items") to arbitrary structured
// payloads, plus a "last_updated" timestamp stamped on every write.
//
// The document is owned entirely by this process. Section payloads are
// opaque; the store enforces no schema and no cross-section consistency.
// [FileStore] serialises all read-modify-write cycles through an internal
// mutex, so two concurrent [FileStore.UpdateSection] calls cannot lose each
// other's sections.
package overview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MrWong99/ynab-mcp/internal/observe"
)

// lastUpdatedKey is the reserved top-level key holding the write timestamp.
const lastUpdatedKey = "last_updated"

// Document is the overview document: section name → structured payload.
// The last_updated entry, when present, is an RFC 3339 string.
type Document map[string]any

// LastUpdated returns the document's last_updated stamp, or "" when the
// document has never been written.
func (d Document) LastUpdated() string {
	s, _ := d[lastUpdatedKey].(string)
	return s
}

// StoreError is a failed read or write of the persisted document, e.g.
// malformed JSON on disk or a filesystem failure.
type StoreError struct {
	// Op is the failing operation: "load" or "save".
	Op string

	// Path is the document's location on disk.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("overview: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store reads and writes the overview document.
//
// Implementations must be safe for concurrent use, and UpdateSection must be
// atomic with respect to other Store calls: no interleaving write may drop an
// unrelated section.
type Store interface {
	// Load returns the current document. A missing file is not an error: it
	// loads as an empty document with no last_updated stamp.
	Load() (Document, error)

	// Save writes the whole document, stamping last_updated.
	Save(doc Document) error

	// UpdateSection replaces (or inserts) the named top-level section with
	// data, leaving all other sections untouched, and persists the result.
	UpdateSection(section string, data any) error
}

// FileStore is the production [Store]: one JSON file at a fixed path.
// Safe for concurrent use; create instances with [NewFileStore].
type FileStore struct {
	mu      sync.Mutex
	path    string
	metrics *observe.Metrics

	// now is swappable for deterministic timestamps in tests.
	now func() time.Time
}

// Compile-time check: FileStore must implement Store.
var _ Store = (*FileStore)(nil)

// StoreOption is a functional option for configuring a [FileStore].
type StoreOption func(*FileStore)

// WithMetrics replaces the [observe.Metrics] instance used to count persisted
// documents. Mainly for tests.
func WithMetrics(m *observe.Metrics) StoreOption {
	return func(s *FileStore) {
		s.metrics = m
	}
}

// NewFileStore creates a FileStore persisting to path. The file and its
// parent directory are created on first save.
func NewFileStore(path string, opts ...StoreOption) *FileStore {
	s := &FileStore{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Load returns the current document, or an empty one when the file does not
// exist yet.
func (s *FileStore) Load() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load reads and decodes the file. Callers must hold s.mu.
func (s *FileStore) load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}

	doc := Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}
	return doc, nil
}

// Save writes the whole document and stamps last_updated.
func (s *FileStore) Save(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(doc); err != nil {
		return err
	}
	s.metrics.RecordOverviewWrite(context.Background(), "save")
	return nil
}

// save stamps and writes doc. Callers must hold s.mu.
func (s *FileStore) save(doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	doc[lastUpdatedKey] = s.now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &StoreError{Op: "save", Path: s.path, Err: err}
		}
	}

	// Write to a temp file in the same directory and rename it over the
	// document, so a crash mid-write cannot leave a torn file behind.
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &StoreError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// UpdateSection replaces the named section and persists, holding the mutex
// across the whole load-modify-save cycle so concurrent writers cannot drop
// each other's sections.
func (s *FileStore) UpdateSection(section string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[section] = data
	if err := s.save(doc); err != nil {
		return err
	}
	s.metrics.RecordOverviewWrite(context.Background(), "update_section")
	return nil
}
