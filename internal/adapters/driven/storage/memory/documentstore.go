package memory

import (
	"sync"

	"github.com/custodia-labs/bootman/internal/adapters/driven/document/yamldoc"
	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps the deployment document as YAML bytes in memory.
// Every Load parses a fresh copy, like reading the file again.
type DocumentStore struct {
	mu    sync.Mutex
	path  string
	data  []byte
	saves int

	// LoadErr and SaveErr, when non-nil, are returned wrapped in a StorageError.
	LoadErr error
	SaveErr error
}

// NewDocumentStore creates a store holding content.
func NewDocumentStore(path, content string) *DocumentStore {
	return &DocumentStore{path: path, data: []byte(content)}
}

// Load parses the stored bytes.
func (s *DocumentStore) Load() (driven.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, &domain.StorageError{Op: "load", Path: s.path, Err: s.LoadErr}
	}
	doc, err := yamldoc.Parse(s.data)
	if err != nil {
		return nil, &domain.StorageError{Op: "parse", Path: s.path, Err: err}
	}
	return doc, nil
}

// Save serialises doc into the store.
func (s *DocumentStore) Save(doc driven.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return &domain.StorageError{Op: "save", Path: s.path, Err: s.SaveErr}
	}
	d, ok := doc.(*yamldoc.Document)
	if !ok {
		return &domain.StorageError{Op: "save", Path: s.path, Err: domain.ErrInvalidInput}
	}
	data, err := d.Bytes()
	if err != nil {
		return &domain.StorageError{Op: "encode", Path: s.path, Err: err}
	}
	s.data = data
	s.saves++
	return nil
}

// Path returns the nominal document path.
func (s *DocumentStore) Path() string {
	return s.path
}

// Content returns the stored YAML.
func (s *DocumentStore) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data)
}

// Saves returns how many times Save succeeded.
func (s *DocumentStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
