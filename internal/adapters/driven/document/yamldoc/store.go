package yamldoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

const defaultFileMode os.FileMode = 0644

// Store reads and writes a YAML document file.
type Store struct {
	path string
}

// NewStore creates a store for the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the document file.
func (s *Store) Load() (driven.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Path: s.path, Err: err}
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, &domain.StorageError{Op: "parse", Path: s.path, Err: err}
	}
	return doc, nil
}

// Save writes the document through a temporary file in the same directory,
// so a failed write never truncates the existing file.
func (s *Store) Save(doc driven.Document) error {
	d, ok := doc.(*Document)
	if !ok {
		return &domain.StorageError{Op: "save", Path: s.path, Err: fmt.Errorf("unsupported document type %T", doc)}
	}
	data, err := d.Bytes()
	if err != nil {
		return &domain.StorageError{Op: "encode", Path: s.path, Err: err}
	}

	mode := defaultFileMode
	if info, statErr := os.Stat(s.path); statErr == nil {
		mode = info.Mode().Perm()
	}

	if err := writeFileAtomic(s.path, data, mode); err != nil {
		return &domain.StorageError{Op: "save", Path: s.path, Err: err}
	}
	logger.Debug("saved document %s (%d bytes)", s.path, len(data))
	return nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Exists reports whether the document file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return !errors.Is(err, os.ErrNotExist)
}
