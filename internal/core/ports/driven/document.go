package driven

import "github.com/custodia-labs/bootman/internal/core/domain"

// Document is a loaded structured document addressed by FieldPath.
// Implementations never create missing containers.
type Document interface {
	// Get returns the scalar at path.
	// Returns a *domain.LookupError if any step is missing or of the wrong kind.
	Get(path domain.FieldPath) (string, error)

	// Set replaces the scalar at path in place. The parent container must exist.
	// Returns a *domain.LookupError under the same conditions as Get.
	Set(path domain.FieldPath, value string) error
}

// DocumentStore loads and saves the deployment document.
// Callers serialise load-mutate-save cycles; the store itself does not lock.
type DocumentStore interface {
	// Load reads and parses the document.
	// Returns a *domain.StorageError if the file is absent, unreadable or not a mapping.
	Load() (Document, error)

	// Save writes the document back, preserving content the schema does not touch.
	Save(doc Document) error

	// Path returns the document location.
	Path() string
}

// DocumentWatcher reports external changes to the deployment document.
type DocumentWatcher interface {
	// Events delivers a value whenever the document changes on disk.
	Events() <-chan struct{}

	// Errors delivers watcher failures.
	Errors() <-chan error

	// Close stops watching.
	Close() error
}
