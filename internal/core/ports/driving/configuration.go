package driving

import "github.com/custodia-labs/bootman/internal/core/domain"

// ConfigurationService edits the deployment document through the field schema.
type ConfigurationService interface {
	// Schema returns the active field schema.
	Schema() domain.Schema

	// Read returns every field's display value in schema order.
	Read() ([]domain.FieldValue, error)

	// Get returns one field's display value.
	Get(key string) (string, error)

	// Apply writes a value for every schema field, re-derives dependent
	// values and saves, as one unit.
	Apply(values map[string]string) error

	// Set changes a subset of fields, keeping the others at their current values.
	Set(values map[string]string) error

	// Reset writes every field's default and saves.
	Reset() error

	// Resolve re-derives dependent values without changing any field.
	Resolve() error

	// FrontendURL returns the URL the web frontend is served on.
	FrontendURL() string

	// DocumentPath returns the deployment document location.
	DocumentPath() string
}
