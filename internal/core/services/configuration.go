package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/core/ports/driving"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure ConfigurationService implements the interface.
var _ driving.ConfigurationService = (*ConfigurationService)(nil)

// ConfigurationService is the single writer of the deployment document.
// Every mutation is one load, mutate, resolve, save cycle under mu; a
// failure anywhere before the save leaves the stored document untouched.
type ConfigurationService struct {
	mu     sync.Mutex
	store  driven.DocumentStore
	schema domain.Schema
}

// NewConfigurationService creates a configuration service for schema.
func NewConfigurationService(store driven.DocumentStore, schema domain.Schema) (*ConfigurationService, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &ConfigurationService{store: store, schema: schema}, nil
}

// Schema returns the active field schema.
func (s *ConfigurationService) Schema() domain.Schema {
	return s.schema
}

// DocumentPath returns the deployment document location.
func (s *ConfigurationService) DocumentPath() string {
	return s.store.Path()
}

// Read returns every field's display value in schema order.
func (s *ConfigurationService) Read() ([]domain.FieldValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	values := make([]domain.FieldValue, 0, len(s.schema.Fields))
	for _, f := range s.schema.Fields {
		v, err := ReadDisplayValue(doc, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Key, err)
		}
		values = append(values, domain.FieldValue{Field: f, Value: v})
	}
	return values, nil
}

// Get returns one field's display value.
func (s *ConfigurationService) Get(key string) (string, error) {
	field, ok := s.schema.Field(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownField, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return "", err
	}
	return ReadDisplayValue(doc, field)
}

// Apply writes a value for every schema field, then resolves and saves.
func (s *ConfigurationService) Apply(values map[string]string) error {
	if err := s.checkKeys(values); err != nil {
		return err
	}
	return s.mutate("apply", func(doc driven.Document) error {
		return ApplyAll(doc, s.schema.Fields, values)
	})
}

// Set writes only the supplied fields, in schema order, then resolves and saves.
func (s *ConfigurationService) Set(values map[string]string) error {
	if err := s.checkKeys(values); err != nil {
		return err
	}
	return s.mutate("set", func(doc driven.Document) error {
		for _, f := range s.schema.Fields {
			v, ok := values[f.Key]
			if !ok {
				continue
			}
			if err := WriteStoredValue(doc, f, v); err != nil {
				return fmt.Errorf("write %s: %w", f.Key, err)
			}
		}
		return nil
	})
}

// Reset writes every field's default, then resolves and saves.
func (s *ConfigurationService) Reset() error {
	return s.mutate("reset", func(doc driven.Document) error {
		// Rules run once in mutate.
		return ResetToDefaults(doc, s.schema.Fields, nil)
	})
}

// Resolve re-derives dependent values and saves.
func (s *ConfigurationService) Resolve() error {
	return s.mutate("resolve", func(driven.Document) error { return nil })
}

// FrontendURL returns the document's FRONTEND_URL, or the default URL when
// the document cannot be read or has none.
func (s *ConfigurationService) FrontendURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		logger.Debug("frontend url: %v", err)
		return domain.DefaultFrontendURL
	}
	url, err := doc.Get(domain.FrontendURLPath)
	if err != nil || url == "" {
		return domain.DefaultFrontendURL
	}
	return url
}

func (s *ConfigurationService) mutate(op string, fn func(driven.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := fn(doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := ResolveDependents(doc, s.schema.Rules); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Save(doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("configuration %s saved to %s", op, s.store.Path())
	return nil
}

func (s *ConfigurationService) checkKeys(values map[string]string) error {
	for key := range values {
		if _, ok := s.schema.Field(key); !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownField, key)
		}
	}
	return nil
}
