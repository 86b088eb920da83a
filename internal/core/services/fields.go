package services

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/logger"
)

// ReadDisplayValue returns a field's value in display form.
func ReadDisplayValue(doc driven.Document, field domain.FieldDescriptor) (string, error) {
	stored, err := doc.Get(field.Path)
	if err != nil {
		return "", err
	}
	return field.Display(stored), nil
}

// WriteStoredValue converts a display value with the field's inject
// transform and writes it to the document.
func WriteStoredValue(doc driven.Document, field domain.FieldDescriptor, display string) error {
	value := display
	if field.Inject != nil {
		old, err := doc.Get(field.Path)
		if err != nil {
			return err
		}
		value = field.Inject(old, display)
	}
	return doc.Set(field.Path, value)
}

// ApplyAll writes every field in schema order. Each field must have a value.
// Dependent rules are not run; callers follow up with ResolveDependents.
func ApplyAll(doc driven.Document, fields []domain.FieldDescriptor, values map[string]string) error {
	for _, f := range fields {
		v, ok := values[f.Key]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrMissingValue, f.Key)
		}
		if err := WriteStoredValue(doc, f, v); err != nil {
			return fmt.Errorf("write %s: %w", f.Key, err)
		}
	}
	return nil
}

// ResolveDependents runs rules in declaration order, applying each write
// before the next rule reads. A rule touching a path the document lacks is
// skipped.
func ResolveDependents(doc driven.Document, rules []domain.DependentRule) error {
	for _, r := range rules {
		applied, err := applyRule(doc, r)
		if err != nil {
			return fmt.Errorf("rule %s: %w", r.Name, err)
		}
		if !applied {
			logger.Debug("dependent rule %s skipped: path not present", r.Name)
		}
	}
	return nil
}

func applyRule(doc driven.Document, r domain.DependentRule) (bool, error) {
	sources := make([]string, len(r.Sources))
	for i, p := range r.Sources {
		v, err := doc.Get(p)
		if errors.Is(err, domain.ErrLookup) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		sources[i] = v
	}

	err := doc.Set(r.Target, r.Derive(sources))
	if errors.Is(err, domain.ErrLookup) {
		return false, nil
	}
	return err == nil, err
}

// ResetToDefaults writes every field's default, keeping stored formatting
// through the inject transform, then re-derives dependent values.
func ResetToDefaults(doc driven.Document, fields []domain.FieldDescriptor, rules []domain.DependentRule) error {
	for _, f := range fields {
		if err := WriteStoredValue(doc, f, f.Default); err != nil {
			return fmt.Errorf("reset %s: %w", f.Key, err)
		}
	}
	return ResolveDependents(doc, rules)
}
