package domain

import "fmt"

// FieldDescriptor describes one user-editable field of the deployment document.
type FieldDescriptor struct {
	// Key is the stable identifier used by the CLI and MCP tools (e.g. "web.port").
	Key string

	// Label is the human-readable name shown in forms.
	Label string

	// Group is the form section the field belongs to.
	Group string

	// Path locates the stored value inside the document.
	Path FieldPath

	// Default is the display value written by a reset.
	Default string

	// Secret marks values that should be masked when displayed.
	Secret bool

	// Extract converts a stored value into its display form.
	// Nil means stored and display values are identical.
	Extract func(stored string) string

	// Inject converts a display value into a stored value, given the
	// previously stored value. Nil means the display value is stored as-is.
	Inject func(oldStored, display string) string
}

// Display converts a stored value into the display form.
func (f FieldDescriptor) Display(stored string) string {
	if f.Extract == nil {
		return stored
	}
	return f.Extract(stored)
}

// Store converts a display value into the stored form.
func (f FieldDescriptor) Store(oldStored, display string) string {
	if f.Inject == nil {
		return display
	}
	return f.Inject(oldStored, display)
}

// DependentRule derives one document value from other document values.
type DependentRule struct {
	// Name identifies the rule in logs.
	Name string

	// Sources are the paths the rule reads, in the order Derive receives them.
	Sources []FieldPath

	// Target is the path the rule writes.
	Target FieldPath

	// Derive computes the target value from the source values.
	Derive func(sources []string) string
}

// Schema is the ordered set of fields and dependent rules for one document layout.
type Schema struct {
	Fields []FieldDescriptor
	Rules  []DependentRule
}

// Field returns the descriptor with the given key.
func (s Schema) Field(key string) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Groups returns the field groups in declaration order.
func (s Schema) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, f := range s.Fields {
		if !seen[f.Group] {
			seen[f.Group] = true
			groups = append(groups, f.Group)
		}
	}
	return groups
}

// Validate checks field keys are unique and rules do not read their own target.
func (s Schema) Validate() error {
	keys := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Key == "" || len(f.Path) == 0 {
			return fmt.Errorf("%w: field %q needs a key and a path", ErrInvalidInput, f.Label)
		}
		if keys[f.Key] {
			return fmt.Errorf("%w: duplicate field key %q", ErrInvalidInput, f.Key)
		}
		keys[f.Key] = true
	}
	return ValidateRules(s.Rules)
}

// ValidateRules rejects rules that read the value they write.
func ValidateRules(rules []DependentRule) error {
	for _, r := range rules {
		if r.Derive == nil {
			return fmt.Errorf("%w: rule %q has no derive function", ErrInvalidInput, r.Name)
		}
		for _, src := range r.Sources {
			if src.Equal(r.Target) {
				return fmt.Errorf("%w: %s (%s)", ErrRuleCycle, r.Name, r.Target)
			}
		}
	}
	return nil
}

// FieldValue is a field paired with its current display value.
type FieldValue struct {
	Field FieldDescriptor
	Value string
}

// Masked returns the display value with secrets hidden.
func (v FieldValue) Masked() string {
	if !v.Field.Secret || v.Value == "" {
		return v.Value
	}
	return "********"
}
