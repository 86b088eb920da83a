package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PathElem is one step of a FieldPath: either a mapping key or a sequence index.
type PathElem struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns a mapping-key path element.
func Key(k string) PathElem { return PathElem{Key: k} }

// Index returns a sequence-index path element.
func Index(i int) PathElem { return PathElem{Index: i, IsIndex: true} }

func (e PathElem) String() string {
	if e.IsIndex {
		return strconv.Itoa(e.Index)
	}
	return e.Key
}

// FieldPath locates one scalar inside a structured document.
type FieldPath []PathElem

// ParseFieldPath parses a dotted path such as "services.web.ports.0".
// Segments made only of digits are sequence indices.
func ParseFieldPath(s string) (FieldPath, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidInput)
	}
	parts := strings.Split(s, ".")
	path := make(FieldPath, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty segment in path %q", ErrInvalidInput, s)
		}
		if i, err := strconv.Atoi(p); err == nil && i >= 0 && isDigits(p) {
			path = append(path, Index(i))
			continue
		}
		path = append(path, Key(p))
	}
	return path, nil
}

// MustParseFieldPath is ParseFieldPath for static schema declarations.
func MustParseFieldPath(s string) FieldPath {
	p, err := ParseFieldPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p FieldPath) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		parts[i] = e.String()
	}
	return strings.Join(parts, ".")
}

// Equal reports whether two paths address the same location.
func (p FieldPath) Equal(other FieldPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
