// Package yamldoc implements the deployment document ports on top of the
// yaml.v3 node tree, so comments, key order and unknown content survive a
// load-save cycle.
package yamldoc

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
)

// Ensure Document implements the interface.
var _ driven.Document = (*Document)(nil)

// Document is a parsed YAML document.
type Document struct {
	root *yaml.Node
}

// Parse parses YAML bytes. The top-level node must be a mapping.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	if root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level node is not a mapping")
	}
	return &Document{root: &root}, nil
}

// Bytes serialises the document with two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Get returns the scalar at path.
func (d *Document) Get(path domain.FieldPath) (string, error) {
	if len(path) == 0 {
		return "", &domain.LookupError{Path: path, Reason: "empty path"}
	}
	node, err := d.walk(path)
	if err != nil {
		return "", err
	}
	if node.Kind != yaml.ScalarNode {
		return "", &domain.LookupError{Path: path, Reason: "value is not a scalar"}
	}
	return node.Value, nil
}

// Set replaces the existing scalar at path. It fails with a LookupError
// wherever Get would; keys and containers are never created.
func (d *Document) Set(path domain.FieldPath, value string) error {
	if len(path) == 0 {
		return &domain.LookupError{Path: path, Reason: "empty path"}
	}
	parent, err := d.walk(path[:len(path)-1])
	if err != nil {
		return err
	}
	last := path[len(path)-1]

	switch parent.Kind {
	case yaml.MappingNode:
		if last.IsIndex {
			return &domain.LookupError{Path: path, Reason: fmt.Sprintf("index %d into a mapping", last.Index)}
		}
		for i := 0; i+1 < len(parent.Content); i += 2 {
			if parent.Content[i].Value == last.Key {
				return replaceScalar(parent, i+1, path, value)
			}
		}
		return &domain.LookupError{Path: path, Reason: "key not found"}

	case yaml.SequenceNode:
		if !last.IsIndex {
			return &domain.LookupError{Path: path, Reason: fmt.Sprintf("key %q into a sequence", last.Key)}
		}
		if last.Index >= len(parent.Content) {
			return &domain.LookupError{Path: path, Reason: fmt.Sprintf("index %d out of range", last.Index)}
		}
		return replaceScalar(parent, last.Index, path, value)

	default:
		return &domain.LookupError{Path: path, Reason: "parent is not a container"}
	}
}

func replaceScalar(parent *yaml.Node, i int, path domain.FieldPath, value string) error {
	existing := resolveAlias(parent.Content[i])
	if existing.Kind != yaml.ScalarNode {
		return &domain.LookupError{Path: path, Reason: "value is not a scalar"}
	}
	if parent.Content[i].Kind == yaml.AliasNode {
		parent.Content[i] = newScalar(value)
		return nil
	}
	existing.Value = value
	existing.Tag = "!!str"
	return nil
}

func newScalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// walk resolves every element of path, following aliases.
func (d *Document) walk(path domain.FieldPath) (*yaml.Node, error) {
	node := d.root.Content[0]
	for i, elem := range path {
		node = resolveAlias(node)
		prefix := path[:i+1]
		switch node.Kind {
		case yaml.MappingNode:
			if elem.IsIndex {
				return nil, &domain.LookupError{Path: prefix, Reason: fmt.Sprintf("index %d into a mapping", elem.Index)}
			}
			next := mappingValue(node, elem.Key)
			if next == nil {
				return nil, &domain.LookupError{Path: prefix, Reason: "key not found"}
			}
			node = next
		case yaml.SequenceNode:
			if !elem.IsIndex {
				return nil, &domain.LookupError{Path: prefix, Reason: fmt.Sprintf("key %q into a sequence", elem.Key)}
			}
			if elem.Index >= len(node.Content) {
				return nil, &domain.LookupError{Path: prefix, Reason: fmt.Sprintf("index %d out of range", elem.Index)}
			}
			node = node.Content[elem.Index]
		default:
			return nil, &domain.LookupError{Path: prefix, Reason: "cannot descend into a scalar"}
		}
	}
	return resolveAlias(node), nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
