// Package domain defines the core business entities for bootman.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FieldPath: A route of keys and indices into the deployment document
//   - FieldDescriptor: A user-editable field with its default and transforms
//   - DependentRule: A derived value computed from other fields
//   - Release: A published version of the helper and its assets
//   - UpdateSession: One pass through the self-update state machine
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
