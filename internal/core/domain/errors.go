package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// Typed errors below wrap one of these so callers can match with errors.Is.
var (
	// ErrLookup indicates a document path is missing or does not match the
	// document's shape. Usually a schema/document version mismatch.
	ErrLookup = errors.New("lookup failed")

	// ErrStorage indicates the configuration document could not be read or written.
	ErrStorage = errors.New("storage failure")

	// ErrNetwork indicates release discovery or an artifact fetch failed,
	// including timeouts and non-success HTTP status codes.
	ErrNetwork = errors.New("network failure")

	// ErrAssetNotFound indicates an expected artifact is absent from a release.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrProcess indicates an external command exited non-zero or the
	// container runtime never became reachable.
	ErrProcess = errors.New("process failure")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownField indicates a field key that is not part of the schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrMissingValue indicates a schema field had no value supplied for a full apply.
	ErrMissingValue = errors.New("missing field value")

	// ErrRuleCycle indicates a dependent rule reads the path it writes.
	ErrRuleCycle = errors.New("dependent rule reads its own target")

	// Update session errors.

	// ErrUpdateInProgress indicates an update session is already checking,
	// downloading or swapping.
	ErrUpdateInProgress = errors.New("update in progress")

	// ErrNoUpdateSession indicates an action needs an update session that does not exist.
	ErrNoUpdateSession = errors.New("no update session")

	// ErrInvalidTransition indicates an update state change the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid update state transition")

	// ErrOperationInProgress indicates a deployment start or stop is already running.
	ErrOperationInProgress = errors.New("deployment operation in progress")
)

// LookupError reports a path that could not be resolved inside a document.
type LookupError struct {
	Path   FieldPath
	Reason string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %s", e.Path, e.Reason)
}

// Is matches ErrLookup.
func (e *LookupError) Is(target error) bool { return target == ErrLookup }

// StorageError reports a failure to load or save the configuration document.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: storage failure", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NetworkError reports a failed release or download request.
// StatusCode is zero when no HTTP response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// AssetNotFoundError reports a release that lacks a required artifact.
type AssetNotFoundError struct {
	Tag    string
	Kind   AssetKind
	Assets []string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("release %s has no %s asset (assets: %s)",
		e.Tag, e.Kind, strings.Join(e.Assets, ", "))
}

// Is matches ErrAssetNotFound.
func (e *AssetNotFoundError) Is(target error) bool { return target == ErrAssetNotFound }

// ProcessError reports a failed external command.
// ExitCode is -1 when the command never produced an exit status.
type ProcessError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *ProcessError) Error() string {
	switch {
	case e.Err != nil && e.ExitCode > 0:
		return fmt.Sprintf("%s: exit status %d: %v", e.Command, e.ExitCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	default:
		return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	}
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Is matches ErrProcess.
func (e *ProcessError) Is(target error) bool { return target == ErrProcess }
