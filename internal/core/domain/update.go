package domain

import "time"

// UpdateState is a state of the self-update state machine.
type UpdateState int

// Update states.
const (
	UpdateIdle UpdateState = iota
	UpdateChecking
	UpdateNone
	UpdateAvailable
	UpdateAwaitingConfirmation
	UpdateDownloading
	UpdateSwapping
	UpdateRestarted
	UpdateFailed
)

// String returns the state name.
func (s UpdateState) String() string {
	switch s {
	case UpdateIdle:
		return "idle"
	case UpdateChecking:
		return "checking"
	case UpdateNone:
		return "no update"
	case UpdateAvailable:
		return "update available"
	case UpdateAwaitingConfirmation:
		return "awaiting confirmation"
	case UpdateDownloading:
		return "downloading"
	case UpdateSwapping:
		return "swapping"
	case UpdateRestarted:
		return "restarted"
	case UpdateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var updateTransitions = map[UpdateState][]UpdateState{
	UpdateIdle:                 {UpdateChecking},
	UpdateChecking:             {UpdateNone, UpdateAvailable},
	UpdateAvailable:            {UpdateAwaitingConfirmation, UpdateIdle},
	UpdateAwaitingConfirmation: {UpdateDownloading, UpdateIdle, UpdateFailed},
	UpdateDownloading:          {UpdateSwapping, UpdateFailed},
	UpdateSwapping:             {UpdateRestarted, UpdateFailed},
}

// CanTransition reports whether the state machine allows moving from s to next.
func (s UpdateState) CanTransition(next UpdateState) bool {
	for _, allowed := range updateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the session ends in this state.
func (s UpdateState) Terminal() bool {
	switch s {
	case UpdateIdle, UpdateNone, UpdateRestarted, UpdateFailed:
		return true
	default:
		return false
	}
}

// Busy reports whether work is in flight in this state.
// A busy session cannot be replaced by a new check.
func (s UpdateState) Busy() bool {
	return s == UpdateChecking || s == UpdateDownloading || s == UpdateSwapping
}

// UpdatePlan holds the local paths an update writes to.
type UpdatePlan struct {
	// ExecutablePath is where the new binary is saved. Never the running binary's path.
	ExecutablePath string

	// ConfigTemplatePath is the version-qualified document template path.
	ConfigTemplatePath string
}

// UpdateProgress reports download progress for one asset.
// Total is -1 when the server did not announce a size.
type UpdateProgress struct {
	Asset string
	Done  int64
	Total int64
}

// Fraction returns progress in [0,1], or -1 when the total is unknown.
func (p UpdateProgress) Fraction() float64 {
	if p.Total <= 0 {
		return -1
	}
	f := float64(p.Done) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// UpdateSession is one pass through the update state machine.
// Observers receive copies; the orchestrator owns the live value.
type UpdateSession struct {
	// ID identifies the session in logs.
	ID string

	// State is the current state.
	State UpdateState

	// CurrentVersion is the version tag of the running helper.
	CurrentVersion string

	// Release is the latest release, once discovered.
	Release *Release

	// Assets are the artifacts selected for installation.
	Assets UpdateAssets

	// Plan holds the destination paths, set when downloading starts.
	Plan UpdatePlan

	// Progress is the most recent download progress.
	Progress UpdateProgress

	// Err is the failure that ended the session, or the folded check failure
	// of a NoUpdate session.
	Err error

	// StartedAt is when the check began.
	StartedAt time.Time
}

// CheckFailed reports whether a NoUpdate outcome came from a failed check
// rather than a matching version.
func (s UpdateSession) CheckFailed() bool {
	return s.State == UpdateNone && s.Err != nil
}

// LatestTag returns the discovered release tag, or "".
func (s UpdateSession) LatestTag() string {
	if s.Release == nil {
		return ""
	}
	return s.Release.Tag
}
