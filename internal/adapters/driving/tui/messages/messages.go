// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/bootman/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewDashboard is the field form with the console pane.
	ViewDashboard ViewType = iota
	// ViewUpdate is the update modal.
	ViewUpdate
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewUpdate:
		return "update"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// FieldsLoaded carries the document's field values and the frontend URL
// derived from them.
type FieldsLoaded struct {
	Values      []domain.FieldValue
	FrontendURL string
	Err         error
}

// FieldsSaved is sent after the form was written to the document.
type FieldsSaved struct {
	Err error
}

// FieldsReset is sent after every field was reset to its default.
type FieldsReset struct {
	Err error
}

// DocumentChanged is sent when the document was modified outside the dashboard.
type DocumentChanged struct{}

// DeploymentChecked carries the result of probing the runtime.
type DeploymentChecked struct {
	Running bool
	Err     error
}

// DeploymentAction names a start or stop request.
type DeploymentAction string

// Deployment actions.
const (
	ActionStart DeploymentAction = "start"
	ActionStop  DeploymentAction = "stop"
)

// DeploymentFinished is sent when a start or stop returns.
type DeploymentFinished struct {
	Action DeploymentAction
	// FrontendURL is set after a successful start.
	FrontendURL string
	Err         error
}

// OutputReceived carries one line for the console pane.
type OutputReceived struct {
	Line domain.OutputLine
}

// UpdateChecked carries the outcome of a release check.
// Manual is set when the user asked for the check.
type UpdateChecked struct {
	Session domain.UpdateSession
	Manual  bool
	Err     error
}

// UpdateProgressed carries a session snapshot published by the orchestrator.
type UpdateProgressed struct {
	Session domain.UpdateSession
}

// UpdateFinished is sent when Install returns. On success the process has
// already exited, so this only arrives on failure.
type UpdateFinished struct {
	Session domain.UpdateSession
	Err     error
}

// BrowserOpened is sent after trying to open the frontend.
type BrowserOpened struct {
	URL string
	Err error
}

// ErrorOccurred carries a failure to show in the status bar.
type ErrorOccurred struct {
	Err error
}

// Quit requests application exit.
type Quit struct{}
