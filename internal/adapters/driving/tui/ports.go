// Package tui provides the interactive dashboard for bootman.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/bootman/internal/core/ports/driving"
)

// DocumentWatcher reports changes made to the deployment document on disk.
type DocumentWatcher interface {
	Events() <-chan struct{}
	Errors() <-chan error
}

// URLOpener opens the frontend in the user's browser.
type URLOpener interface {
	Open(url string) error
}

// Handoff lets the dashboard give the terminal back before the update
// replacement binary starts.
type Handoff interface {
	SetBeforeLaunch(fn func() (restore func()))
}

// Ports aggregates everything the dashboard drives.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Configuration edits the deployment document.
	Configuration driving.ConfigurationService

	// Deployment starts and stops the containers.
	Deployment driving.DeploymentService

	// Update checks for and installs new releases. Optional.
	Update driving.UpdateService

	// Opener opens the frontend URL. Optional.
	Opener URLOpener

	// Watcher reloads the form on external edits. Optional.
	Watcher DocumentWatcher

	// Handoff releases the terminal before an update relaunch. Optional.
	Handoff Handoff

	// CheckOnStartup runs an update check when the dashboard opens.
	CheckOnStartup bool

	// StopOnExit stops a running deployment when the dashboard quits.
	StopOnExit bool
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Configuration == nil {
		return ErrMissingConfigurationService
	}
	if p.Deployment == nil {
		return ErrMissingDeploymentService
	}
	return nil
}
