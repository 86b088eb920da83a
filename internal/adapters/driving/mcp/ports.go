package mcp

import (
	"github.com/custodia-labs/bootman/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Configuration reads and edits the deployment document.
	Configuration driving.ConfigurationService

	// Deployment starts and stops the containers. Optional.
	Deployment driving.DeploymentService

	// Update checks for new releases. Optional.
	Update driving.UpdateService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Configuration == nil {
		return ErrMissingConfigurationService
	}
	return nil
}
