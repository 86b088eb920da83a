// Package mcp provides an MCP (Model Context Protocol) server adapter for bootman.
// It lets AI assistants read and edit the deployment configuration and drive
// the deployment lifecycle.
package mcp

import "errors"

var (
	// ErrMissingConfigurationService is returned when the configuration service is not provided.
	ErrMissingConfigurationService = errors.New("mcp: configuration service is required")

	// ErrDeploymentUnavailable is returned by deployment tools when no supervisor is wired.
	ErrDeploymentUnavailable = errors.New("mcp: deployment service not configured")

	// ErrUpdateUnavailable is returned by check_update when no update service is wired.
	ErrUpdateUnavailable = errors.New("mcp: update service not configured")
)
