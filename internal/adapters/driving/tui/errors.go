package tui

import "errors"

// ErrMissingConfigurationService is returned when the configuration service is not provided.
var ErrMissingConfigurationService = errors.New("tui: configuration service is required")

// ErrMissingDeploymentService is returned when the deployment service is not provided.
var ErrMissingDeploymentService = errors.New("tui: deployment service is required")

// ErrUpdatesDisabled is shown when an update check is requested without an update service.
var ErrUpdatesDisabled = errors.New("updates are not configured")

// ErrFrontendUnknown is shown when the document has not been read yet.
var ErrFrontendUnknown = errors.New("frontend URL not known yet")

// ErrBrowserUnavailable is shown when no URL opener is configured.
var ErrBrowserUnavailable = errors.New("no browser opener configured")
