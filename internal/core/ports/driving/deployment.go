package driving

import (
	"context"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

// DeploymentService starts and stops the containerised application.
type DeploymentService interface {
	// Start brings the deployment up, starting the runtime first if needed.
	Start(ctx context.Context, sink domain.OutputSink) error

	// Stop brings the deployment down.
	Stop(ctx context.Context, sink domain.OutputSink) error

	// IsRunning probes the runtime for running project containers.
	IsRunning(ctx context.Context) (bool, error)

	// Status returns the last known status without probing.
	Status() domain.DeploymentStatus

	// Busy reports whether a start or stop is in flight.
	Busy() bool
}
