package driven

import (
	"context"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

// RuntimeProbe inspects the container runtime the deployment runs on.
type RuntimeProbe interface {
	// Ping returns nil when the runtime daemon is reachable.
	Ping(ctx context.Context) error

	// StartRuntime asks the platform to launch the runtime. It does not wait
	// for the runtime to become reachable.
	StartRuntime(ctx context.Context) error

	// ProjectRunning reports whether any container of the compose project is running.
	ProjectRunning(ctx context.Context, project string) (bool, error)
}

// CommandRunner runs external commands and streams their output.
type CommandRunner interface {
	// Run executes name with args, calling sink for every output line as it
	// arrives. It returns the exit code once both streams are drained.
	// A non-nil error means the command could not be run or waited on.
	Run(ctx context.Context, name string, args []string, sink domain.OutputSink) (int, error)
}

// ProcessLauncher hands control to another executable.
type ProcessLauncher interface {
	// Launch starts path as a detached process and returns its pid once spawned.
	Launch(path string, args []string) (int, error)

	// Exit terminates the current process.
	Exit(code int)
}

// URLOpener opens a URL in the user's browser.
type URLOpener interface {
	Open(url string) error
}
