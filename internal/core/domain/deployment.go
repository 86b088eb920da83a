package domain

// DeploymentStatus is the last known state of the container deployment.
type DeploymentStatus int

// Deployment states.
const (
	DeploymentUnknown DeploymentStatus = iota
	DeploymentStopped
	DeploymentRunning
)

// String returns the status name.
func (s DeploymentStatus) String() string {
	switch s {
	case DeploymentStopped:
		return "stopped"
	case DeploymentRunning:
		return "running"
	default:
		return "unknown"
	}
}

// OutputStream identifies where a command output line came from.
type OutputStream string

// Output streams.
const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
	StreamSystem OutputStream = "system"
)

// OutputLine is one line of streamed command output or a supervisor notice.
type OutputLine struct {
	Stream OutputStream
	Text   string
}

// OutputSink receives output lines as they arrive. It may be called from
// worker goroutines and must hand lines off without blocking for long.
type OutputSink func(OutputLine)
