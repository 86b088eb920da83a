package process

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/custodia-labs/bootman/internal/core/ports/driven"
)

// Ensure Launcher implements the interface.
var _ driven.ProcessLauncher = (*Launcher)(nil)

// Launcher starts a replacement binary and exits the current process.
type Launcher struct {
	goos string
	exit func(int)

	mu           sync.Mutex
	beforeLaunch func() (restore func())
}

// NewLauncher creates a launcher that exits through os.Exit.
func NewLauncher() *Launcher {
	return &Launcher{goos: runtime.GOOS, exit: os.Exit}
}

// SetBeforeLaunch registers fn to run right before the replacement starts,
// e.g. to hand the terminal back from a full-screen UI. The returned restore
// function runs if the replacement cannot be started.
func (l *Launcher) SetBeforeLaunch(fn func() (restore func())) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beforeLaunch = fn
}

// Launch marks path executable on Unix and starts it detached, sharing the
// terminal. The child keeps running after this process exits.
func (l *Launcher) Launch(path string, args []string) (int, error) {
	if l.goos != "windows" {
		if err := os.Chmod(path, 0o755); err != nil {
			return 0, fmt.Errorf("make executable: %w", err)
		}
	}

	cmd := exec.Command(path, args...)
	cmd.Dir = filepath.Dir(path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	l.mu.Lock()
	before := l.beforeLaunch
	l.mu.Unlock()
	restore := func() {}
	if before != nil {
		if r := before(); r != nil {
			restore = r
		}
	}

	if err := cmd.Start(); err != nil {
		restore()
		return 0, err
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("release process: %w", err)
	}
	return pid, nil
}

// Exit terminates the current process.
func (l *Launcher) Exit(code int) {
	l.exit(code)
}
