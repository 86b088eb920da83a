package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// maxLineSize bounds a single output line.
const maxLineSize = 1024 * 1024

// Runner executes commands and streams their output line by line.
type Runner struct {
	// Env, when set, replaces the child's environment.
	Env []string
}

// NewRunner creates a command runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run starts name with args and forwards each stdout and stderr line to sink
// as it is read. Sink calls are serialised. A non-zero exit is reported
// through the exit code, not the error.
func (r *Runner) Run(ctx context.Context, name string, args []string, sink domain.OutputSink) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return -1, err
	}
	logger.Debug("started %s (pid %d)", name, cmd.Process.Pid)

	var mu sync.Mutex
	emit := func(line domain.OutputLine) {
		if sink == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		sink(line)
	}

	var g errgroup.Group
	g.Go(func() error { return scanLines(stdout, domain.StreamStdout, emit) })
	g.Go(func() error { return scanLines(stderr, domain.StreamStderr, emit) })
	scanErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	if scanErr != nil {
		return 0, fmt.Errorf("read output: %w", scanErr)
	}
	return 0, nil
}

func scanLines(rd io.Reader, stream domain.OutputStream, emit func(domain.OutputLine)) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		emit(domain.OutputLine{Stream: stream, Text: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		// Drain so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, rd)
		return err
	}
	return nil
}
