package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/core/ports/driving"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure DeploymentSupervisor implements the interface.
var _ driving.DeploymentService = (*DeploymentSupervisor)(nil)

// DeploymentOptions configures a DeploymentSupervisor.
type DeploymentOptions struct {
	// ComposeCommand is the orchestration command and its leading arguments.
	ComposeCommand []string

	// Project is the compose project name.
	Project string

	// DocumentPath is the compose document passed with -f.
	DocumentPath string

	// RetryAttempts is the total number of reachability polls after
	// starting the runtime.
	RetryAttempts int

	// RetryInterval is the wait between polls.
	RetryInterval time.Duration
}

// DeploymentSupervisor starts and stops the compose project.
// Only one start or stop runs at a time.
type DeploymentSupervisor struct {
	probe  driven.RuntimeProbe
	runner driven.CommandRunner
	opts   DeploymentOptions

	mu     sync.Mutex
	busy   bool
	status domain.DeploymentStatus
}

// NewDeploymentSupervisor creates a deployment supervisor.
func NewDeploymentSupervisor(
	probe driven.RuntimeProbe,
	runner driven.CommandRunner,
	opts DeploymentOptions,
) *DeploymentSupervisor {
	defaults := domain.DefaultAppSettings().Runtime
	if len(opts.ComposeCommand) == 0 {
		opts.ComposeCommand = defaults.ComposeCommand
	}
	if opts.Project == "" {
		opts.Project = defaults.Project
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = defaults.RetryAttempts
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaults.RetryInterval
	}
	return &DeploymentSupervisor{
		probe:  probe,
		runner: runner,
		opts:   opts,
	}
}

// Start ensures the runtime is reachable, then brings the project up,
// pulling images first.
func (d *DeploymentSupervisor) Start(ctx context.Context, sink domain.OutputSink) error {
	if err := d.claim(); err != nil {
		return err
	}
	defer d.release()
	sink = orDiscard(sink)

	if err := d.ensureRuntime(ctx, sink); err != nil {
		logger.Error("start deployment: %v", err)
		return err
	}

	if err := d.compose(ctx, sink, "up", "-d", "--pull", "always"); err != nil {
		logger.Error("start deployment: %v", err)
		return err
	}

	d.setStatus(domain.DeploymentRunning)
	sink(systemLine("Deployment %s started", d.opts.Project))
	return nil
}

// Stop stops the project's containers without removing them.
func (d *DeploymentSupervisor) Stop(ctx context.Context, sink domain.OutputSink) error {
	if err := d.claim(); err != nil {
		return err
	}
	defer d.release()
	sink = orDiscard(sink)

	if err := d.compose(ctx, sink, "stop"); err != nil {
		logger.Error("stop deployment: %v", err)
		return err
	}

	d.setStatus(domain.DeploymentStopped)
	sink(systemLine("Deployment %s stopped", d.opts.Project))
	return nil
}

// IsRunning probes the runtime and records the result as the last known status.
func (d *DeploymentSupervisor) IsRunning(ctx context.Context) (bool, error) {
	running, err := d.probe.ProjectRunning(ctx, d.opts.Project)
	if err != nil {
		return false, fmt.Errorf("probe project %s: %w", d.opts.Project, err)
	}
	if running {
		d.setStatus(domain.DeploymentRunning)
	} else {
		d.setStatus(domain.DeploymentStopped)
	}
	return running, nil
}

// Status returns the last known status.
func (d *DeploymentSupervisor) Status() domain.DeploymentStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Busy reports whether a start or stop is in flight.
func (d *DeploymentSupervisor) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// ensureRuntime starts the container runtime when it does not answer and
// polls until it does, at most RetryAttempts times.
func (d *DeploymentSupervisor) ensureRuntime(ctx context.Context, sink domain.OutputSink) error {
	pingErr := d.probe.Ping(ctx)
	if pingErr == nil {
		return nil
	}
	logger.Debug("runtime ping: %v", pingErr)

	sink(systemLine("Container runtime is not running, starting it..."))
	if err := d.probe.StartRuntime(ctx); err != nil {
		sink(systemLine("Could not start the container runtime. Start it manually and try again."))
		return &domain.ProcessError{Command: "start runtime", ExitCode: -1, Err: err}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(d.opts.RetryInterval), uint64(d.opts.RetryAttempts-1)),
		ctx,
	)
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := d.probe.Ping(ctx)
		if err != nil {
			logger.Debug("runtime not reachable yet (attempt %d): %v", attempt, err)
		}
		return err
	}, policy)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &domain.ProcessError{
			Command:  "wait for runtime",
			ExitCode: -1,
			Err:      fmt.Errorf("not reachable after %d attempts: %w", attempt, err),
		}
	}

	sink(systemLine("Container runtime is running"))
	return nil
}

func (d *DeploymentSupervisor) compose(ctx context.Context, sink domain.OutputSink, action ...string) error {
	name := d.opts.ComposeCommand[0]
	args := make([]string, 0, len(d.opts.ComposeCommand)+4+len(action))
	args = append(args, d.opts.ComposeCommand[1:]...)
	args = append(args, "-f", d.opts.DocumentPath, "-p", d.opts.Project)
	args = append(args, action...)

	command := strings.Join(append([]string{name}, args...), " ")
	logger.Info("running %s", command)

	code, err := d.runner.Run(ctx, name, args, sink)
	if err != nil {
		return &domain.ProcessError{Command: command, ExitCode: -1, Err: err}
	}
	if code != 0 {
		return &domain.ProcessError{Command: command, ExitCode: code}
	}
	return nil
}

func (d *DeploymentSupervisor) claim() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return domain.ErrOperationInProgress
	}
	d.busy = true
	return nil
}

func (d *DeploymentSupervisor) release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy = false
}

func (d *DeploymentSupervisor) setStatus(s domain.DeploymentStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = s
}

func systemLine(format string, args ...any) domain.OutputLine {
	return domain.OutputLine{Stream: domain.StreamSystem, Text: fmt.Sprintf(format, args...)}
}

func orDiscard(sink domain.OutputSink) domain.OutputSink {
	if sink == nil {
		return func(domain.OutputLine) {}
	}
	return sink
}

