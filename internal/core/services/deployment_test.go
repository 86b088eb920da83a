package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

// mockProbe implements driven.RuntimeProbe for testing.
type mockProbe struct {
	mu          sync.Mutex
	pings       int
	upAfter     int // first successful ping; 0 means always up, -1 never
	startErr    error
	started     bool
	running     bool
	runningErr  error
	lastProject string
}

func (m *mockProbe) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pings++
	if m.upAfter == 0 || (m.upAfter > 0 && m.pings >= m.upAfter) {
		return nil
	}
	return errors.New("cannot connect to the docker daemon")
}

func (m *mockProbe) StartRuntime(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return m.startErr
}

func (m *mockProbe) ProjectRunning(_ context.Context, project string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastProject = project
	return m.running, m.runningErr
}

type runCall struct {
	name string
	args []string
}

// mockRunner implements driven.CommandRunner for testing.
type mockRunner struct {
	mu      sync.Mutex
	calls   []runCall
	output  []domain.OutputLine
	code    int
	err     error
	release chan struct{}
	entered chan struct{}
}

func (m *mockRunner) Run(_ context.Context, name string, args []string, sink domain.OutputSink) (int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, runCall{name: name, args: args})
	m.mu.Unlock()

	if m.entered != nil {
		close(m.entered)
	}
	if m.release != nil {
		<-m.release
	}
	for _, line := range m.output {
		sink(line)
	}
	return m.code, m.err
}

type lineCollector struct {
	mu    sync.Mutex
	lines []domain.OutputLine
}

func (c *lineCollector) sink(line domain.OutputLine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *lineCollector) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.Text
	}
	return out
}

func newSupervisor(probe *mockProbe, runner *mockRunner) *DeploymentSupervisor {
	return NewDeploymentSupervisor(probe, runner, DeploymentOptions{
		ComposeCommand: []string{"docker", "compose"},
		Project:        "dpt",
		DocumentPath:   "/opt/dpt/docker-compose-v1.0.10.yml",
		RetryAttempts:  3,
		RetryInterval:  time.Millisecond,
	})
}

func TestNewDeploymentSupervisor_Defaults(t *testing.T) {
	d := NewDeploymentSupervisor(&mockProbe{}, &mockRunner{}, DeploymentOptions{})

	assert.Equal(t, []string{"docker-compose"}, d.opts.ComposeCommand)
	assert.Equal(t, "dpt", d.opts.Project)
	assert.Equal(t, 36, d.opts.RetryAttempts)
	assert.Equal(t, 5*time.Second, d.opts.RetryInterval)
	assert.Equal(t, domain.DeploymentUnknown, d.Status())
}

func TestDeploymentSupervisor_Start(t *testing.T) {
	probe := &mockProbe{}
	runner := &mockRunner{output: []domain.OutputLine{
		{Stream: domain.StreamStderr, Text: "Container dpt-db-1  Started"},
		{Stream: domain.StreamStdout, Text: "done"},
	}}
	d := newSupervisor(probe, runner)
	out := &lineCollector{}

	require.NoError(t, d.Start(context.Background(), out.sink))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "docker", runner.calls[0].name)
	assert.Equal(t, []string{
		"compose", "-f", "/opt/dpt/docker-compose-v1.0.10.yml", "-p", "dpt", "up", "-d", "--pull", "always",
	}, runner.calls[0].args)
	assert.False(t, probe.started)
	assert.Equal(t, domain.DeploymentRunning, d.Status())
	assert.Equal(t, []string{"Container dpt-db-1  Started", "done", "Deployment dpt started"}, out.texts())
	assert.False(t, d.Busy())
}

func TestDeploymentSupervisor_Start_StartsRuntime(t *testing.T) {
	probe := &mockProbe{upAfter: 3}
	runner := &mockRunner{}
	d := newSupervisor(probe, runner)
	out := &lineCollector{}

	require.NoError(t, d.Start(context.Background(), out.sink))

	assert.True(t, probe.started)
	assert.Equal(t, 3, probe.pings)
	assert.Contains(t, out.texts(), "Container runtime is running")
	assert.Len(t, runner.calls, 1)
}

func TestDeploymentSupervisor_Start_RuntimeNeverReachable(t *testing.T) {
	probe := &mockProbe{upAfter: -1}
	runner := &mockRunner{}
	d := newSupervisor(probe, runner)

	err := d.Start(context.Background(), nil)

	var pe *domain.ProcessError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "wait for runtime", pe.Command)
	assert.Contains(t, pe.Error(), "not reachable after 3 attempts")
	// One initial ping, then the three configured polls.
	assert.Equal(t, 4, probe.pings)
	assert.Empty(t, runner.calls)
	assert.Equal(t, domain.DeploymentUnknown, d.Status())
}

func TestDeploymentSupervisor_Start_PollCap(t *testing.T) {
	tests := []struct {
		name    string
		upAfter int
		wantErr bool
	}{
		{"reachable on last poll", 4, false},
		{"reachable one poll too late", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &mockProbe{upAfter: tt.upAfter}
			d := newSupervisor(probe, &mockRunner{})

			err := d.Start(context.Background(), nil)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrProcess)
				assert.Equal(t, 4, probe.pings)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.upAfter, probe.pings)
			}
		})
	}
}

func TestDeploymentSupervisor_Start_NoLauncher(t *testing.T) {
	probe := &mockProbe{upAfter: -1, startErr: errors.New("executable file not found")}
	d := newSupervisor(probe, &mockRunner{})
	out := &lineCollector{}

	err := d.Start(context.Background(), out.sink)

	assert.ErrorIs(t, err, domain.ErrProcess)
	assert.Contains(t, out.texts(), "Could not start the container runtime. Start it manually and try again.")
}

func TestDeploymentSupervisor_Start_CancelledWhileWaiting(t *testing.T) {
	probe := &mockProbe{upAfter: -1}
	d := NewDeploymentSupervisor(probe, &mockRunner{}, DeploymentOptions{
		RetryAttempts: 36,
		RetryInterval: time.Hour,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Start(ctx, nil)

	assert.ErrorIs(t, err, domain.ErrProcess)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDeploymentSupervisor_ProcessErrorKeepsStatus(t *testing.T) {
	tests := []struct {
		name     string
		runner   *mockRunner
		wantCode int
	}{
		{"non-zero exit", &mockRunner{code: 1}, 1},
		{"not runnable", &mockRunner{err: errors.New("exec: not found")}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &mockProbe{running: true}
			d := newSupervisor(probe, tt.runner)
			_, err := d.IsRunning(context.Background())
			require.NoError(t, err)

			err = d.Stop(context.Background(), nil)

			var pe *domain.ProcessError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantCode, pe.ExitCode)
			assert.Contains(t, pe.Command, "docker compose -f")
			assert.Equal(t, domain.DeploymentRunning, d.Status())
		})
	}
}

func TestDeploymentSupervisor_Stop(t *testing.T) {
	runner := &mockRunner{}
	d := newSupervisor(&mockProbe{}, runner)

	require.NoError(t, d.Stop(context.Background(), nil))

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"compose", "-f", "/opt/dpt/docker-compose-v1.0.10.yml", "-p", "dpt", "stop",
	}, runner.calls[0].args)
	assert.Equal(t, domain.DeploymentStopped, d.Status())
}

func TestDeploymentSupervisor_OneOperationAtATime(t *testing.T) {
	runner := &mockRunner{release: make(chan struct{}), entered: make(chan struct{})}
	d := newSupervisor(&mockProbe{}, runner)

	done := make(chan error, 1)
	go func() { done <- d.Start(context.Background(), nil) }()
	<-runner.entered

	assert.True(t, d.Busy())
	assert.ErrorIs(t, d.Stop(context.Background(), nil), domain.ErrOperationInProgress)
	assert.ErrorIs(t, d.Start(context.Background(), nil), domain.ErrOperationInProgress)

	close(runner.release)
	require.NoError(t, <-done)
	assert.False(t, d.Busy())
}

func TestDeploymentSupervisor_IsRunning(t *testing.T) {
	probe := &mockProbe{running: false}
	d := newSupervisor(probe, &mockRunner{})

	running, err := d.IsRunning(context.Background())
	require.NoError(t, err)
	assert.False(t, running)
	assert.Equal(t, "dpt", probe.lastProject)
	assert.Equal(t, domain.DeploymentStopped, d.Status())

	probe.running = true
	running, err = d.IsRunning(context.Background())
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, domain.DeploymentRunning, d.Status())

	probe.runningErr = errors.New("daemon gone")
	_, err = d.IsRunning(context.Background())
	assert.Error(t, err)
	assert.Equal(t, domain.DeploymentRunning, d.Status())
}
