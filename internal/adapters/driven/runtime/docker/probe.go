// Package docker probes the Docker daemon the deployment runs on.
package docker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure Probe implements the interface.
var _ driven.RuntimeProbe = (*Probe)(nil)

// LabelComposeProject is the label compose puts on every project container.
const LabelComposeProject = "com.docker.compose.project"

// ErrNoLauncher indicates no command is configured to start the runtime.
var ErrNoLauncher = errors.New("docker: no runtime start command configured")

// dockerAPI is the subset of the Docker client the probe uses.
type dockerAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	Close() error
}

// Probe checks daemon reachability and project containers.
type Probe struct {
	api          dockerAPI
	startCommand []string
	start        func(name string, args []string) error
}

// NewProbe creates a probe using the environment's Docker settings
// (DOCKER_HOST and friends). startCommand launches the runtime when it is down.
func NewProbe(startCommand []string) (*Probe, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Probe{api: cli, startCommand: startCommand, start: startDetached}, nil
}

// Ping returns nil when the daemon answers.
func (p *Probe) Ping(ctx context.Context) error {
	if _, err := p.api.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon not accessible: %w", err)
	}
	return nil
}

// StartRuntime runs the configured start command without waiting for it.
func (p *Probe) StartRuntime(_ context.Context) error {
	if len(p.startCommand) == 0 || p.startCommand[0] == "" {
		return ErrNoLauncher
	}
	logger.Info("starting container runtime: %v", p.startCommand)
	if err := p.start(p.startCommand[0], p.startCommand[1:]); err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}
	return nil
}

// ProjectRunning reports whether any container labelled with project is running.
func (p *Probe) ProjectRunning(ctx context.Context, project string) (bool, error) {
	containers, err := p.api.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(
			filters.Arg("label", fmt.Sprintf("%s=%s", LabelComposeProject, project)),
			filters.Arg("status", "running"),
		),
	})
	if err != nil {
		return false, fmt.Errorf("list containers: %w", err)
	}
	return len(containers) > 0, nil
}

// Close releases the Docker client.
func (p *Probe) Close() error {
	return p.api.Close()
}

func startDetached(name string, args []string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
