package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bootman/internal/adapters/driven/document/yamldoc"
	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driving"
	"github.com/custodia-labs/bootman/internal/core/services"
)

const testCompose = `services:
  web:
    ports:
      - "3000:3000"
  db:
    environment:
      MYSQL_ROOT_PASSWORD: rootpassword
      MYSQL_PASSWORD: systempassword
  api:
    environment:
      FRONTEND_URL: http://localhost:3000
      DATABASE_URL: mysql://system:systempassword@db:3306/core
      FIRST_CONTROLLER_USERNAME: admin
      FIRST_CONTROLLER_PASSWORD: admin
      FIRST_CONTROLLER_FIRSTNAME: Admin
      FIRST_CONTROLLER_LASTNAME: Admin
  prisma:
    environment:
      DATABASE_URL: mysql://root:rootpassword@db:3306/core
`

// newTestConfiguration writes the compose fixture to a temp file and returns
// a configuration service over it.
func newTestConfiguration(t *testing.T) *services.ConfigurationService {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker-compose-v1.0.10.yml")
	require.NoError(t, os.WriteFile(path, []byte(testCompose), 0o600))

	svc, err := services.NewConfigurationService(yamldoc.NewStore(path), domain.DefaultSchema())
	require.NoError(t, err)
	return svc
}

// mockDeploymentService is a mock implementation of driving.DeploymentService.
type mockDeploymentService struct {
	status  domain.DeploymentStatus
	running bool
	lines   []string
	err     error
	starts  int
	stops   int
}

func (m *mockDeploymentService) Start(_ context.Context, sink domain.OutputSink) error {
	m.starts++
	for _, l := range m.lines {
		sink(domain.OutputLine{Stream: domain.StreamStdout, Text: l})
	}
	if m.err != nil {
		return m.err
	}
	m.status = domain.DeploymentRunning
	return nil
}

func (m *mockDeploymentService) Stop(_ context.Context, sink domain.OutputSink) error {
	m.stops++
	for _, l := range m.lines {
		sink(domain.OutputLine{Stream: domain.StreamStdout, Text: l})
	}
	if m.err != nil {
		return m.err
	}
	m.status = domain.DeploymentStopped
	return nil
}

func (m *mockDeploymentService) IsRunning(_ context.Context) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.running {
		m.status = domain.DeploymentRunning
	} else {
		m.status = domain.DeploymentStopped
	}
	return m.running, nil
}

func (m *mockDeploymentService) Status() domain.DeploymentStatus { return m.status }

func (m *mockDeploymentService) Busy() bool { return false }

// mockUpdateService is a mock implementation of driving.UpdateService.
type mockUpdateService struct {
	session domain.UpdateSession
	err     error
}

func (m *mockUpdateService) CurrentVersion() string { return "v1.0.10" }

func (m *mockUpdateService) Check(_ context.Context) (domain.UpdateSession, error) {
	return m.session, m.err
}

func (m *mockUpdateService) Offer() (domain.UpdateSession, error) { return m.session, nil }

func (m *mockUpdateService) Decline() error { return nil }

func (m *mockUpdateService) Install(_ context.Context) (domain.UpdateSession, error) {
	return m.session, m.err
}

func (m *mockUpdateService) Session() (domain.UpdateSession, bool) { return m.session, true }

func (m *mockUpdateService) Subscribe(_ driving.UpdateObserver) func() { return func() {} }
