package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driving"
)

var (
	_ driving.ConfigurationService = (*mockConfiguration)(nil)
	_ driving.DeploymentService    = (*mockDeployment)(nil)
	_ driving.UpdateService        = (*mockUpdate)(nil)
)

type mockConfiguration struct {
	mu       sync.Mutex
	values   map[string]string
	applied  []map[string]string
	resets   int
	applyErr error
	readErr  error

	// urlReads counts FrontendURL calls.
	urlReads int
}

func newMockConfiguration() *mockConfiguration {
	values := make(map[string]string)
	for _, f := range domain.DefaultSchema().Fields {
		values[f.Key] = f.Default
	}
	return &mockConfiguration{values: values}
}

func (m *mockConfiguration) Schema() domain.Schema { return domain.DefaultSchema() }

func (m *mockConfiguration) Read() ([]domain.FieldValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []domain.FieldValue
	for _, f := range domain.DefaultSchema().Fields {
		out = append(out, domain.FieldValue{Field: f, Value: m.values[f.Key]})
	}
	return out, nil
}

func (m *mockConfiguration) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *mockConfiguration) Apply(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applied = append(m.applied, values)
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *mockConfiguration) Set(values map[string]string) error {
	return m.Apply(values)
}

func (m *mockConfiguration) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	for _, f := range domain.DefaultSchema().Fields {
		m.values[f.Key] = f.Default
	}
	return nil
}

func (m *mockConfiguration) Resolve() error { return nil }

func (m *mockConfiguration) FrontendURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urlReads++
	return "http://localhost:" + m.values[domain.FieldWebPort]
}

func (m *mockConfiguration) DocumentPath() string { return "/tmp/docker-compose-v1.0.0.yml" }

type mockDeployment struct {
	mu       sync.Mutex
	status   domain.DeploymentStatus
	running  bool
	starts   int
	stops    int
	startErr error
	busy     bool
}

func (m *mockDeployment) Start(_ context.Context, sink domain.OutputSink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	if sink != nil {
		sink(domain.OutputLine{Stream: domain.StreamStdout, Text: "Creating dpt_web_1 ... done"})
	}
	if m.startErr != nil {
		m.status = domain.DeploymentStopped
		return m.startErr
	}
	m.status = domain.DeploymentRunning
	m.running = true
	return nil
}

func (m *mockDeployment) Stop(_ context.Context, _ domain.OutputSink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.status = domain.DeploymentStopped
	m.running = false
	return nil
}

func (m *mockDeployment) IsRunning(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running, nil
}

func (m *mockDeployment) Status() domain.DeploymentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *mockDeployment) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

type mockUpdate struct {
	mu         sync.Mutex
	check      domain.UpdateSession
	checkErr   error
	offers     int
	declines   int
	installs   int
	installErr error
	observers  []driving.UpdateObserver
}

func (m *mockUpdate) CurrentVersion() string { return "v1.0.0" }

func (m *mockUpdate) Check(_ context.Context) (domain.UpdateSession, error) {
	return m.check, m.checkErr
}

func (m *mockUpdate) Offer() (domain.UpdateSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers++
	s := m.check
	s.State = domain.UpdateAwaitingConfirmation
	return s, nil
}

func (m *mockUpdate) Decline() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declines++
	return nil
}

func (m *mockUpdate) Install(_ context.Context) (domain.UpdateSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installs++
	s := m.check
	s.State = domain.UpdateFailed
	s.Err = m.installErr
	return s, m.installErr
}

func (m *mockUpdate) Session() (domain.UpdateSession, bool) { return m.check, true }

func (m *mockUpdate) Subscribe(observer driving.UpdateObserver) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, observer)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.observers = nil
	}
}

type mockOpener struct {
	urls []string
	err  error
}

func (m *mockOpener) Open(url string) error {
	m.urls = append(m.urls, url)
	return m.err
}

type mockWatcher struct {
	events chan struct{}
	errors chan error
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{events: make(chan struct{}, 1), errors: make(chan error, 1)}
}

func (m *mockWatcher) Events() <-chan struct{} { return m.events }
func (m *mockWatcher) Errors() <-chan error     { return m.errors }
