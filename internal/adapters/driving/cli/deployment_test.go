package cli

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

func TestUp_StreamsOutput(t *testing.T) {
	ts, cleanupServices := setupTestServices()
	defer cleanupServices()
	ts.deployment.lines = []domain.OutputLine{
		{Stream: domain.StreamSystem, Text: "docker-compose up -d"},
		{Stream: domain.StreamStderr, Text: "Creating dpt_db_1 ... done"},
	}

	out, err := execute(t, "up")
	require.NoError(t, err)

	assert.True(t, ts.deployment.running)
	assert.Contains(t, out, "→ docker-compose up -d")
	assert.Contains(t, out, "Creating dpt_db_1 ... done")
	assert.Contains(t, out, "✓ Deployment running at http://localhost:3000")
	assert.Empty(t, ts.opener.opened)
}

func TestUp_OpenFlag(t *testing.T) {
	ts, cleanupServices := setupTestServices()
	defer cleanupServices()
	defer func() { _ = upCmd.Flags().Set("open", "false") }()

	out, err := execute(t, "up", "--open")
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:3000"}, ts.opener.opened)
	assert.Contains(t, out, "Opened http://localhost:3000")
}

func TestUp_Failure(t *testing.T) {
	ts, cleanupServices := setupTestServices()
	defer cleanupServices()
	ts.deployment.startErr = &domain.ProcessError{Command: "docker-compose up -d", ExitCode: 1}

	out, err := execute(t, "up")
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrProcess)
	assert.Contains(t, err.Error(), "starting deployment")
	assert.NotContains(t, out, "Deployment running")
}

func TestDown(t *testing.T) {
	ts, cleanupServices := setupTestServices()
	defer cleanupServices()
	ts.deployment.running = true

	out, err := execute(t, "down")
	require.NoError(t, err)

	assert.False(t, ts.deployment.running)
	assert.Contains(t, out, "✓ Deployment stopped")
}

func TestDown_Failure(t *testing.T) {
	ts, cleanupServices := setupTestServices()
	defer cleanupServices()
	ts.deployment.stopErr = errors.New("daemon not reachable")

	_, err := execute(t, "down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopping deployment: daemon not reachable")
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		running  bool
		probeErr error
		want     string
	}{
		{name: "running", running: true, want: "Deployment: running"},
		{name: "stopped", want: "Deployment: stopped"},
		{name: "probe fails", probeErr: errors.New("no daemon"), want: "Deployment: unknown (no daemon)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanupServices := setupTestServices()
			defer cleanupServices()
			ts.deployment.running = tt.running
			ts.deployment.probeErr = tt.probeErr

			out, err := execute(t, "status")
			require.NoError(t, err)

			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "Frontend:   http://localhost:3000")
			assert.Contains(t, out, "Document:   /opt/dpt/docker-compose-v1.0.0.yml")
			assert.Contains(t, out, "Version:    "+version)
		})
	}
}

func TestOpen(t *testing.T) {
	ts, cleanupServices := setupTestServices()
	defer cleanupServices()

	_, err := execute(t, "open")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000"}, ts.opener.opened)
}

func TestOpen_Errors(t *testing.T) {
	t.Run("opener fails", func(t *testing.T) {
		ts, cleanupServices := setupTestServices()
		defer cleanupServices()
		ts.opener.err = errors.New("no browser")

		_, err := execute(t, "open")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening http://localhost:3000: no browser")
	})

	t.Run("no opener", func(t *testing.T) {
		ts, cleanupServices := setupTestServices()
		defer cleanupServices()
		SetServices(&Services{Configuration: ts.config})

		_, err := execute(t, "open")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser opener not configured")
	})
}

func TestDeploymentCommands_WithoutService(t *testing.T) {
	_, cleanupServices := setupTestServices()
	cleanupServices()

	for _, args := range [][]string{{"up"}, {"down"}, {"status"}} {
		_, err := execute(t, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "deployment service not configured")
	}
}

func TestOutputSink_Concurrent(t *testing.T) {
	buf := new(bytes.Buffer)
	sink := outputSink(buf, newPrinter(buf))

	var wg sync.WaitGroup
	for _, stream := range []domain.OutputStream{domain.StreamStdout, domain.StreamStderr} {
		wg.Add(1)
		go func(s domain.OutputStream) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sink(domain.OutputLine{Stream: s, Text: "line"})
			}
		}(stream)
	}
	wg.Wait()

	assert.Equal(t, 100, bytes.Count(buf.Bytes(), []byte("line\n")))
}
