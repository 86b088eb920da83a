package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings_Valid(t *testing.T) {
	s := DefaultAppSettings()

	assert.NoError(t, s.Validate())
	assert.Equal(t, "custodia-labs/dpt", s.Release.Source())
	assert.Equal(t, 36, s.Runtime.RetryAttempts)
	assert.Equal(t, 5*time.Second, s.Runtime.RetryInterval)
	assert.True(t, s.Update.CheckOnStartup)
}

func TestReleaseSettings_RepositoryIDFallback(t *testing.T) {
	r := ReleaseSettings{RepositoryID: 861008208}

	assert.True(t, r.UsesRepositoryID())
	assert.Equal(t, "repository #861008208", r.Source())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSettings)
	}{
		{"no release source", func(s *AppSettings) { s.Release.Owner = ""; s.Release.RepositoryID = 0 }},
		{"empty suffix", func(s *AppSettings) { s.Release.ExecutableSuffix = " " }},
		{"zero timeout", func(s *AppSettings) { s.Update.DownloadTimeout = 0 }},
		{"no compose command", func(s *AppSettings) { s.Runtime.ComposeCommand = nil }},
		{"no project", func(s *AppSettings) { s.Runtime.Project = "" }},
		{"no retries", func(s *AppSettings) { s.Runtime.RetryAttempts = 0 }},
		{"no interval", func(s *AppSettings) { s.Runtime.RetryInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}
}

func TestDefaultExecutableSuffix(t *testing.T) {
	assert.Equal(t, ".exe", DefaultExecutableSuffix("windows", "amd64"))
	assert.Equal(t, "_linux_arm64", DefaultExecutableSuffix("linux", "arm64"))
}

func TestDefaultRuntimeStartCommand(t *testing.T) {
	assert.Equal(t, []string{`C:\Program Files\Docker\Docker\Docker Desktop.exe`}, DefaultRuntimeStartCommand("windows"))
	assert.Equal(t, []string{"open", "-a", "Docker"}, DefaultRuntimeStartCommand("darwin"))
	assert.NotEmpty(t, DefaultRuntimeStartCommand("linux"))
}
