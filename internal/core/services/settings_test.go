package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bootman/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/bootman/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("document.path", "/srv/dpt/docker-compose.yml")
	_ = store.Set("release.owner", "acme")
	_ = store.Set("release.repo", "tools")
	_ = store.Set("release.token", "ghp_x")
	_ = store.Set("update.check_on_startup", false)
	_ = store.Set("update.download_timeout", "2m0s")
	_ = store.Set("runtime.compose_command", []any{"docker", "compose"})
	_ = store.Set("runtime.retry_attempts", int64(3))
	_ = store.Set("runtime.stop_on_exit", false)

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "/srv/dpt/docker-compose.yml", settings.Document.Path)
	assert.Equal(t, "acme/tools", settings.Release.Source())
	assert.Equal(t, "ghp_x", settings.Release.Token)
	assert.False(t, settings.Update.CheckOnStartup)
	assert.Equal(t, 2*time.Minute, settings.Update.DownloadTimeout)
	assert.Equal(t, []string{"docker", "compose"}, settings.Runtime.ComposeCommand)
	assert.Equal(t, 3, settings.Runtime.RetryAttempts)
	assert.False(t, settings.Runtime.StopOnExit)
	assert.Equal(t, "dpt", settings.Runtime.Project)
}

func TestSettingsService_Get_MalformedDurationUsesDefault(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("runtime.retry_interval", "soon")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, settings.Runtime.RetryInterval)
}

func TestSettingsService_Get_EmptyOwnerFallsBackToRepositoryID(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("release.owner", "")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.True(t, settings.Release.UsesRepositoryID())
	assert.Equal(t, "repository #861008208", settings.Release.Source())
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Runtime.Project = "dpt-staging"
	settings.Runtime.RetryInterval = 2 * time.Second
	settings.Release.Token = "secret"

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
	assert.Equal(t, "2s", store.GetString("runtime.retry_interval"))
}

func TestSettingsService_Save_EmptyTokenNotWritten(t *testing.T) {
	store := memory.NewConfigStore()
	settings := domain.DefaultAppSettings()

	require.NoError(t, NewSettingsService(store).Save(&settings))

	_, exists := store.Get("release.token")
	assert.False(t, exists)
}

func TestSettingsService_Save_Invalid(t *testing.T) {
	store := memory.NewConfigStore()
	settings := domain.DefaultAppSettings()
	settings.Runtime.Project = ""

	err := NewSettingsService(store).Save(&settings)

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.Keys())
}

func TestSettingsService_Save_StoreError(t *testing.T) {
	store := memory.NewConfigStore()
	store.SetErr = errors.New("disk full")
	settings := domain.DefaultAppSettings()

	err := NewSettingsService(store).Save(&settings)

	assert.ErrorContains(t, err, "disk full")
}

func TestSettingsService_SetValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, s *domain.AppSettings)
	}{
		{
			name:  "string",
			key:   "runtime.project",
			value: "dpt-test",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, "dpt-test", s.Runtime.Project) },
		},
		{
			name:  "int",
			key:   "runtime.retry_attempts",
			value: " 10 ",
			check: func(t *testing.T, s *domain.AppSettings) { assert.Equal(t, 10, s.Runtime.RetryAttempts) },
		},
		{
			name:  "bool",
			key:   "update.check_on_startup",
			value: "false",
			check: func(t *testing.T, s *domain.AppSettings) { assert.False(t, s.Update.CheckOnStartup) },
		},
		{
			name:  "duration",
			key:   "update.download_timeout",
			value: "90s",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.Equal(t, 90*time.Second, s.Update.DownloadTimeout)
			},
		},
		{
			name:  "list",
			key:   "runtime.compose_command",
			value: "docker  compose",
			check: func(t *testing.T, s *domain.AppSettings) {
				assert.Equal(t, []string{"docker", "compose"}, s.Runtime.ComposeCommand)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())

			require.NoError(t, service.SetValue(tt.key, tt.value))

			settings, err := service.Get()
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestSettingsService_SetValue_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "text"},
		{"bad int", "runtime.retry_attempts", "many"},
		{"bad bool", "runtime.stop_on_exit", "maybe"},
		{"bad duration", "runtime.retry_interval", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store).SetValue(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_SetValue_RollsBackInvalid(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.SetValue("runtime.retry_attempts", "4"))

	err := service.SetValue("runtime.retry_attempts", "-1")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 4, store.GetInt("runtime.retry_attempts"))
}

func TestSettingsService_SetValue_RollsBackNewKey(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	err := service.SetValue("runtime.project", "")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, exists := store.Get("runtime.project")
	assert.False(t, exists)
}

func TestSettingsService_Reset(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.SetValue("runtime.project", "other"))

	require.NoError(t, service.Reset("runtime.project"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "dpt", settings.Runtime.Project)
	assert.ErrorIs(t, service.Reset("nope"), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore()).Keys()

	assert.Len(t, keys, 15)
	assert.Equal(t, "document.path", keys[0])
	assert.Contains(t, keys, "release.token")
	assert.Contains(t, keys, "runtime.stop_on_exit")
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_GetBool_WithoutKey(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.True(t, service.getBool("missing", true))
	assert.False(t, service.getBool("missing", false))
}

func TestSettingsService_GetInt_WithZeroValue(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("runtime.retry_attempts", 0)

	assert.Equal(t, 36, NewSettingsService(store).getInt("runtime.retry_attempts", 36))
}
