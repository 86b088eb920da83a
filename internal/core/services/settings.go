package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDocumentPath     = "document.path"
	keyReleaseOwner     = "release.owner"
	keyReleaseRepo      = "release.repo"
	keyReleaseRepoID    = "release.repository_id"
	keyReleaseToken     = "release.token"
	keyExecutableName   = "release.executable_name"
	keyExecutableSuffix = "release.executable_suffix"
	keyCheckOnStartup   = "update.check_on_startup"
	keyDownloadTimeout  = "update.download_timeout"
	keyComposeCommand   = "runtime.compose_command"
	keyProject          = "runtime.project"
	keyStartCommand     = "runtime.start_command"
	keyRetryAttempts    = "runtime.retry_attempts"
	keyRetryInterval    = "runtime.retry_interval"
	keyStopOnExit       = "runtime.stop_on_exit"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
	kindDuration
	kindList
)

// settingKeys lists every understood key in display order.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyDocumentPath, kindString},
	{keyReleaseOwner, kindString},
	{keyReleaseRepo, kindString},
	{keyReleaseRepoID, kindInt},
	{keyReleaseToken, kindString},
	{keyExecutableName, kindString},
	{keyExecutableSuffix, kindString},
	{keyCheckOnStartup, kindBool},
	{keyDownloadTimeout, kindDuration},
	{keyComposeCommand, kindList},
	{keyProject, kindString},
	{keyStartCommand, kindList},
	{keyRetryAttempts, kindInt},
	{keyRetryInterval, kindDuration},
	{keyStopOnExit, kindBool},
}

// SettingsService manages helper preferences.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Unset or malformed keys take their defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Document: domain.DocumentSettings{
			Path: s.getString(keyDocumentPath, defaults.Document.Path),
		},
		Release: domain.ReleaseSettings{
			Owner:            s.getStringAllowEmpty(keyReleaseOwner, defaults.Release.Owner),
			Repo:             s.getStringAllowEmpty(keyReleaseRepo, defaults.Release.Repo),
			RepositoryID:     int64(s.getInt(keyReleaseRepoID, int(defaults.Release.RepositoryID))),
			Token:            s.configStore.GetString(keyReleaseToken),
			ExecutableName:   s.getString(keyExecutableName, defaults.Release.ExecutableName),
			ExecutableSuffix: s.getString(keyExecutableSuffix, defaults.Release.ExecutableSuffix),
		},
		Update: domain.UpdateSettings{
			CheckOnStartup:  s.getBool(keyCheckOnStartup, defaults.Update.CheckOnStartup),
			DownloadTimeout: s.getDuration(keyDownloadTimeout, defaults.Update.DownloadTimeout),
		},
		Runtime: domain.RuntimeSettings{
			ComposeCommand: s.getList(keyComposeCommand, defaults.Runtime.ComposeCommand),
			Project:        s.getString(keyProject, defaults.Runtime.Project),
			StartCommand:   s.getList(keyStartCommand, defaults.Runtime.StartCommand),
			RetryAttempts:  s.getInt(keyRetryAttempts, defaults.Runtime.RetryAttempts),
			RetryInterval:  s.getDuration(keyRetryInterval, defaults.Runtime.RetryInterval),
			StopOnExit:     s.getBool(keyStopOnExit, defaults.Runtime.StopOnExit),
		},
	}

	return settings, nil
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyDocumentPath, settings.Document.Path},
		{keyReleaseOwner, settings.Release.Owner},
		{keyReleaseRepo, settings.Release.Repo},
		{keyReleaseRepoID, settings.Release.RepositoryID},
		{keyExecutableName, settings.Release.ExecutableName},
		{keyExecutableSuffix, settings.Release.ExecutableSuffix},
		{keyCheckOnStartup, settings.Update.CheckOnStartup},
		{keyDownloadTimeout, settings.Update.DownloadTimeout.String()},
		{keyComposeCommand, settings.Runtime.ComposeCommand},
		{keyProject, settings.Runtime.Project},
		{keyStartCommand, settings.Runtime.StartCommand},
		{keyRetryAttempts, settings.Runtime.RetryAttempts},
		{keyRetryInterval, settings.Runtime.RetryInterval.String()},
		{keyStopOnExit, settings.Runtime.StopOnExit},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// An empty token is never written, so clearing needs Reset.
	if settings.Release.Token != "" {
		if err := s.configStore.Set(keyReleaseToken, settings.Release.Token); err != nil {
			return fmt.Errorf("save %s: %w", keyReleaseToken, err)
		}
	}
	return nil
}

// SetValue parses value according to key's type and stores it.
// The change is rolled back if the resulting settings do not validate.
func (s *SettingsService) SetValue(key, value string) error {
	kind, ok := kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	prev, hadPrev := s.configStore.Get(key)
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	settings, _ := s.Get()
	if err := settings.Validate(); err != nil {
		if hadPrev {
			_ = s.configStore.Set(key, prev)
		} else {
			_ = s.configStore.Unset(key)
		}
		return err
	}
	return nil
}

// Reset removes a stored key so its default applies.
func (s *SettingsService) Reset(key string) error {
	if _, ok := kindOf(key); !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

// Keys lists every understood setting key.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func kindOf(key string) (settingKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	case kindBool:
		return strconv.ParseBool(strings.TrimSpace(value))
	case kindDuration:
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindList:
		return strings.Fields(value), nil
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getStringAllowEmpty distinguishes an explicitly empty value from an unset key.
func (s *SettingsService) getStringAllowEmpty(key, defaultVal string) string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}
