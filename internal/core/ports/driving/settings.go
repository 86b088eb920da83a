package driving

import "github.com/custodia-labs/bootman/internal/core/domain"

// SettingsService manages helper preferences.
type SettingsService interface {
	// Get retrieves current settings, with defaults for unset keys.
	Get() (*domain.AppSettings, error)

	// Save validates and persists settings.
	Save(settings *domain.AppSettings) error

	// SetValue sets a single preference by key, parsing the string form.
	SetValue(key, value string) error

	// Reset removes a preference so its default applies.
	Reset(key string) error

	// Keys lists the preference keys the service understands.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
