package driven

// ConfigStore provides access to the helper's own preferences.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a preference by dotted key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string preference.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer preference.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean preference.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice preference.
	// Returns nil if key doesn't exist or isn't a slice.
	GetStringSlice(key string) []string

	// Set stores a preference.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Unset removes a preference so its default applies again.
	Unset(key string) error

	// Keys lists the stored keys in sorted order.
	Keys() []string

	// Save persists the current preferences to storage.
	Save() error

	// Load reads preferences from storage.
	Load() error

	// Path returns the preferences file path.
	Path() string
}
