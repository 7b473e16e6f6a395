package driving

import "github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetTheme updates the reader theme.
	SetTheme(theme domain.Theme) error

	// SetPageMode updates the reader page mode.
	SetPageMode(mode domain.PageMode) error

	// SetFont updates the persisted font preferences.
	SetFont(size int, family string, lineHeight float64) error

	// SetTracking updates the debounce window and locations chunk size.
	SetTracking(debounceMillis, chunkSize int) error

	// SetBackend configures where progress is persisted.
	SetBackend(mode domain.BackendMode, baseURL, apiKey string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks if current settings are usable.
	Validate() error
}
