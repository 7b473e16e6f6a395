package services

import (
	"fmt"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyFontSize       = "reader.font_size"
	keyFontFamily     = "reader.font_family"
	keyLineHeight     = "reader.line_height"
	keyTheme          = "reader.theme"
	keyPageMode       = "reader.page_mode"
	keyDebounceMillis = "tracking.debounce_ms"
	keyChunkSize      = "tracking.chunk_size"
	keyBackendMode    = "backend.mode"
	keyBackendBaseURL = "backend.base_url"
	keyBackendAPIKey  = "backend.api_key"
	keyBackendRPS     = "backend.requests_per_second"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Reader: domain.ReaderSettings{
			FontSize:   s.getInt(keyFontSize, defaults.Reader.FontSize),
			FontFamily: s.getString(keyFontFamily, defaults.Reader.FontFamily),
			LineHeight: s.getFloat(keyLineHeight, defaults.Reader.LineHeight),
			Theme:      s.getTheme(defaults.Reader.Theme),
			PageMode:   s.getPageMode(defaults.Reader.PageMode),
		},
		Tracking: domain.TrackingSettings{
			DebounceMillis: s.getInt(keyDebounceMillis, defaults.Tracking.DebounceMillis),
			ChunkSize:      s.getInt(keyChunkSize, defaults.Tracking.ChunkSize),
		},
		Backend: domain.BackendSettings{
			Mode:              s.getBackendMode(defaults.Backend.Mode),
			BaseURL:           s.configStore.GetString(keyBackendBaseURL), // No default - empty means local-only
			APIKey:            s.configStore.GetString(keyBackendAPIKey),
			RequestsPerSecond: s.getFloat(keyBackendRPS, defaults.Backend.RequestsPerSecond),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save reader settings
	if err := s.configStore.Set(keyFontSize, settings.Reader.FontSize); err != nil {
		return fmt.Errorf("save font size: %w", err)
	}
	if err := s.configStore.Set(keyFontFamily, settings.Reader.FontFamily); err != nil {
		return fmt.Errorf("save font family: %w", err)
	}
	if err := s.configStore.Set(keyLineHeight, settings.Reader.LineHeight); err != nil {
		return fmt.Errorf("save line height: %w", err)
	}
	if err := s.configStore.Set(keyTheme, settings.Reader.Theme.String()); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	if err := s.configStore.Set(keyPageMode, settings.Reader.PageMode.String()); err != nil {
		return fmt.Errorf("save page mode: %w", err)
	}

	// Save tracking settings
	if err := s.configStore.Set(keyDebounceMillis, settings.Tracking.DebounceMillis); err != nil {
		return fmt.Errorf("save debounce: %w", err)
	}
	if err := s.configStore.Set(keyChunkSize, settings.Tracking.ChunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}

	// Save backend settings
	if err := s.configStore.Set(keyBackendMode, settings.Backend.Mode.String()); err != nil {
		return fmt.Errorf("save backend mode: %w", err)
	}
	if err := s.configStore.Set(keyBackendBaseURL, settings.Backend.BaseURL); err != nil {
		return fmt.Errorf("save backend base_url: %w", err)
	}
	if settings.Backend.APIKey != "" {
		if err := s.configStore.Set(keyBackendAPIKey, settings.Backend.APIKey); err != nil {
			return fmt.Errorf("save backend api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyBackendRPS, settings.Backend.RequestsPerSecond); err != nil {
		return fmt.Errorf("save backend rate: %w", err)
	}

	return nil
}

// SetTheme updates the reader theme.
func (s *SettingsService) SetTheme(theme domain.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("invalid theme: %s", theme)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Reader.Theme = theme

	return s.Save(settings)
}

// SetPageMode updates the reader page mode.
func (s *SettingsService) SetPageMode(mode domain.PageMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid page mode: %s", mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Reader.PageMode = mode

	return s.Save(settings)
}

// SetFont updates the persisted font preferences. Zero values keep the
// current setting.
func (s *SettingsService) SetFont(size int, family string, lineHeight float64) error {
	if size < 0 {
		return fmt.Errorf("invalid font size: %d", size)
	}
	if lineHeight < 0 {
		return fmt.Errorf("invalid line height: %g", lineHeight)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if size > 0 {
		settings.Reader.FontSize = size
	}
	if family != "" {
		settings.Reader.FontFamily = family
	}
	if lineHeight > 0 {
		settings.Reader.LineHeight = lineHeight
	}

	return s.Save(settings)
}

// SetTracking updates the debounce window and locations chunk size.
// Zero values keep the current setting.
func (s *SettingsService) SetTracking(debounceMillis, chunkSize int) error {
	if debounceMillis < 0 {
		return fmt.Errorf("invalid debounce: %dms", debounceMillis)
	}
	if chunkSize < 0 {
		return fmt.Errorf("invalid chunk size: %d", chunkSize)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if debounceMillis > 0 {
		settings.Tracking.DebounceMillis = debounceMillis
	}
	if chunkSize > 0 {
		settings.Tracking.ChunkSize = chunkSize
	}

	return s.Save(settings)
}

// SetBackend configures where progress is persisted.
func (s *SettingsService) SetBackend(mode domain.BackendMode, baseURL, apiKey string) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid backend mode: %s", mode)
	}
	if mode == domain.BackendModeRemote && baseURL == "" {
		return fmt.Errorf("backend mode %s requires a base URL", mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Backend.Mode = mode
	if mode == domain.BackendModeLocal {
		// Local mode needs no endpoint; keep any stored remote
		// configuration around for switching back.
		return s.Save(settings)
	}

	settings.Backend.BaseURL = baseURL
	settings.Backend.APIKey = apiKey

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Reader.Theme.IsValid() {
		return fmt.Errorf("invalid theme: %s", settings.Reader.Theme)
	}
	if !settings.Reader.PageMode.IsValid() {
		return fmt.Errorf("invalid page mode: %s", settings.Reader.PageMode)
	}
	if settings.Tracking.DebounceMillis <= 0 {
		return fmt.Errorf("invalid debounce: %dms", settings.Tracking.DebounceMillis)
	}
	if settings.Tracking.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size: %d", settings.Tracking.ChunkSize)
	}
	if !settings.Backend.IsConfigured() {
		return fmt.Errorf(
			"backend mode %q requires a base URL",
			settings.Backend.Mode.Description(),
		)
	}

	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat64(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getTheme(defaultVal domain.Theme) domain.Theme {
	val := s.configStore.GetString(keyTheme)
	if val == "" {
		return defaultVal
	}
	theme := domain.Theme(val)
	if !theme.IsValid() {
		return defaultVal
	}
	return theme
}

func (s *SettingsService) getPageMode(defaultVal domain.PageMode) domain.PageMode {
	val := s.configStore.GetString(keyPageMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.PageMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getBackendMode(defaultVal domain.BackendMode) domain.BackendMode {
	val := s.configStore.GetString(keyBackendMode)
	if val == "" {
		return defaultVal
	}
	mode := domain.BackendMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
