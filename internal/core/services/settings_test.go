package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/adapters/driven/storage/memory"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)

	// Verify defaults
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Reader.FontSize, settings.Reader.FontSize)
	assert.Equal(t, defaults.Reader.Theme, settings.Reader.Theme)
	assert.Equal(t, defaults.Reader.PageMode, settings.Reader.PageMode)
	assert.Equal(t, defaults.Tracking.DebounceMillis, settings.Tracking.DebounceMillis)
	assert.Equal(t, defaults.Tracking.ChunkSize, settings.Tracking.ChunkSize)
	assert.Equal(t, defaults.Backend.Mode, settings.Backend.Mode)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("reader.theme", "dark")
	_ = store.Set("reader.font_size", 18)
	_ = store.Set("reader.line_height", 1.8)
	_ = store.Set("tracking.debounce_ms", 250)

	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, settings.Reader.Theme)
	assert.Equal(t, 18, settings.Reader.FontSize)
	assert.InDelta(t, 1.8, settings.Reader.LineHeight, 0.0001)
	assert.Equal(t, 250, settings.Tracking.DebounceMillis)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("reader.theme", "neon")
	_ = store.Set("reader.page_mode", "teleport")
	_ = store.Set("backend.mode", "carrier_pigeon")

	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	// Invalid values should fall back to defaults
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Reader.Theme, settings.Reader.Theme)
	assert.Equal(t, defaults.Reader.PageMode, settings.Reader.PageMode)
	assert.Equal(t, defaults.Backend.Mode, settings.Backend.Mode)
}

func TestSettingsService_Save_RoundTrips(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Reader.Theme = domain.ThemeSepia
	settings.Reader.FontSize = 20
	settings.Tracking.ChunkSize = 2048
	settings.Backend.Mode = domain.BackendModeRemote
	settings.Backend.BaseURL = "https://sync.example.com"
	settings.Backend.APIKey = "vr_test_key"

	require.NoError(t, service.Save(&settings))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeSepia, loaded.Reader.Theme)
	assert.Equal(t, 20, loaded.Reader.FontSize)
	assert.Equal(t, 2048, loaded.Tracking.ChunkSize)
	assert.Equal(t, domain.BackendModeRemote, loaded.Backend.Mode)
	assert.Equal(t, "https://sync.example.com", loaded.Backend.BaseURL)
	assert.Equal(t, "vr_test_key", loaded.Backend.APIKey)
}

func TestSettingsService_Save_EmptyAPIKeyKeepsStored(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("backend.api_key", "vr_existing")

	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Backend.APIKey = ""
	require.NoError(t, service.Save(&settings))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "vr_existing", loaded.Backend.APIKey, "saving without a key must not blank the stored one")
}

func TestSettingsService_SetTheme(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetTheme(domain.ThemeDark))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, settings.Reader.Theme)
}

func TestSettingsService_SetTheme_Invalid(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	err := service.SetTheme(domain.Theme("neon"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid theme")
}

func TestSettingsService_SetPageMode(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetPageMode(domain.PageModeScroll))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.PageModeScroll, settings.Reader.PageMode)
}

func TestSettingsService_SetPageMode_Invalid(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	err := service.SetPageMode(domain.PageMode("teleport"))

	assert.Error(t, err)
}

func TestSettingsService_SetFont(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetFont(22, "Literata", 1.7))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 22, settings.Reader.FontSize)
	assert.Equal(t, "Literata", settings.Reader.FontFamily)
	assert.InDelta(t, 1.7, settings.Reader.LineHeight, 0.0001)
}

func TestSettingsService_SetFont_ZeroKeepsCurrent(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.SetFont(22, "Literata", 1.7))

	require.NoError(t, service.SetFont(0, "", 0))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 22, settings.Reader.FontSize)
	assert.Equal(t, "Literata", settings.Reader.FontFamily)
	assert.InDelta(t, 1.7, settings.Reader.LineHeight, 0.0001)
}

func TestSettingsService_SetFont_Negative(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	assert.Error(t, service.SetFont(-1, "", 0))
	assert.Error(t, service.SetFont(0, "", -0.5))
}

func TestSettingsService_SetTracking(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetTracking(750, 3200))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 750, settings.Tracking.DebounceMillis)
	assert.Equal(t, 3200, settings.Tracking.ChunkSize)
}

func TestSettingsService_SetTracking_Negative(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	assert.Error(t, service.SetTracking(-1, 0))
	assert.Error(t, service.SetTracking(0, -1))
}

func TestSettingsService_SetBackend_Remote(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.SetBackend(domain.BackendModeRemote, "https://sync.example.com", "vr_key"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.BackendModeRemote, settings.Backend.Mode)
	assert.Equal(t, "https://sync.example.com", settings.Backend.BaseURL)
	assert.Equal(t, "vr_key", settings.Backend.APIKey)
}

func TestSettingsService_SetBackend_RemoteRequiresURL(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	err := service.SetBackend(domain.BackendModeRemote, "", "vr_key")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
}

func TestSettingsService_SetBackend_LocalKeepsRemoteConfig(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.SetBackend(domain.BackendModeRemote, "https://sync.example.com", "vr_key"))

	require.NoError(t, service.SetBackend(domain.BackendModeLocal, "", ""))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.BackendModeLocal, settings.Backend.Mode)
	assert.Equal(t, "https://sync.example.com", settings.Backend.BaseURL,
		"switching to local keeps the remote endpoint for switching back")
	assert.Equal(t, "vr_key", settings.Backend.APIKey)
}

func TestSettingsService_SetBackend_Invalid(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	err := service.SetBackend(domain.BackendMode("carrier_pigeon"), "", "")

	assert.Error(t, err)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	defaults := service.GetDefaults()

	assert.Equal(t, domain.DefaultAppSettings(), defaults)
}

func TestSettingsService_Validate_DefaultsAreValid(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	assert.NoError(t, service.Validate())
}

func TestSettingsService_Validate_RemoteWithoutURL(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("backend.mode", "remote")

	service := NewSettingsService(store)

	err := service.Validate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
}

func TestSettingsService_Validate_BadTracking(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("tracking.debounce_ms", -50)

	service := NewSettingsService(store)

	err := service.Validate()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "debounce")
}
