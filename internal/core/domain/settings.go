package domain

const unknownDescription = "Unknown"

// Theme selects the reader colour scheme.
type Theme string

// Available themes.
const (
	// ThemeLight is dark text on a light background.
	ThemeLight Theme = "light"

	// ThemeDark is light text on a dark background.
	ThemeDark Theme = "dark"

	// ThemeSepia is a warm, paper-like scheme.
	ThemeSepia Theme = "sepia"
)

// IsValid returns true if the theme is recognised.
func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSepia:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t Theme) String() string {
	return string(t)
}

// Description returns a human-readable description of the theme.
func (t Theme) Description() string {
	switch t {
	case ThemeLight:
		return "Light (dark text on light)"
	case ThemeDark:
		return "Dark (light text on dark)"
	case ThemeSepia:
		return "Sepia (warm paper tones)"
	default:
		return unknownDescription
	}
}

// AllThemes returns every selectable theme in display order.
func AllThemes() []Theme {
	return []Theme{ThemeLight, ThemeDark, ThemeSepia}
}

// PageMode selects how the reader advances through content.
type PageMode string

// Available page modes.
const (
	// PageModePaginated turns discrete pages.
	PageModePaginated PageMode = "paginated"

	// PageModeScroll scrolls continuously by line.
	PageModeScroll PageMode = "scroll"
)

// IsValid returns true if the page mode is recognised.
func (m PageMode) IsValid() bool {
	switch m {
	case PageModePaginated, PageModeScroll:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m PageMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m PageMode) Description() string {
	switch m {
	case PageModePaginated:
		return "Paginated (discrete pages)"
	case PageModeScroll:
		return "Scroll (continuous)"
	default:
		return unknownDescription
	}
}

// AllPageModes returns every selectable page mode in display order.
func AllPageModes() []PageMode {
	return []PageMode{PageModePaginated, PageModeScroll}
}

// ReaderSettings holds display preferences.
// Font metrics are persisted for GUI clients sharing the library; the
// terminal reader consumes Theme and PageMode.
type ReaderSettings struct {
	// FontSize is the preferred font size in points.
	FontSize int

	// FontFamily is the preferred font family name.
	FontFamily string

	// LineHeight is the line height multiplier.
	LineHeight float64

	// Theme is the reader colour scheme.
	Theme Theme

	// PageMode is the navigation style.
	PageMode PageMode
}

// TrackingSettings holds position tracking configuration.
type TrackingSettings struct {
	// DebounceMillis is the quiescence window before a settled position
	// is written, in milliseconds.
	DebounceMillis int

	// ChunkSize is the character count per locations-index chunk.
	ChunkSize int
}

// BackendMode selects where reading progress is persisted.
type BackendMode string

// Available backend modes.
const (
	// BackendModeLocal persists progress in the local database.
	BackendModeLocal BackendMode = "local"

	// BackendModeRemote persists progress via the HTTP sync API.
	BackendModeRemote BackendMode = "remote"
)

// IsValid returns true if the backend mode is recognised.
func (m BackendMode) IsValid() bool {
	switch m {
	case BackendModeLocal, BackendModeRemote:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m BackendMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m BackendMode) Description() string {
	switch m {
	case BackendModeLocal:
		return "Local (on-device database)"
	case BackendModeRemote:
		return "Remote (HTTP sync API)"
	default:
		return unknownDescription
	}
}

// AllBackendModes returns every selectable backend mode in display
// order.
func AllBackendModes() []BackendMode {
	return []BackendMode{BackendModeLocal, BackendModeRemote}
}

// BackendSettings holds progress backend configuration.
type BackendSettings struct {
	// Mode selects local or remote persistence.
	Mode BackendMode

	// BaseURL is the sync API endpoint (remote mode).
	BaseURL string

	// APIKey authenticates against the sync API (remote mode).
	APIKey string

	// RequestsPerSecond caps outbound request rate (remote mode).
	RequestsPerSecond float64
}

// IsConfigured returns true if the backend selection is usable.
// Local mode needs nothing; remote mode needs a base URL.
func (b BackendSettings) IsConfigured() bool {
	if !b.Mode.IsValid() {
		return false
	}
	if b.Mode == BackendModeRemote && b.BaseURL == "" {
		return false
	}
	return true
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Reader holds display preferences.
	Reader ReaderSettings

	// Tracking holds position tracking configuration.
	Tracking TrackingSettings

	// Backend holds progress backend configuration.
	Backend BackendSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Progress stays local until a remote backend is explicitly configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Reader: ReaderSettings{
			FontSize:   16,
			FontFamily: "serif",
			LineHeight: 1.5,
			Theme:      ThemeLight,
			PageMode:   PageModePaginated,
		},
		Tracking: TrackingSettings{
			DebounceMillis: 500,
			ChunkSize:      DefaultChunkSize,
		},
		Backend: BackendSettings{
			Mode:              BackendModeLocal,
			RequestsPerSecond: 5,
		},
	}
}
