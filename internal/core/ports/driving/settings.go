package driving

import "github.com/custodia-labs/samarth/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied.
	Get() (*domain.Settings, error)

	// Save persists application settings.
	Save(settings *domain.Settings) error

	// Set updates a single dotted configuration key and persists it.
	Set(key, value string) error

	// Validate checks the settings for consistency.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
