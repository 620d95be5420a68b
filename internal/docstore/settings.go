package docstore

import (
	"log/slog"
	"sync"

	"github.com/villemin/feuille/internal/models"
	"github.com/villemin/feuille/internal/storage"
)

// SettingsStore holds the process-wide settings, loaded once at startup and
// written through on every update.
type SettingsStore struct {
	provider storage.Provider
	logger   *slog.Logger

	mu       sync.RWMutex
	settings models.Settings
}

// NewSettingsStore creates the settings store. Call Load before use.
func NewSettingsStore(provider storage.Provider, logger *slog.Logger) *SettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsStore{provider: provider, logger: logger}
}

// Load reads persisted settings, falling back to defaults on any failure.
func (s *SettingsStore) Load() {
	settings, err := s.provider.LoadSettings()
	if err != nil {
		s.logger.Error("settings: load failed, using defaults", slog.String("error", err.Error()))
		settings = models.DefaultSettings()
	}
	if settings.Language == "" {
		settings.Language = models.DefaultSettings().Language
	}
	if settings.Theme == "" {
		settings.Theme = models.DefaultSettings().Theme
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Get returns the current settings.
func (s *SettingsStore) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update merges the patch, validates the result, and writes it through.
// An invalid patch leaves the stored settings untouched.
func (s *SettingsStore) Update(patch models.SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	next := s.settings
	patch.Apply(&next)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return models.Settings{}, err
	}
	s.settings = next
	s.mu.Unlock()

	if err := s.provider.SaveSettings(next); err != nil {
		s.logger.Error("settings: persist failed", slog.String("error", err.Error()))
	}
	return next, nil
}
