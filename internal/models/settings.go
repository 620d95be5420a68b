package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Supported UI languages.
const (
	LangFrench  = "fr"
	LangEnglish = "en"
)

// UI theme choices.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Settings is the process-wide application configuration persisted alongside
// the documents. Loaded once at startup, read by the export pipeline
// (language, teacher name) and by the extraction service (API key).
type Settings struct {
	Language    string `json:"language"`
	Theme       string `json:"theme"`
	TeacherName string `json:"teacherName,omitempty"`
	SchoolID    string `json:"schoolId,omitempty"`
	APIKey      string `json:"apiKey,omitempty"`
}

// DefaultSettings returns the settings used when nothing is persisted yet.
func DefaultSettings() Settings {
	return Settings{
		Language: LangEnglish,
		Theme:    ThemeSystem,
	}
}

// Validate checks the enum fields.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Language, validation.Required, validation.In(LangFrench, LangEnglish)),
		validation.Field(&s.Theme, validation.Required, validation.In(ThemeLight, ThemeDark, ThemeSystem)),
	)
}

// SettingsPatch enumerates the updatable settings fields.
type SettingsPatch struct {
	Language    *string `json:"language,omitempty"`
	Theme       *string `json:"theme,omitempty"`
	TeacherName *string `json:"teacherName,omitempty"`
	SchoolID    *string `json:"schoolId,omitempty"`
	APIKey      *string `json:"apiKey,omitempty"`
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s *Settings) {
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.TeacherName != nil {
		s.TeacherName = *p.TeacherName
	}
	if p.SchoolID != nil {
		s.SchoolID = *p.SchoolID
	}
	if p.APIKey != nil {
		s.APIKey = *p.APIKey
	}
}
