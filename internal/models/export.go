package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Export theme variants.
const (
	ExportThemeDefault      = "default"
	ExportThemeInkSaver     = "ink-saver"
	ExportThemeHighContrast = "high-contrast"
)

// ExportOptions are the transient per-export formatting choices. They are
// never persisted; each export call carries its own copy.
type ExportOptions struct {
	Columns        int    `json:"columns"`
	FontSize       int    `json:"fontSize"`
	Theme          string `json:"theme"`
	ShowDifficulty bool   `json:"showDifficulty"`
	ShowKeywords   bool   `json:"showKeywords"`
	ShowTitles     bool   `json:"showTitles"`
}

// DefaultExportOptions returns the options used when the caller leaves
// everything unset.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Columns:        1,
		FontSize:       11,
		Theme:          ExportThemeDefault,
		ShowDifficulty: true,
		ShowKeywords:   true,
		ShowTitles:     true,
	}
}

// Validate checks the discrete option values.
func (o ExportOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Columns, validation.Required, validation.In(1, 2)),
		validation.Field(&o.FontSize, validation.Required, validation.In(9, 11, 13)),
		validation.Field(&o.Theme, validation.Required,
			validation.In(ExportThemeDefault, ExportThemeInkSaver, ExportThemeHighContrast)),
	)
}
