// Package i18n holds the French and English display strings and the
// locale-aware date formatting used by the export pipeline and the
// notification events.
package i18n

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

var matcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.French,
})

// Normalize maps an arbitrary BCP-47 tag ("fr-CA", "en_US", ...) onto one of
// the supported language codes, falling back to English.
func Normalize(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "en"
	}
	_, idx, _ := matcher.Match(tag)
	if idx == 1 {
		return "fr"
	}
	return "en"
}

var tables = map[string]map[string]string{
	"en": {
		"export.exerciseLabel":   "Exercise %d",
		"document.genericTitle":  "Document",
		"notify.documentDeleted": "%q deleted.",
		"notify.exerciseDeleted": "Exercise deleted.",
	},
	"fr": {
		"export.exerciseLabel":   "Exercice %d",
		"document.genericTitle":  "Document",
		"notify.documentDeleted": "%q supprimé.",
		"notify.exerciseDeleted": "Exercice supprimé.",
	},
}

// T returns the string for key in the given language, formatted with args.
// Unknown keys come back as the key itself so a missing entry is visible
// instead of blank.
func T(lang, key string, args ...any) string {
	table, ok := tables[Normalize(lang)]
	if !ok {
		table = tables["en"]
	}
	s, ok := table[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}

var monthsFR = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatDate renders an ISO calendar date ("2024-09-02") in the locale's
// long form: "September 2, 2024" in English, "2 septembre 2024" in French.
// An unparseable date is returned verbatim rather than dropped.
func FormatDate(isoDate, lang string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	if Normalize(lang) == "fr" {
		return fmt.Sprintf("%d %s %d", t.Day(), monthsFR[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}
