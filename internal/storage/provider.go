// Package storage persists the document collection and the application
// settings as two JSON files in a data directory.
package storage

import "github.com/villemin/feuille/internal/models"

// Well-known file names inside the data directory.
const (
	DocumentsFile = "documents.json"
	SettingsFile  = "settings.json"
)

// SchemaVersion is written into every envelope so future layout changes can
// be migrated. The legacy layout persisted bare arrays with no version.
const SchemaVersion = 1

// Provider is the interface over the durable layout: one slot for the whole
// document collection, one for the settings object.
type Provider interface {
	// LoadDocuments reads the persisted collection. A missing file yields
	// an empty collection, not an error.
	LoadDocuments() ([]models.Document, error)
	// SaveDocuments atomically replaces the persisted collection.
	SaveDocuments(docs []models.Document) error
	// LoadSettings reads the persisted settings. A missing file yields the
	// defaults, not an error.
	LoadSettings() (models.Settings, error)
	// SaveSettings atomically replaces the persisted settings.
	SaveSettings(s models.Settings) error
}
