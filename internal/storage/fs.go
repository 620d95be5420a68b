package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/villemin/feuille/internal/models"
)

// documentsEnvelope wraps the persisted collection with a schema version.
type documentsEnvelope struct {
	Version   int               `json:"version"`
	Documents []models.Document `json:"documents"`
}

// settingsEnvelope wraps the persisted settings with a schema version.
type settingsEnvelope struct {
	Version  int             `json:"version"`
	Settings models.Settings `json:"settings"`
}

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the data directory

	mu            sync.Mutex
	lastDocsSum   string // checksum of the last payload we wrote ourselves
	lastDocsKnown bool
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// DocumentsPath returns the absolute path of the documents file, for the
// external-write watcher.
func (f *FS) DocumentsPath() string {
	return filepath.Join(f.root, DocumentsFile)
}

// LoadDocuments reads and unwraps the persisted collection. It also accepts
// the legacy bare-array layout so a data file written by the original app
// imports cleanly.
func (f *FS) LoadDocuments() ([]models.Document, error) {
	data, err := os.ReadFile(f.DocumentsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Document{}, nil
		}
		return nil, fmt.Errorf("storage: read documents: %w", err)
	}

	var env documentsEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version >= 1 {
		if env.Documents == nil {
			env.Documents = []models.Document{}
		}
		f.noteWritten(data)
		return env.Documents, nil
	}

	// Legacy layout: a bare JSON array.
	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("storage: parse documents: %w", err)
	}
	f.noteWritten(data)
	return docs, nil
}

// SaveDocuments atomically writes the collection: tmp file → fsync → rename.
func (f *FS) SaveDocuments(docs []models.Document) error {
	if docs == nil {
		docs = []models.Document{}
	}
	payload, err := json.MarshalIndent(documentsEnvelope{Version: SchemaVersion, Documents: docs}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode documents: %w", err)
	}
	if err := f.writeAtomic(f.DocumentsPath(), payload); err != nil {
		return err
	}
	f.noteWritten(payload)
	return nil
}

// LoadSettings reads and unwraps the persisted settings.
func (f *FS) LoadSettings() (models.Settings, error) {
	data, err := os.ReadFile(filepath.Join(f.root, SettingsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.DefaultSettings(), nil
		}
		return models.Settings{}, fmt.Errorf("storage: read settings: %w", err)
	}

	var env settingsEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version >= 1 {
		return env.Settings, nil
	}

	// Legacy layout: the bare settings object.
	var s models.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Settings{}, fmt.Errorf("storage: parse settings: %w", err)
	}
	return s, nil
}

// SaveSettings atomically writes the settings.
func (f *FS) SaveSettings(s models.Settings) error {
	payload, err := json.MarshalIndent(settingsEnvelope{Version: SchemaVersion, Settings: s}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode settings: %w", err)
	}
	return f.writeAtomic(filepath.Join(f.root, SettingsFile), payload)
}

// WroteChecksum reports whether sum matches the checksum of the last
// documents payload this process wrote. The watcher uses it to tell
// self-writes apart from external ones.
func (f *FS) WroteChecksum(sum string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastDocsKnown && f.lastDocsSum == sum
}

func (f *FS) noteWritten(payload []byte) {
	f.mu.Lock()
	f.lastDocsSum = Checksum(payload)
	f.lastDocsKnown = true
	f.mu.Unlock()
}

func (f *FS) writeAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)

	tmp, err := os.CreateTemp(dir, ".feuille-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
