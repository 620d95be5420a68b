package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/villemin/feuille/internal/models"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestLoadDocumentsMissingFile(t *testing.T) {
	fs := tempFS(t)
	docs, err := fs.LoadDocuments()
	if err != nil {
		t.Fatalf("LoadDocuments: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("missing file must yield an empty collection, got %v", docs)
	}
}

func TestSaveAndLoadDocuments(t *testing.T) {
	fs := tempFS(t)
	in := []models.Document{{
		ID:    "doc_1",
		Title: "Algebra",
		Date:  "2024-01-15",
		Exercises: []models.Exercise{
			{ID: "ex_1", Title: "Fractions", Difficulty: 3, Content: "<p>x</p>", Keywords: []string{"algebra"}},
		},
		LastModified: "2024-01-15T10:00:00.000Z",
	}}

	if err := fs.SaveDocuments(in); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}
	got, err := fs.LoadDocuments()
	if err != nil {
		t.Fatalf("LoadDocuments: %v", err)
	}
	if len(got) != 1 || got[0].ID != "doc_1" || got[0].Exercises[0].Keywords[0] != "algebra" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestSaveDocumentsWritesVersionedEnvelope(t *testing.T) {
	fs := tempFS(t)
	if err := fs.SaveDocuments([]models.Document{}); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}
	raw, err := os.ReadFile(fs.DocumentsPath())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(raw), `"version": 1`) {
		t.Errorf("payload lacks schema version: %s", raw)
	}
}

func TestLoadDocumentsLegacyBareArray(t *testing.T) {
	fs := tempFS(t)
	legacy := `[{"id":"doc_old","title":"Old","date":"2023-09-01","exercises":[],"lastModified":"2023-09-01T08:00:00.000Z"}]`
	if err := os.WriteFile(fs.DocumentsPath(), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := fs.LoadDocuments()
	if err != nil {
		t.Fatalf("LoadDocuments: %v", err)
	}
	if len(got) != 1 || got[0].ID != "doc_old" {
		t.Errorf("legacy layout = %+v", got)
	}
}

func TestLoadDocumentsCorruptFile(t *testing.T) {
	fs := tempFS(t)
	if err := os.WriteFile(fs.DocumentsPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.LoadDocuments(); err == nil {
		t.Error("corrupt payload must error")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	fs := tempFS(t)
	if err := fs.SaveDocuments(nil); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(fs.DocumentsPath()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".feuille-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSettingsRoundTripAndLegacy(t *testing.T) {
	fs := tempFS(t)

	// Missing file falls back to defaults.
	got, err := fs.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got.Language != "en" {
		t.Errorf("defaults = %+v", got)
	}

	want := models.Settings{Language: "fr", Theme: "dark", TeacherName: "Mme Martin"}
	if err := fs.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err = fs.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}

	// Legacy layout: bare settings object without an envelope.
	legacy := `{"language":"fr","theme":"light"}`
	if err := os.WriteFile(filepath.Join(filepath.Dir(fs.DocumentsPath()), SettingsFile), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = fs.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings legacy: %v", err)
	}
	if got.Language != "fr" || got.Theme != "light" {
		t.Errorf("legacy = %+v", got)
	}
}

func TestWroteChecksumTracksOwnWrites(t *testing.T) {
	fs := tempFS(t)
	if err := fs.SaveDocuments([]models.Document{{ID: "doc_1", Title: "T", Exercises: []models.Exercise{}}}); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}
	raw, err := os.ReadFile(fs.DocumentsPath())
	if err != nil {
		t.Fatal(err)
	}
	if !fs.WroteChecksum(Checksum(raw)) {
		t.Error("checksum of own write must be recognised")
	}
	if fs.WroteChecksum(Checksum([]byte("external"))) {
		t.Error("foreign payload must not be recognised")
	}
}
