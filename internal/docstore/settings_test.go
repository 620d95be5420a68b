package docstore

import (
	"testing"

	"github.com/villemin/feuille/internal/models"
	"github.com/villemin/feuille/internal/storage"
)

func testSettingsStore(t *testing.T) (*SettingsStore, *storage.FS) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	s := NewSettingsStore(fs, testLogger())
	s.Load()
	return s, fs
}

func TestSettingsDefaults(t *testing.T) {
	s, _ := testSettingsStore(t)
	got := s.Get()
	if got.Language != "en" || got.Theme != "system" {
		t.Errorf("defaults = %+v", got)
	}
}

func TestSettingsUpdatePersists(t *testing.T) {
	s, fs := testSettingsStore(t)

	lang := "fr"
	name := "M. Dupont"
	got, err := s.Update(models.SettingsPatch{Language: &lang, TeacherName: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Language != "fr" || got.TeacherName != "M. Dupont" {
		t.Errorf("updated = %+v", got)
	}

	// A fresh store over the same directory reads the saved values.
	s2 := NewSettingsStore(fs, testLogger())
	s2.Load()
	if reread := s2.Get(); reread.Language != "fr" || reread.TeacherName != "M. Dupont" {
		t.Errorf("reloaded = %+v", reread)
	}
}

func TestSettingsInvalidPatchRejected(t *testing.T) {
	s, _ := testSettingsStore(t)

	lang := "de"
	if _, err := s.Update(models.SettingsPatch{Language: &lang}); err == nil {
		t.Fatal("unsupported language must be rejected")
	}
	if got := s.Get(); got.Language != "en" {
		t.Errorf("stored settings must be untouched after a rejected patch, got %q", got.Language)
	}
}
