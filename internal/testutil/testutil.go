// Package testutil provides shared test helpers for setting up data
// directories, stores, and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/villemin/feuille/internal/docstore"
	"github.com/villemin/feuille/internal/index"
	"github.com/villemin/feuille/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "feuille-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestFS creates a temporary data directory with a storage.FS.
func TestFS(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestStore creates a loaded document store over a temporary directory.
func TestStore(t *testing.T) *docstore.Store {
	t.Helper()
	_, fs := TestFS(t)
	store := docstore.New(fs, Logger())
	store.Load()
	return store
}
