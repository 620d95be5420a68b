package docstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/villemin/feuille/internal/storage"
)

// Watch observes the documents data file and reloads the store when another
// process rewrites it. Writes made by this process are recognized through
// the storage checksum and skipped. Events are debounced because editors
// and atomic renames produce bursts.
//
// Cross-process writers remain last-write-wins; the watcher only makes an
// external overwrite visible instead of silently divergent.
func Watch(ctx context.Context, store *Store, fs *storage.FS, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory, not the file: atomic rename replaces the inode.
	dataFile := fs.DocumentsPath()
	if err := w.Add(filepath.Dir(dataFile)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", dataFile))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != dataFile {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))

		case <-debounceCh:
			data, err := os.ReadFile(dataFile)
			if err != nil {
				logger.Warn("watcher: read failed", slog.String("error", err.Error()))
				continue
			}
			if fs.WroteChecksum(storage.Checksum(data)) {
				continue // our own write landing on disk
			}
			logger.Info("watcher: external change detected, reloading")
			if err := store.Reload(); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
			}
		}
	}
}
