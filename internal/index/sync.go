package index

import (
	"log/slog"

	"github.com/villemin/feuille/internal/docstore"
)

// Sync brings the index in line with the store:
//   - every current document's exercises are (re)indexed
//   - documents no longer in the store are removed from the index
func Sync(db *DB, store *docstore.Store, logger *slog.Logger) error {
	docs := store.Documents()

	indexed, err := db.AllDocumentIDs()
	if err != nil {
		return err
	}

	live := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		live[doc.ID] = struct{}{}
		if err := db.UpsertDocument(doc); err != nil {
			logger.Warn("sync: index failed", slog.String("doc_id", doc.ID), slog.String("error", err.Error()))
		}
	}

	for id := range indexed {
		if _, ok := live[id]; !ok {
			if err := db.DeleteDocument(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("doc_id", id), slog.String("error", err.Error()))
			}
		}
	}

	return nil
}

// Listen subscribes the index to store mutations so search results track
// every change. Reload and import events trigger a full resync; everything
// else reindexes only the touched document.
func Listen(db *DB, store *docstore.Store, logger *slog.Logger) {
	store.Subscribe(func(ev docstore.Event) {
		switch ev.Kind {
		case docstore.EventDocumentDeleted:
			if err := db.DeleteDocument(ev.DocumentID); err != nil {
				logger.Warn("index: delete failed", slog.String("doc_id", ev.DocumentID), slog.String("error", err.Error()))
			}
		case docstore.EventReloaded, docstore.EventDocumentsImported:
			if err := Sync(db, store, logger); err != nil {
				logger.Warn("index: resync failed", slog.String("error", err.Error()))
			}
		default:
			if ev.DocumentID == "" {
				return
			}
			doc, ok := store.GetDocument(ev.DocumentID)
			if !ok {
				return
			}
			if err := db.UpsertDocument(doc); err != nil {
				logger.Warn("index: upsert failed", slog.String("doc_id", ev.DocumentID), slog.String("error", err.Error()))
			}
		}
	})
}
