package docstore

import (
	"github.com/villemin/feuille/internal/models"
)

// ImportSummary reports what an import batch did.
type ImportSummary struct {
	Imported int `json:"imported"` // new documents inserted
	Merged   int `json:"merged"`   // existing documents merged into
	Skipped  int `json:"skipped"`  // entries dropped by shape validation
}

// ImportDocuments merges a batch of incoming documents into the collection.
//
// Entries missing an id or title, or whose exercise list is absent, are
// dropped silently. An incoming document whose id matches an existing one
// overwrites the existing document's scalar fields, keeps every existing
// exercise, and appends only incoming exercises with ids not already
// present, so re-running the same import is idempotent. Unmatched ids are
// appended as new documents.
func (s *Store) ImportDocuments(incoming []models.Document) ImportSummary {
	var sum ImportSummary

	s.mu.Lock()
	for _, in := range incoming {
		if in.ID == "" || in.Title == "" || in.Exercises == nil {
			sum.Skipped++
			continue
		}
		i := s.indexLocked(in.ID)
		if i < 0 {
			doc := in.Clone()
			doc.LastModified = s.timestamp()
			s.docs = append(s.docs, doc)
			sum.Imported++
			continue
		}

		existing := &s.docs[i]
		seen := make(map[string]struct{}, len(existing.Exercises))
		for _, ex := range existing.Exercises {
			seen[ex.ID] = struct{}{}
		}
		existing.Title = in.Title
		existing.Date = in.Date
		existing.SchoolYear = in.SchoolYear
		existing.ClassName = in.ClassName
		for _, ex := range in.Exercises {
			if _, dup := seen[ex.ID]; dup {
				continue
			}
			existing.Exercises = append(existing.Exercises, ex.Clone())
		}
		existing.LastModified = s.timestamp()
		sum.Merged++
	}
	if sum.Imported > 0 || sum.Merged > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()

	if sum.Imported > 0 || sum.Merged > 0 {
		s.notify(Event{Kind: EventDocumentsImported})
	}
	return sum
}
