// Package docstore owns the authoritative, ordered document collection.
// Mutations are applied synchronously under a single lock and written
// through to storage; a failed write is logged and the in-memory state
// stays authoritative for the rest of the session.
package docstore

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/villemin/feuille/internal/models"
	"github.com/villemin/feuille/internal/storage"
)

const (
	docIDPrefix      = "doc"
	exerciseIDPrefix = "ex"

	// defaultDuplicateMark is how long RecentlyDuplicatedID stays set after
	// a duplication, so a UI can run one highlight cycle.
	defaultDuplicateMark = time.Second
)

// Store is the in-memory + persisted authority over all documents.
type Store struct {
	provider storage.Provider
	logger   *slog.Logger
	now      func() time.Time

	mu            sync.Mutex
	docs          []models.Document
	listeners     []func(Event)
	duplicatedID  string
	duplicateMark time.Duration
	dupTimer      *time.Timer
}

// New creates a store bound to the given provider. Call Load before use.
func New(provider storage.Provider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		provider:      provider,
		logger:        logger,
		now:           time.Now,
		duplicateMark: defaultDuplicateMark,
	}
}

// Load populates the in-memory collection from storage. A read failure is
// non-fatal: the store starts empty and stays usable for the session.
func (s *Store) Load() {
	docs, err := s.provider.LoadDocuments()
	if err != nil {
		s.logger.Error("docstore: load failed, starting empty", slog.String("error", err.Error()))
		docs = []models.Document{}
	}
	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
}

// Flush writes the current collection to storage, returning the write error
// so shutdown can report it. Mutations already write through; Flush exists
// for the teardown path.
func (s *Store) Flush() error {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	return s.provider.SaveDocuments(snapshot)
}

// Reload replaces the in-memory collection from storage. The watcher calls it
// after an external process rewrites the data file.
func (s *Store) Reload() error {
	docs, err := s.provider.LoadDocuments()
	if err != nil {
		return fmt.Errorf("docstore: reload: %w", err)
	}
	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
	s.notify(Event{Kind: EventReloaded})
	return nil
}

// Subscribe registers a listener invoked after every applied mutation.
// Listeners run outside the store lock and must not call back into
// mutating operations synchronously.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Documents returns a deep-copied snapshot of the collection in order
// (most recent first).
func (s *Store) Documents() []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// GetDocument returns a deep copy of the document with the given id.
func (s *Store) GetDocument(id string) (models.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if d.ID == id {
			return d.Clone(), true
		}
	}
	return models.Document{}, false
}

// RecentlyDuplicatedID returns the id of the document created by the last
// duplication, or "" once the one-shot highlight window has elapsed.
func (s *Store) RecentlyDuplicatedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duplicatedID
}

// AddDocument creates a document from the input: generated id, today's date,
// empty exercise list, fresh lastModified, inserted at the head of the
// collection.
func (s *Store) AddDocument(in models.NewDocumentInput) models.Document {
	s.mu.Lock()
	doc := models.Document{
		ID:           s.newID(docIDPrefix),
		Title:        in.Title,
		ClassName:    in.ClassName,
		SchoolYear:   in.SchoolYear,
		Date:         s.today(),
		Exercises:    []models.Exercise{},
		LastModified: s.timestamp(),
	}
	s.docs = append([]models.Document{doc}, s.docs...)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: EventDocumentCreated, DocumentID: doc.ID, Title: doc.Title})
	return doc.Clone()
}

// UpdateDocument merges the patch into the matching document and refreshes
// lastModified. A missing id is a no-op; ok reports whether anything matched.
func (s *Store) UpdateDocument(id string, patch models.DocumentPatch) (models.Document, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Document{}, false
	}
	patch.Apply(&s.docs[i])
	s.docs[i].LastModified = s.timestamp()
	out := s.docs[i].Clone()
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: EventDocumentUpdated, DocumentID: id, Title: out.Title})
	return out, true
}

// DeleteDocument removes the document. Deleting an absent id is a no-op and
// leaves the collection unchanged; ok reports whether a document was removed.
// The emitted event carries the deleted title (or a generic label when the
// title was empty) for the user-visible notification.
func (s *Store) DeleteDocument(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	title := s.docs[i].Title
	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: EventDocumentDeleted, DocumentID: id, Title: title})
	return true
}

// DuplicateDocument clones a document under a new id with a copy-marker
// title, a fresh date and lastModified, and a new id for every exercise, so
// per-exercise operations on the copy never touch the original. The copy is
// inserted at the head and marked as recently duplicated for one highlight
// window.
func (s *Store) DuplicateDocument(id string) (models.Document, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Document{}, false
	}
	dup := s.docs[i].Clone()
	dup.ID = s.newID(docIDPrefix)
	dup.Title = s.docs[i].Title + " (Copy)"
	dup.Date = s.today()
	dup.LastModified = s.timestamp()
	for j := range dup.Exercises {
		dup.Exercises[j].ID = s.newID(exerciseIDPrefix)
	}
	s.docs = append([]models.Document{dup}, s.docs...)
	s.markDuplicatedLocked(dup.ID)
	out := dup.Clone()
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: EventDocumentDuplicated, DocumentID: out.ID, Title: out.Title})
	return out, true
}

// AddExercise appends an exercise with a generated id to the target document
// and refreshes its lastModified.
func (s *Store) AddExercise(docID string, in models.NewExerciseInput) (models.Exercise, bool) {
	s.mu.Lock()
	i := s.indexLocked(docID)
	if i < 0 {
		s.mu.Unlock()
		return models.Exercise{}, false
	}
	ex := models.Exercise{
		ID:         s.newID(exerciseIDPrefix),
		Title:      in.Title,
		Difficulty: in.Difficulty,
		Content:    in.Content,
		Keywords:   append([]string(nil), in.Keywords...),
	}
	s.docs[i].Exercises = append(s.docs[i].Exercises, ex)
	s.docs[i].LastModified = s.timestamp()
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: EventExerciseAdded, DocumentID: docID, ExerciseID: ex.ID, Title: ex.Title})
	return ex.Clone(), true
}

// UpdateExercise merges the patch into the matching exercise and refreshes
// the parent's lastModified.
func (s *Store) UpdateExercise(docID, exerciseID string, patch models.ExercisePatch) (models.Exercise, bool) {
	s.mu.Lock()
	i := s.indexLocked(docID)
	if i < 0 {
		s.mu.Unlock()
		return models.Exercise{}, false
	}
	j := s.docs[i].FindExercise(exerciseID)
	if j < 0 {
		s.mu.Unlock()
		return models.Exercise{}, false
	}
	patch.Apply(&s.docs[i].Exercises[j])
	s.docs[i].LastModified = s.timestamp()
	out := s.docs[i].Exercises[j].Clone()
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: EventExerciseUpdated, DocumentID: docID, ExerciseID: exerciseID, Title: out.Title})
	return out, true
}

// DeleteExercise removes the exercise by id and refreshes the parent's
// lastModified. A missing document or exercise id is a no-op.
func (s *Store) DeleteExercise(docID, exerciseID string) bool {
	s.mu.Lock()
	i := s.indexLocked(docID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	j := s.docs[i].FindExercise(exerciseID)
	if j < 0 {
		s.mu.Unlock()
		return false
	}
	s.docs[i].Exercises = append(s.docs[i].Exercises[:j], s.docs[i].Exercises[j+1:]...)
	s.docs[i].LastModified = s.timestamp()
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: EventExerciseDeleted, DocumentID: docID, ExerciseID: exerciseID})
	return true
}

// ReorderExercises removes the exercise at from and reinserts it at to,
// splice style: indices address the current order. Out-of-range indices are
// clamped into the valid range rather than rejected; reordering an empty
// list or a missing document is a no-op.
func (s *Store) ReorderExercises(docID string, from, to int) bool {
	s.mu.Lock()
	i := s.indexLocked(docID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	exs := s.docs[i].Exercises
	n := len(exs)
	if n == 0 {
		s.mu.Unlock()
		return false
	}
	from = clamp(from, 0, n-1)
	to = clamp(to, 0, n-1)
	if from != to {
		moved := exs[from]
		exs = append(exs[:from], exs[from+1:]...)
		rest := append([]models.Exercise{}, exs[to:]...)
		exs = append(append(exs[:to], moved), rest...)
		s.docs[i].Exercises = exs
	}
	s.docs[i].LastModified = s.timestamp()
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Kind: EventExercisesReordered, DocumentID: docID})
	return true
}

// snapshotLocked deep-copies the collection. Callers hold s.mu.
func (s *Store) snapshotLocked() []models.Document {
	out := make([]models.Document, len(s.docs))
	for i, d := range s.docs {
		out[i] = d.Clone()
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	for i, d := range s.docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the whole collection through to storage. Write-through
// is best effort: a failure is logged and the in-memory state remains the
// authority for the session. Callers hold s.mu.
func (s *Store) persistLocked() {
	if err := s.provider.SaveDocuments(s.snapshotLocked()); err != nil {
		s.logger.Error("docstore: persist failed", slog.String("error", err.Error()))
	}
}

func (s *Store) markDuplicatedLocked(id string) {
	s.duplicatedID = id
	if s.dupTimer != nil {
		s.dupTimer.Stop()
	}
	s.dupTimer = time.AfterFunc(s.duplicateMark, func() {
		s.mu.Lock()
		if s.duplicatedID == id {
			s.duplicatedID = ""
		}
		s.mu.Unlock()
	})
}

func (s *Store) notify(ev Event) {
	s.mu.Lock()
	listeners := make([]func(Event), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// newID returns a time-based id with a random suffix, unique across the
// process lifetime even when two ids land in the same millisecond.
func (s *Store) newID(prefix string) string {
	entropy := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return fmt.Sprintf("%s_%d_%s", prefix, s.now().UnixMilli(), entropy)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func (s *Store) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
