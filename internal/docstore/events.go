package docstore

// Event kinds emitted after each applied mutation.
const (
	EventDocumentCreated    = "document.created"
	EventDocumentUpdated    = "document.updated"
	EventDocumentDeleted    = "document.deleted"
	EventDocumentDuplicated = "document.duplicated"
	EventExerciseAdded      = "exercise.added"
	EventExerciseUpdated    = "exercise.updated"
	EventExerciseDeleted    = "exercise.deleted"
	EventExercisesReordered = "exercises.reordered"
	EventDocumentsImported  = "documents.imported"
	EventReloaded           = "store.reloaded"
)

// Event describes one applied store mutation. Title is filled where a
// user-visible notification wants a display name (deletion, duplication).
type Event struct {
	Kind       string `json:"kind"`
	DocumentID string `json:"documentId,omitempty"`
	ExerciseID string `json:"exerciseId,omitempty"`
	Title      string `json:"title,omitempty"`
}
