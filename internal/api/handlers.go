package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/villemin/feuille/internal/apperr"
	"github.com/villemin/feuille/internal/docstore"
	"github.com/villemin/feuille/internal/models"
)

// Handler holds the document and exercise route handlers.
type Handler struct {
	store *docstore.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *docstore.Store) *Handler {
	return &Handler{store: store}
}

// ListDocuments handles GET /api/documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.store.Documents()
	writeJSON(w, http.StatusOK, map[string]any{
		"documents":            docs,
		"total":                len(docs),
		"recentlyDuplicatedId": h.store.RecentlyDuplicatedID(),
	})
}

// GetDocument handles GET /api/documents/{id}.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := h.store.GetDocument(id)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /api/documents.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var in models.NewDocumentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := in.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	doc := h.store.AddDocument(in)
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PATCH /api/documents/{id}.
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var patch models.DocumentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	doc, ok := h.store.UpdateDocument(id, patch)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/{id}. Deletion is idempotent:
// removing an already-absent document still answers 204.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.DeleteDocument(id) {
		slog.Debug("delete of absent document", slog.String("id", id))
	}
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateDocument handles POST /api/documents/{id}/duplicate.
func (h *Handler) DuplicateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := h.store.DuplicateDocument(id)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// AddExercise handles POST /api/documents/{id}/exercises.
func (h *Handler) AddExercise(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := chi.URLParam(r, "id")
	var in models.NewExerciseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := in.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	ex, ok := h.store.AddExercise(id, in)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

// UpdateExercise handles PATCH /api/documents/{id}/exercises/{exerciseID}.
func (h *Handler) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := chi.URLParam(r, "id")
	exerciseID := chi.URLParam(r, "exerciseID")
	var patch models.ExercisePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	ex, ok := h.store.UpdateExercise(id, exerciseID, patch)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// DeleteExercise handles DELETE /api/documents/{id}/exercises/{exerciseID}.
// Idempotent like document deletion.
func (h *Handler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exerciseID := chi.URLParam(r, "exerciseID")
	h.store.DeleteExercise(id, exerciseID)
	w.WriteHeader(http.StatusNoContent)
}

// ReorderExercises handles POST /api/documents/{id}/exercises/reorder.
// Out-of-range indices are clamped by the store.
func (h *Handler) ReorderExercises(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if !h.store.ReorderExercises(id, req.From, req.To) {
		writeError(w, apperr.ErrNotFound)
		return
	}
	doc, _ := h.store.GetDocument(id)
	writeJSON(w, http.StatusOK, doc)
}
