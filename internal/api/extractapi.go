package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/villemin/feuille/internal/apperr"
	"github.com/villemin/feuille/internal/docstore"
	"github.com/villemin/feuille/internal/extract"
)

const maxExtractUpload = 50 << 20 // whole multipart batch

// ExtractHandler serves the extraction job routes.
type ExtractHandler struct {
	queue    *extract.Queue
	store    *docstore.Store
	settings SettingsSource
}

// NewExtractHandler creates the extraction handler.
func NewExtractHandler(queue *extract.Queue, store *docstore.Store, settings SettingsSource) *ExtractHandler {
	return &ExtractHandler{queue: queue, store: store, settings: settings}
}

// SubmitJob handles POST /api/extract/jobs. The multipart form carries one
// or more "images" files plus the boolean option fields. Submitting without
// a configured API key is refused up front with 412: the client is expected
// to show a blocking credential prompt, not a transient error.
func (h *ExtractHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if h.settings.Get().APIKey == "" {
		writeJSON(w, http.StatusPreconditionFailed, errorBody("api key is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxExtractUpload)
	if err := r.ParseMultipartForm(maxExtractUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart body"))
		return
	}

	opts := extract.AnalysisOptions{
		BoldKeywords: formBool(r, "boldKeywords"),
		ReviseText:   formBool(r, "reviseText"),
		SuggestHints: formBool(r, "suggestHints"),
	}

	var images []extract.Image
	for _, fh := range r.MultipartForm.File["images"] {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
			return
		}
		mimeType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(mimeType, "image/") {
			writeJSON(w, http.StatusBadRequest, errorBody("only image uploads are accepted"))
			return
		}
		images = append(images, extract.Image{
			Filename: fh.Filename,
			MimeType: mimeType,
			Data:     data,
		})
	}

	jobID, err := h.queue.Submit(images, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("extraction job submitted", slog.String("job_id", jobID), slog.Int("images", len(images)))
	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

// GetJob handles GET /api/extract/jobs/{jobID}: queryable batch progress.
func (h *ExtractHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, ok := h.queue.Snapshot(jobID)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ApplyJob handles POST /api/extract/jobs/{jobID}/apply: every successful
// draft in the batch becomes an exercise of the target document. Failed
// items are left behind for inspection.
func (h *ExtractHandler) ApplyJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	jobID := chi.URLParam(r, "jobID")

	var req struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("documentId is required"))
		return
	}

	job, ok := h.queue.Snapshot(jobID)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	if !job.Done {
		writeJSON(w, http.StatusConflict, errorBody("job still running"))
		return
	}

	added := 0
	for _, item := range job.Items {
		if item.Status != extract.StatusSuccess || item.Draft == nil {
			continue
		}
		if _, ok := h.store.AddExercise(req.DocumentID, item.Draft.NewExerciseInput()); !ok {
			writeJSON(w, http.StatusNotFound, errorBody("document not found"))
			return
		}
		added++
	}

	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func formBool(r *http.Request, field string) bool {
	v := r.FormValue(field)
	return v == "true" || v == "1" || v == "on"
}
