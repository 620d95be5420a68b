package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/villemin/feuille/internal/docstore"
	"github.com/villemin/feuille/internal/extract"
	"github.com/villemin/feuille/internal/index"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Store    *docstore.Store
	Settings *docstore.SettingsStore
	Searcher index.ExerciseSearcher
	Queue    *extract.Queue
	Analyzer extract.Analyzer
	// SSEHandler, if non-nil, is mounted at GET /events inside the auth group.
	SSEHandler http.Handler
	// AuthEnabled and Token control Bearer auth on every route.
	AuthEnabled bool
	Token       string
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d.Store)
	eh := NewExportHandler(h, d.Settings)
	sh := NewSettingsHandler(d.Settings, d.Analyzer)
	xh := NewExtractHandler(d.Queue, d.Store, d.Settings)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(d.AuthEnabled, d.Token))

	// Documents CRUD.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Post("/documents/import", h.ImportDocuments)
	r.Get("/documents/{id}", h.GetDocument)
	r.Patch("/documents/{id}", h.UpdateDocument)
	r.Delete("/documents/{id}", h.DeleteDocument)
	r.Post("/documents/{id}/duplicate", h.DuplicateDocument)

	// Exercises.
	r.Post("/documents/{id}/exercises", h.AddExercise)
	r.Post("/documents/{id}/exercises/reorder", h.ReorderExercises)
	r.Patch("/documents/{id}/exercises/{exerciseID}", h.UpdateExercise)
	r.Delete("/documents/{id}/exercises/{exerciseID}", h.DeleteExercise)

	// Interchange + rendered export.
	r.Get("/documents/{id}/data", h.ExportData)
	r.Post("/documents/{id}/export", eh.Export)

	// Search.
	r.Get("/search", searchHandler(d.Searcher))

	// Settings + key verification.
	r.Get("/settings", sh.Get)
	r.Patch("/settings", sh.Update)
	r.Post("/settings/verify-key", sh.VerifyKey)

	// Extraction jobs.
	r.Post("/extract/jobs", xh.SubmitJob)
	r.Get("/extract/jobs/{jobID}", xh.GetJob)
	r.Post("/extract/jobs/{jobID}/apply", xh.ApplyJob)

	// SSE endpoint (protected by same auth middleware).
	if d.SSEHandler != nil {
		r.Get("/events", d.SSEHandler.ServeHTTP)
	}

	return r
}

// searchHandler serves GET /api/search.
func searchHandler(searcher index.ExerciseSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
			return
		}
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			limit = atoiOrZero(v)
		}
		results, err := searcher.Search(q, limit)
		if err != nil {
			slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		if results == nil {
			results = []index.SearchResult{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}

func atoiOrZero(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
