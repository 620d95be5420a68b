package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/villemin/feuille/internal/apperr"
	"github.com/villemin/feuille/internal/export"
	"github.com/villemin/feuille/internal/models"
)

// ExportData handles GET /api/documents/{id}/data: the single-document JSON
// export, which is also accepted back by the import endpoint.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := h.store.GetDocument(id)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", safeFilename(doc.Title)+".json"))
	writeJSON(w, http.StatusOK, doc)
}

// ImportDocuments handles POST /api/documents/import. The body is either a
// single document object or an array of documents; invalid entries are
// dropped silently and reported in the summary.
func (h *Handler) ImportDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	docs, err := decodeImportBody(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	summary := h.store.ImportDocuments(docs)
	writeJSON(w, http.StatusOK, summary)
}

// decodeImportBody accepts both shapes of the interchange format.
func decodeImportBody(body []byte) ([]models.Document, error) {
	var docs []models.Document
	if err := json.Unmarshal(body, &docs); err == nil {
		return docs, nil
	}
	var doc models.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return []models.Document{doc}, nil
}

// ExportHandler serves rendered export pages.
type ExportHandler struct {
	h        *Handler
	settings SettingsSource
}

// SettingsSource supplies the current settings to the export handler.
type SettingsSource interface {
	Get() models.Settings
}

// NewExportHandler creates the export handler.
func NewExportHandler(h *Handler, settings SettingsSource) *ExportHandler {
	return &ExportHandler{h: h, settings: settings}
}

// Export handles POST /api/documents/{id}/export. The body carries the
// export options (missing body means defaults); ?mode=print wraps the page
// with the auto-print trigger.
func (e *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	doc, ok := e.h.store.GetDocument(id)
	if !ok {
		writeError(w, apperr.ErrNotFound)
		return
	}

	opts := models.DefaultExportOptions()
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && err != io.EOF {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}
	if err := opts.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	settings := e.settings.Get()

	var page string
	var err error
	if r.URL.Query().Get("mode") == "print" {
		page, err = export.GeneratePrintable(doc, settings, opts)
	} else {
		page, err = export.Generate(doc, settings, opts)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// safeFilename reduces a title to something usable in a download name.
func safeFilename(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, title)
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		return "document"
	}
	return cleaned
}
