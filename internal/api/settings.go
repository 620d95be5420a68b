package api

import (
	"encoding/json"
	"net/http"

	"github.com/villemin/feuille/internal/docstore"
	"github.com/villemin/feuille/internal/extract"
	"github.com/villemin/feuille/internal/models"
)

// SettingsHandler serves the settings routes and key verification.
type SettingsHandler struct {
	settings *docstore.SettingsStore
	analyzer extract.Analyzer
}

// NewSettingsHandler creates the settings handler.
func NewSettingsHandler(settings *docstore.SettingsStore, analyzer extract.Analyzer) *SettingsHandler {
	return &SettingsHandler{settings: settings, analyzer: analyzer}
}

// redact hides the credential from read responses; only its presence is
// reported.
func redact(s models.Settings) map[string]any {
	return map[string]any{
		"language":    s.Language,
		"theme":       s.Theme,
		"teacherName": s.TeacherName,
		"schoolId":    s.SchoolID,
		"hasApiKey":   s.APIKey != "",
	}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, redact(h.settings.Get()))
}

// Update handles PATCH /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	updated, err := h.settings.Update(patch)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, redact(updated))
}

// VerifyKey handles POST /api/settings/verify-key. An empty body checks the
// stored key; a body with a key checks that one instead. The remote answer
// is returned as-is: a failure is a false verdict, never a 5xx.
func (h *SettingsHandler) VerifyKey(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		APIKey string `json:"apiKey"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	key := req.APIKey
	if key == "" {
		key = h.settings.Get().APIKey
	}

	valid := h.analyzer.VerifyKey(r.Context(), key)
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}
