package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/srt-studio/backend/internal/db"
)

// maxPresetPrompt bounds the instructions appended to every system prompt
const maxPresetPrompt = 4000

// PresetsHandler manages saved custom prompts. A job or sync translate
// refers to one with preset_id.
type PresetsHandler struct {
	database *db.Database
}

func NewPresetsHandler(database *db.Database) *PresetsHandler {
	return &PresetsHandler{database: database}
}

type presetRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// validate trims the request and reports the first problem with it
func (p *presetRequest) validate() string {
	p.Name = strings.TrimSpace(p.Name)
	p.Prompt = strings.TrimSpace(p.Prompt)
	switch {
	case p.Name == "" || p.Prompt == "":
		return "name and prompt are required"
	case utf8.RuneCountInString(p.Prompt) > maxPresetPrompt:
		return "prompt is too long"
	}
	return ""
}

func (h *PresetsHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.database.ListTranslationPresets()
	if err != nil {
		jsonError(w, "failed to list presets: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, presets, http.StatusOK)
}

func (h *PresetsHandler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}

	id, err := h.database.CreateTranslationPreset(req.Name, req.Prompt)
	if err != nil {
		jsonError(w, "failed to create preset: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, db.TranslationPreset{ID: id, Name: req.Name, Prompt: req.Prompt}, http.StatusCreated)
}

func (h *PresetsHandler) UpdatePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "preset")
	if !ok {
		return
	}
	var req presetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}

	err := h.database.UpdateTranslationPreset(id, req.Name, req.Prompt)
	if errors.Is(err, sql.ErrNoRows) {
		jsonError(w, "preset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to update preset: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, db.TranslationPreset{ID: id, Name: req.Name, Prompt: req.Prompt}, http.StatusOK)
}

func (h *PresetsHandler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "preset")
	if !ok {
		return
	}
	err := h.database.DeleteTranslationPreset(id)
	if errors.Is(err, sql.ErrNoRows) {
		jsonError(w, "preset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to delete preset: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
