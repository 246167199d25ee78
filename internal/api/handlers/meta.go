package handlers

import (
	"net/http"

	"github.com/srt-studio/backend/internal/subtitle/translate"
)

type MetaHandler struct {
	registry *translate.Registry
}

func NewMetaHandler(registry *translate.Registry) *MetaHandler {
	return &MetaHandler{registry: registry}
}

func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Languages lists the translation targets and which engines have a key
func (h *MetaHandler) Languages(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"languages": translate.Languages,
		"engines":   h.registry.Configured(),
	}, http.StatusOK)
}
