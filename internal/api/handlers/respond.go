package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/srt-studio/backend/internal/subtitle/srt"
	"github.com/srt-studio/backend/internal/subtitle/transform"
)

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// decodeJSON reads the request body into v and writes the error response
// itself when that fails
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	jsonError(w, "invalid request body", http.StatusBadRequest)
	return false
}

// pathID parses a numeric URL parameter
func pathID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, "invalid "+what+" ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// pipelineError maps errors from the pipeline to responses. Input and parse
// errors are the caller's fault; a missing API key is a configuration
// problem the user can fix in settings.
func pipelineError(w http.ResponseWriter, err error) {
	var (
		inputErr *srt.InputError
		parseErr *srt.ParseError
	)
	switch {
	case errors.As(err, &inputErr):
		jsonError(w, inputErr.Reason, http.StatusBadRequest)
	case errors.As(err, &parseErr):
		jsonError(w, "invalid subtitle file: "+parseErr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, transform.ErrTranslatorUnavailable):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Printf("[api] pipeline error: %v", err)
		jsonError(w, "internal error: "+err.Error(), http.StatusInternalServerError)
	}
}
