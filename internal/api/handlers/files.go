package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/srt-studio/backend/internal/storage"
)

// urlParam extracts and URL-decodes a chi route parameter
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}

// FilesHandler browses and serves the pipeline outputs
type FilesHandler struct {
	sink *storage.FilesystemSink
}

func NewFilesHandler(sink *storage.FilesystemSink) *FilesHandler {
	return &FilesHandler{sink: sink}
}

// ListOutputs lists the files of one stage, newest first
func (h *FilesHandler) ListOutputs(w http.ResponseWriter, r *http.Request) {
	stage, err := storage.ParseStage(urlParam(r, "stage"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	entries, err := h.sink.ListStage(stage)
	if err != nil {
		jsonError(w, "failed to list outputs", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"stage": stage,
		"files": entries,
	}, http.StatusOK)
}

func (h *FilesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		jsonError(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	results, err := h.sink.Search(q, 50)
	if err != nil {
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"query":   q,
		"results": results,
	}, http.StatusOK)
}

// Download serves one output file as an attachment
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	stage, err := storage.ParseStage(urlParam(r, "stage"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	name := urlParam(r, "name")
	if !storage.IsSubtitleFile(name) {
		jsonError(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	serveOutput(w, r, h.sink, stage, name)
}

func serveOutput(w http.ResponseWriter, r *http.Request, sink *storage.FilesystemSink, stage storage.Stage, name string) {
	path, err := sink.Path(stage, name)
	if err != nil {
		jsonError(w, "access denied", http.StatusForbidden)
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
