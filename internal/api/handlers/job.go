package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/srt-studio/backend/internal/job"
	"github.com/srt-studio/backend/internal/pipeline"
	"github.com/srt-studio/backend/internal/storage"
)

type JobHandler struct {
	queue *job.JobQueue
	sink  *storage.FilesystemSink
}

func NewJobHandler(queue *job.JobQueue, sink *storage.FilesystemSink) *JobHandler {
	return &JobHandler{queue: queue, sink: sink}
}

// ListJobs returns all jobs
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.queue.ListJobs()
	if err != nil {
		jsonError(w, "failed to list jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []*job.Job{}
	}
	jsonResponse(w, jobs, http.StatusOK)
}

// GetJob returns a single job by ID
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.queue.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jsonResponse(w, j, http.StatusOK)
}

// CancelJob cancels a pending or running job
func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.queue.GetJob(id); err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	if err := h.queue.CancelJob(id); err != nil {
		jsonError(w, "failed to cancel job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RetryJob re-queues a failed or cancelled job
func (h *JobHandler) RetryJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.queue.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(j.FilePath); err != nil {
		jsonError(w, "uploaded file is no longer available", http.StatusGone)
		return
	}

	if err := h.queue.RetryJob(j.ID); err != nil {
		jsonError(w, "failed to retry job: "+err.Error(), http.StatusBadRequest)
		return
	}

	jsonResponse(w, map[string]string{"status": "retrying"}, http.StatusOK)
}

// Download serves the archive produced by a completed job
func (h *JobHandler) Download(w http.ResponseWriter, r *http.Request) {
	j, err := h.queue.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if j.Status != job.StatusCompleted || len(j.Result) == 0 {
		jsonError(w, "job has not completed", http.StatusConflict)
		return
	}

	var result pipeline.TranslateResult
	if err := json.Unmarshal(j.Result, &result); err != nil || result.ArchiveName == "" {
		jsonError(w, "job result is unreadable", http.StatusInternalServerError)
		return
	}

	serveOutput(w, r, h.sink, storage.StageTranslated, result.ArchiveName)
}
