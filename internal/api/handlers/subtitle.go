package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/srt-studio/backend/internal/job"
	"github.com/srt-studio/backend/internal/pipeline"
	"github.com/srt-studio/backend/internal/storage"
	"github.com/srt-studio/backend/internal/subtitle/transform"
	"github.com/srt-studio/backend/internal/subtitle/translate"
)

type SubtitleHandler struct {
	svc       *pipeline.Service
	queue     *job.JobQueue
	uploadDir string
	maxUpload int64
}

func NewSubtitleHandler(svc *pipeline.Service, queue *job.JobQueue, uploadDir string, maxUpload int64) *SubtitleHandler {
	return &SubtitleHandler{svc: svc, queue: queue, uploadDir: uploadDir, maxUpload: maxUpload}
}

// translateForm is the multipart form shared by the sync and queued translate routes
type translateForm struct {
	filename     string
	data         []byte
	languages    []string
	engine       string
	preset       string
	customPrompt string
	presetID     int64
	apiKey       string
}

// readUpload reads one uploaded file from a multipart form
func (h *SubtitleHandler) readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return "", nil, fmt.Errorf("upload too large or malformed (max %d MB)", h.maxUpload>>20)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("no file uploaded (%s)", field)
	}
	defer file.Close()

	if header.Filename == "" {
		return "", nil, fmt.Errorf("no file selected")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

func (h *SubtitleHandler) parseTranslateForm(w http.ResponseWriter, r *http.Request) (*translateForm, error) {
	name, data, err := h.readUpload(w, r, "srt_file")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(name), ".srt") {
		return nil, fmt.Errorf("only .srt files are supported")
	}

	f := &translateForm{
		filename:     name,
		data:         data,
		engine:       r.FormValue("engine"),
		preset:       r.FormValue("preset"),
		customPrompt: r.FormValue("custom_prompt"),
		apiKey:       strings.TrimSpace(r.FormValue("api_key")),
	}
	// languages[] (checkbox form) or languages=en,ja
	for _, field := range []string{"languages[]", "languages"} {
		for _, v := range r.MultipartForm.Value[field] {
			for _, code := range strings.Split(v, ",") {
				if code = strings.TrimSpace(code); code != "" {
					f.languages = append(f.languages, code)
				}
			}
		}
	}
	if v := r.FormValue("preset_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid preset ID")
		}
		f.presetID = id
	}
	return f, nil
}

// Translate translates an uploaded subtitle file and returns the zip archive
func (h *SubtitleHandler) Translate(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseTranslateForm(w, r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	content, err := storage.DecodeText(form.data)
	if err != nil {
		pipelineError(w, err)
		return
	}

	result, err := h.svc.Translate(r.Context(), pipeline.TranslateRequest{
		Filename:     form.filename,
		Content:      content,
		Languages:    form.languages,
		Engine:       form.engine,
		Preset:       form.preset,
		CustomPrompt: form.customPrompt,
		PresetID:     form.presetID,
		APIKey:       form.apiKey,
	}, nil)
	if err != nil {
		pipelineError(w, err)
		return
	}

	degraded := 0
	for _, rep := range result.Reports {
		degraded += len(rep.Failed)
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.ArchiveName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Archive)))
	w.Header().Set("X-Degraded-Blocks", strconv.Itoa(degraded))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Archive)
}

// EnqueueTranslate stores the upload and queues a translation job
func (h *SubtitleHandler) EnqueueTranslate(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseTranslateForm(w, r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if form.apiKey != "" {
		jsonError(w, "api_key is not accepted for queued jobs; save the key in settings", http.StatusBadRequest)
		return
	}
	if len(translate.FilterSupported(form.languages)) == 0 {
		jsonError(w, "no target languages selected", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		jsonError(w, "failed to prepare upload directory", http.StatusInternalServerError)
		return
	}
	path := filepath.Join(h.uploadDir, uuid.New().String()+"_"+storage.SecureFilename(form.filename))
	if err := os.WriteFile(path, form.data, 0644); err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	j, err := h.queue.Enqueue(job.JobTranslate, path, job.TranslateParams{
		Filename:     form.filename,
		Languages:    form.languages,
		Engine:       form.engine,
		Preset:       form.preset,
		CustomPrompt: form.customPrompt,
		PresetID:     form.presetID,
	})
	if err != nil {
		os.Remove(path)
		jsonError(w, "failed to queue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("[api] queued translation job %s for %s", j.ID, form.filename)
	jsonResponse(w, j, http.StatusAccepted)
}

// Convert turns an uploaded plain-text file into subtitle blocks
func (h *SubtitleHandler) Convert(w http.ResponseWriter, r *http.Request) {
	name, data, err := h.readUpload(w, r, "txt_file")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(filepath.Ext(name), ".txt") {
		jsonError(w, "only .txt files are supported", http.StatusBadRequest)
		return
	}
	content, err := storage.DecodeText(data)
	if err != nil {
		pipelineError(w, err)
		return
	}

	result, err := h.svc.Convert(name, content)
	if err != nil {
		pipelineError(w, err)
		return
	}
	jsonResponse(w, result, http.StatusOK)
}

type duplicateRequest struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	Count    int    `json:"count"`
}

// Duplicate saves numbered copies of the posted content
func (h *SubtitleHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	var req duplicateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Filename == "" {
		req.Filename = "subtitle.srt"
	}

	result, err := h.svc.Duplicate(req.Filename, req.Content, req.Count)
	if err != nil {
		pipelineError(w, err)
		return
	}
	jsonResponse(w, result, http.StatusOK)
}

type replaceRequest struct {
	Content      string                  `json:"content"`
	Filename     string                  `json:"filename"`
	Replacements []transform.Replacement `json:"replacements"`
}

func (h *SubtitleHandler) replace(w http.ResponseWriter, r *http.Request,
	fn func(name, content string, pairs []transform.Replacement) (*pipeline.ReplaceResult, error)) {
	var req replaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Filename == "" {
		req.Filename = "subtitle.srt"
	}

	result, err := fn(req.Filename, req.Content, req.Replacements)
	if err != nil {
		pipelineError(w, err)
		return
	}
	jsonResponse(w, result, http.StatusOK)
}

// ReplaceWords applies word substitutions to the posted content
func (h *SubtitleHandler) ReplaceWords(w http.ResponseWriter, r *http.Request) {
	h.replace(w, r, h.svc.ReplaceWords)
}

// ReplaceSpeakers applies speaker name substitutions to the posted content
func (h *SubtitleHandler) ReplaceSpeakers(w http.ResponseWriter, r *http.Request) {
	h.replace(w, r, h.svc.ReplaceSpeakers)
}
