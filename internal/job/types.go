package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobTranslate JobType = "translate"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued translation run
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	FilePath    string          `json:"file_path"` // uploaded source file
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// TranslateParams are parameters for a translation job
type TranslateParams struct {
	Filename     string   `json:"filename"`                // original upload name
	Languages    []string `json:"languages"`               // "en", "ja", ...
	Engine       string   `json:"engine"`                  // "openai", "gemini", "deepl"
	Preset       string   `json:"preset"`                  // "anime", "movie", "documentary", "custom"
	CustomPrompt string   `json:"custom_prompt,omitempty"` // used with preset "custom"
	PresetID     int64    `json:"preset_id,omitempty"`     // saved custom prompt
}

// JobHandler processes a job. The pipeline service provides the implementation.
type JobHandler func(ctx context.Context, job *Job, updateProgress func(float64)) error
