package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/srt-studio/backend/internal/job"
	"github.com/srt-studio/backend/internal/storage"
)

// HandleJob runs a queued translation. Queued jobs use the stored or
// environment API keys; a per-request key is never persisted.
func (s *Service) HandleJob(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.TranslateParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	data, err := os.ReadFile(j.FilePath)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	content, err := storage.DecodeText(data)
	if err != nil {
		return err
	}

	req := TranslateRequest{
		Filename:     params.Filename,
		Content:      content,
		Languages:    params.Languages,
		Engine:       params.Engine,
		Preset:       params.Preset,
		CustomPrompt: params.CustomPrompt,
		PresetID:     params.PresetID,
	}

	log.Printf("[pipeline] job %s: translating %s into %v", j.ID, params.Filename, params.Languages)

	result, err := s.Translate(ctx, req, updateProgress)
	if err != nil {
		return err
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	j.Result = resultJSON
	updateProgress(1.0)
	return nil
}
