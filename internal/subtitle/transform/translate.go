package transform

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/srt-studio/backend/internal/subtitle/srt"
)

// ErrTranslatorUnavailable marks a translator that cannot run at all (for
// example, no API key). It is the only translator error that aborts a batch.
var ErrTranslatorUnavailable = errors.New("translator unavailable")

// Translator translates one piece of text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text, targetLang string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return f(ctx, text, targetLang)
}

// Report summarises one TranslateBlocks run.
type Report struct {
	Language string `json:"language"`
	Total    int    `json:"total"`
	Failed   []int  `json:"failed,omitempty"` // indexes of blocks left untranslated
}

// TranslateBlocks translates each block's text, one block at a time and in
// order, keeping index and timecode. A block whose translation fails keeps its
// original text and is listed in the report. Only ErrTranslatorUnavailable
// stops the run, and then no blocks are returned.
//
// The run is not cancellable part way through; ctx is handed to the
// translator unchanged. progress, if non-nil, receives the completed fraction.
func TranslateBlocks(ctx context.Context, tr Translator, blocks []srt.Block, targetLang string, progress func(float64)) ([]srt.Block, Report, error) {
	report := Report{Language: targetLang, Total: len(blocks)}
	out := make([]srt.Block, len(blocks))

	for i, b := range blocks {
		text, err := tr.Translate(ctx, b.Text, targetLang)
		if err != nil {
			if errors.Is(err, ErrTranslatorUnavailable) {
				return nil, report, fmt.Errorf("translate to %s: %w", targetLang, err)
			}
			log.Printf("[translate] %s block %d: %v (keeping original text)", targetLang, b.Index, err)
			text = b.Text
			report.Failed = append(report.Failed, b.Index)
		}
		out[i] = srt.Block{Index: b.Index, Timecode: b.Timecode, Text: text}
		if progress != nil {
			progress(float64(i+1) / float64(len(blocks)))
		}
	}
	return out, report, nil
}
