// Package pipeline runs the subtitle operations end to end: it parses
// uploads, applies a transform, renders the result and hands it to a sink
// under the stage that produced it.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/srt-studio/backend/internal/storage"
	"github.com/srt-studio/backend/internal/subtitle/srt"
	"github.com/srt-studio/backend/internal/subtitle/transform"
	"github.com/srt-studio/backend/internal/subtitle/translate"
)

// EngineSource builds a translation engine by name. *translate.Registry
// implements it.
type EngineSource interface {
	Engine(name, apiKey string, opts translate.Options) (translate.Engine, error)
}

// PresetLookup returns the prompt of a saved custom preset.
type PresetLookup func(id int64) (string, error)

// Config wires a Service.
type Config struct {
	Sink          storage.Sink
	Engines       EngineSource
	Settings      translate.SettingsReader // optional, overrides the defaults below
	Presets       PresetLookup             // optional
	Policy        srt.Policy
	SourceLang    string
	DefaultEngine string
	Concurrency   int // languages translated at once
}

// Service runs pipeline operations against one sink
type Service struct {
	sink          storage.Sink
	engines       EngineSource
	settings      translate.SettingsReader
	presets       PresetLookup
	parser        srt.Parser
	sourceLang    string
	defaultEngine string
	concurrency   int
	now           func() time.Time
}

// NewService creates a pipeline service
func NewService(cfg Config) *Service {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	defaultEngine := cfg.DefaultEngine
	if defaultEngine == "" {
		defaultEngine = translate.EngineOpenAI
	}
	return &Service{
		sink:          cfg.Sink,
		engines:       cfg.Engines,
		settings:      cfg.Settings,
		presets:       cfg.Presets,
		parser:        srt.Parser{Policy: cfg.Policy},
		sourceLang:    cfg.SourceLang,
		defaultEngine: defaultEngine,
		concurrency:   concurrency,
		now:           time.Now,
	}
}

// ConvertResult is the outcome of a plain-text import
type ConvertResult struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Blocks   int    `json:"blocks"`
	SavedTo  string `json:"saved_to"`
}

// Convert turns plain text, one cue per non-empty line, into subtitle text
// saved as <base>.srt.
func (s *Service) Convert(name, content string) (*ConvertResult, error) {
	blocks := srt.FromPlainText(content)
	if len(blocks) == 0 {
		return nil, srt.NewInputError("no text lines found in file")
	}
	out := srt.Render(blocks)
	filename := outputBase(name) + ".srt"
	if _, err := s.sink.Write(storage.StageConverted, filename, []byte(out)); err != nil {
		return nil, fmt.Errorf("save converted file: %w", err)
	}
	log.Printf("[pipeline] converted %s: %d blocks", name, len(blocks))
	return &ConvertResult{
		Filename: filename,
		Content:  out,
		Blocks:   len(blocks),
		SavedTo:  string(storage.StageConverted),
	}, nil
}

// DuplicateResult lists the copies written by Duplicate
type DuplicateResult struct {
	Files   []transform.Copy `json:"files"`
	SavedTo string           `json:"saved_to"`
}

// Duplicate saves count copies of content.
func (s *Service) Duplicate(name, content string, count int) (*DuplicateResult, error) {
	copies, err := transform.Duplicate(content, outputBase(name)+".srt", count)
	if err != nil {
		return nil, err
	}
	for _, c := range copies {
		if _, err := s.sink.Write(storage.StageDuplicated, c.Filename, []byte(c.Content)); err != nil {
			return nil, fmt.Errorf("save copy: %w", err)
		}
	}
	log.Printf("[pipeline] duplicated %s x%d", name, len(copies))
	if copies == nil {
		copies = []transform.Copy{}
	}
	return &DuplicateResult{Files: copies, SavedTo: string(storage.StageDuplicated)}, nil
}

// ReplaceResult is the outcome of a word or speaker replacement
type ReplaceResult struct {
	Filename string         `json:"filename"`
	Content  string         `json:"content"`
	Counts   map[string]int `json:"replacement_count"`
	SavedTo  string         `json:"saved_to"`
}

// ReplaceWords applies pairs and saves the result as <base>_modified.srt.
func (s *Service) ReplaceWords(name, content string, pairs []transform.Replacement) (*ReplaceResult, error) {
	return s.replace(storage.StageWordsReplaced, "_modified", name, content, pairs)
}

// ReplaceSpeakers applies speaker name pairs and saves the result as
// <base>_speaker_changed.srt.
func (s *Service) ReplaceSpeakers(name, content string, pairs []transform.Replacement) (*ReplaceResult, error) {
	return s.replace(storage.StageSpeakersReplaced, "_speaker_changed", name, content, pairs)
}

func (s *Service) replace(stage storage.Stage, suffix, name, content string, pairs []transform.Replacement) (*ReplaceResult, error) {
	if content == "" {
		return nil, srt.NewInputError("subtitle content is empty")
	}
	if !hasReplacement(pairs) {
		return nil, srt.NewInputError("no replacements given")
	}
	out, counts := transform.Replace(content, pairs)
	filename := outputBase(name) + suffix + ".srt"
	if _, err := s.sink.Write(stage, filename, []byte(out)); err != nil {
		return nil, fmt.Errorf("save %s: %w", stage, err)
	}
	log.Printf("[pipeline] %s %s: %v", stage, name, counts)
	return &ReplaceResult{
		Filename: filename,
		Content:  out,
		Counts:   counts,
		SavedTo:  string(stage),
	}, nil
}

// outputBase is the stem every output derived from name is stored under.
// It is already in the sink's safe form, so the names reported back match
// the files on disk.
func outputBase(name string) string {
	base := storage.SecureFilename(transform.BaseName(name))
	if base == "" {
		return "subtitle"
	}
	return base
}

func hasReplacement(pairs []transform.Replacement) bool {
	for _, p := range pairs {
		if p.Old != "" {
			return true
		}
	}
	return false
}

// TranslateRequest describes one translation run
type TranslateRequest struct {
	Filename     string
	Content      string
	Languages    []string
	Engine       string // empty selects the configured default
	Preset       string
	CustomPrompt string
	PresetID     int64  // saved custom prompt, replaces Preset and CustomPrompt
	APIKey       string // overrides stored and environment keys
}

// LanguageOutput is one translated file inside the archive
type LanguageOutput struct {
	Language string `json:"language"`
	Filename string `json:"filename"`
}

// TranslateResult is the outcome of Translate. Archive holds the zip bytes
// and is not serialized.
type TranslateResult struct {
	ArchiveName string             `json:"archive_name"`
	SavedTo     string             `json:"saved_to"`
	Engine      string             `json:"engine"`
	Files       []LanguageOutput   `json:"files"`
	Reports     []transform.Report `json:"reports"`
	Skipped     []*srt.ParseError  `json:"-"`
	SkippedText []string           `json:"skipped,omitempty"`
	Archive     []byte             `json:"-"`
	Outputs     map[string][]byte  `json:"-"` // rendered subtitle per language
}

// Translate parses the request content, translates it into each language
// and saves <base>_<lang>.srt files zipped as one archive under the
// translated stage. Languages run in parallel up to the configured
// concurrency; blocks within a language stay sequential.
func (s *Service) Translate(ctx context.Context, req TranslateRequest, updateProgress func(float64)) (*TranslateResult, error) {
	if req.Content == "" {
		return nil, srt.NewInputError("subtitle content is empty")
	}
	langs := translate.FilterSupported(req.Languages)
	if len(langs) == 0 {
		return nil, srt.NewInputError("no target languages selected")
	}

	blocks, skipped, err := s.parser.Parse(req.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.Filename, err)
	}
	if len(blocks) == 0 {
		return nil, srt.NewInputError("no valid subtitle blocks found")
	}
	for _, perr := range skipped {
		log.Printf("[pipeline] %s: skipped %v", req.Filename, perr)
	}

	if req.PresetID != 0 {
		if s.presets == nil {
			return nil, fmt.Errorf("preset %d: no preset store configured", req.PresetID)
		}
		prompt, err := s.presets(req.PresetID)
		if err != nil {
			return nil, fmt.Errorf("load preset %d: %w", req.PresetID, err)
		}
		req.Preset = "custom"
		req.CustomPrompt = prompt
	}

	engineName := req.Engine
	if engineName == "" {
		engineName = s.setting("translate_engine", s.defaultEngine)
	}
	engine, err := s.engines.Engine(engineName, req.APIKey, translate.Options{
		SourceLang:   s.setting("source_lang", s.sourceLang),
		Preset:       req.Preset,
		CustomPrompt: req.CustomPrompt,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[pipeline] translating %s: %d blocks, engine=%s, languages=%v (%d concurrent)",
		req.Filename, len(blocks), engine.Name(), langs, s.concurrency)

	type langResult struct {
		blocks []srt.Block
		report transform.Report
		err    error
	}

	results := make([]langResult, len(langs))
	fractions := make([]float64, len(langs))
	var (
		progressMu   sync.Mutex
		lastProgress float64
	)
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, lang := range langs {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, lang string) {
			defer wg.Done()
			defer func() { <-sem }()

			// Reported under the lock so concurrent languages never send
			// a lower average after a higher one
			progress := func(f float64) {
				if updateProgress == nil {
					return
				}
				progressMu.Lock()
				defer progressMu.Unlock()
				fractions[idx] = f
				total := 0.0
				for _, v := range fractions {
					total += v
				}
				avg := total / float64(len(fractions))
				if avg > lastProgress {
					lastProgress = avg
					updateProgress(avg)
				}
			}

			out, report, err := transform.TranslateBlocks(ctx, engine, blocks, lang, progress)
			results[idx] = langResult{blocks: out, report: report, err: err}
			log.Printf("[pipeline] %s: %s done (%d/%d blocks degraded)", req.Filename, lang, len(report.Failed), report.Total)
		}(i, lang)
	}

	wg.Wait()

	base := outputBase(req.Filename)
	result := &TranslateResult{
		Engine:  engine.Name(),
		Skipped: skipped,
		Outputs: make(map[string][]byte, len(langs)),
	}
	for _, perr := range skipped {
		result.SkippedText = append(result.SkippedText, perr.Error())
	}

	files := make([]storage.ArchiveFile, 0, len(langs))
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		name := fmt.Sprintf("%s_%s.srt", base, langs[i])
		rendered := []byte(srt.Render(r.blocks))
		files = append(files, storage.ArchiveFile{Name: name, Content: rendered})
		result.Files = append(result.Files, LanguageOutput{Language: langs[i], Filename: name})
		result.Reports = append(result.Reports, r.report)
		result.Outputs[langs[i]] = rendered
	}

	archive, err := storage.ZipBytes(files)
	if err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}
	result.Archive = archive
	result.ArchiveName = storage.ArchiveName(base, s.now())

	savedTo, err := s.sink.Write(storage.StageTranslated, result.ArchiveName, archive)
	if err != nil {
		return nil, fmt.Errorf("save archive: %w", err)
	}
	result.SavedTo = savedTo

	log.Printf("[pipeline] translation complete: %s", result.ArchiveName)
	return result, nil
}

func (s *Service) setting(key, defaultVal string) string {
	if s.settings == nil {
		return defaultVal
	}
	return s.settings.GetSetting(key, defaultVal)
}
