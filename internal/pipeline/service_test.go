package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/srt-studio/backend/internal/job"
	"github.com/srt-studio/backend/internal/storage"
	"github.com/srt-studio/backend/internal/subtitle/srt"
	"github.com/srt-studio/backend/internal/subtitle/transform"
	"github.com/srt-studio/backend/internal/subtitle/translate"
)

const sample = "1\n00:00:01,000 --> 00:00:02,000\n안녕\n\n2\n00:00:02,000 --> 00:00:03,000\n실패\n\n3\n00:00:03,000 --> 00:00:04,000\n잘가\n"

// fakeEngine prefixes text with the target language and fails on "실패" for ja.
type fakeEngine struct {
	name string
	opts translate.Options
	err  error
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Translate(ctx context.Context, text, lang string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if lang == "ja" && text == "실패" {
		return "", errors.New("quota exceeded")
	}
	return "[" + lang + "] " + text, nil
}

type fakeEngines struct {
	mu   sync.Mutex
	last *fakeEngine
	err  error // returned by every Translate call
}

func (f *fakeEngines) Engine(name, apiKey string, opts translate.Options) (translate.Engine, error) {
	if name != "openai" && name != "deepl" {
		return nil, srt.NewInputError("unknown translation engine: " + name)
	}
	e := &fakeEngine{name: name, opts: opts, err: f.err}
	f.mu.Lock()
	f.last = e
	f.mu.Unlock()
	return e, nil
}

type fakeSettings map[string]string

func (f fakeSettings) GetSetting(key, defaultVal string) string {
	if v, ok := f[key]; ok && v != "" {
		return v
	}
	return defaultVal
}

func newTestService(t *testing.T, cfg Config) (*Service, *storage.MemorySink, *fakeEngines) {
	t.Helper()
	sink := storage.NewMemorySink()
	engines := &fakeEngines{}
	cfg.Sink = sink
	if cfg.Engines == nil {
		cfg.Engines = engines
	}
	s := NewService(cfg)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return s, sink, engines
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = string(b)
	}
	return files
}

func TestConvert(t *testing.T) {
	s, sink, _ := newTestService(t, Config{})

	res, err := s.Convert("lines.txt", "hi\n\nthere\n")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:02,000\nhi\n\n2\n00:00:02,000 --> 00:00:04,000\nthere\n"
	if res.Content != want {
		t.Errorf("content = %q", res.Content)
	}
	if res.Filename != "lines.srt" || res.Blocks != 2 || res.SavedTo != "converted" {
		t.Errorf("result = %+v", res)
	}
	if got, ok := sink.Get(storage.StageConverted, "lines.srt"); !ok || string(got) != want {
		t.Errorf("sink = %q, %v", got, ok)
	}

	if _, err := s.Convert("empty.txt", " \n\n"); !srt.IsInputError(err) {
		t.Errorf("empty convert err = %v", err)
	}
}

func TestDuplicate(t *testing.T) {
	s, sink, _ := newTestService(t, Config{})

	res, err := s.Duplicate("ep01.srt", "X", 3)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files = %+v", res.Files)
	}
	want := []string{"ep01_copy1.srt", "ep01_copy2.srt", "ep01_copy3.srt"}
	if got := sink.Names(storage.StageDuplicated); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("stored = %v", got)
	}

	res, err = s.Duplicate("ep01.srt", "X", 0)
	if err != nil || len(res.Files) != 0 {
		t.Errorf("count 0 = %+v, %v", res, err)
	}
	if _, err := s.Duplicate("ep01.srt", "", 2); !srt.IsInputError(err) {
		t.Errorf("empty content err = %v", err)
	}
}

func TestReplace(t *testing.T) {
	s, sink, _ := newTestService(t, Config{})

	res, err := s.ReplaceWords("ep01.srt", "cat cat bird", []transform.Replacement{{Old: "cat", New: "dog"}})
	if err != nil {
		t.Fatalf("ReplaceWords: %v", err)
	}
	if res.Content != "dog dog bird" || res.Counts["cat"] != 2 || res.Filename != "ep01_modified.srt" {
		t.Errorf("words = %+v", res)
	}
	if _, ok := sink.Get(storage.StageWordsReplaced, "ep01_modified.srt"); !ok {
		t.Error("words output not stored")
	}

	res, err = s.ReplaceSpeakers("ep01.srt", "철수: 안녕", []transform.Replacement{{Old: "철수", New: "Chulsoo"}})
	if err != nil {
		t.Fatalf("ReplaceSpeakers: %v", err)
	}
	if res.Content != "Chulsoo: 안녕" || res.Filename != "ep01_speaker_changed.srt" || res.SavedTo != "speakers-replaced" {
		t.Errorf("speakers = %+v", res)
	}

	if _, err := s.ReplaceWords("a.srt", "text", []transform.Replacement{{Old: "", New: "x"}}); !srt.IsInputError(err) {
		t.Errorf("no pairs err = %v", err)
	}
	if _, err := s.ReplaceWords("a.srt", "", []transform.Replacement{{Old: "a", New: "b"}}); !srt.IsInputError(err) {
		t.Errorf("empty content err = %v", err)
	}
}

func TestTranslate(t *testing.T) {
	s, sink, _ := newTestService(t, Config{Concurrency: 2})

	var mu sync.Mutex
	var maxProgress float64
	res, err := s.Translate(context.Background(), TranslateRequest{
		Filename:  "ep01.srt",
		Content:   sample,
		Languages: []string{"en", "ja", "xx", "en"},
	}, func(p float64) {
		mu.Lock()
		if p > maxProgress {
			maxProgress = p
		}
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if res.ArchiveName != "ep01_translated_20260314_093000.zip" {
		t.Errorf("archive name = %s", res.ArchiveName)
	}
	if res.Engine != "openai" {
		t.Errorf("engine = %s", res.Engine)
	}
	if len(res.Reports) != 2 || len(res.Reports[0].Failed) != 0 || fmt.Sprint(res.Reports[1].Failed) != "[2]" {
		t.Errorf("reports = %+v", res.Reports)
	}
	if maxProgress != 1.0 {
		t.Errorf("final progress = %v", maxProgress)
	}

	files := readZip(t, res.Archive)
	if len(files) != 2 {
		t.Fatalf("zip entries = %v", files)
	}
	ja, err := srt.Parse(files["ep01_ja.srt"])
	if err != nil || len(ja) != 3 {
		t.Fatalf("ja = %+v, %v", ja, err)
	}
	if ja[0].Text != "[ja] 안녕" || ja[1].Text != "실패" || ja[2].Text != "[ja] 잘가" {
		t.Errorf("ja texts = %q", srt.Texts(ja))
	}
	if ja[1].Timecode != "00:00:02,000 --> 00:00:03,000" {
		t.Errorf("timecode changed: %q", ja[1].Timecode)
	}
	if !strings.HasPrefix(files["ep01_en.srt"], "1\n00:00:01,000 --> 00:00:02,000\n[en] 안녕\n") {
		t.Errorf("en = %q", files["ep01_en.srt"])
	}

	if _, ok := sink.Get(storage.StageTranslated, res.ArchiveName); !ok {
		t.Error("archive not stored")
	}
}

func TestTranslateUnavailable(t *testing.T) {
	s, sink, engines := newTestService(t, Config{})
	engines.err = fmt.Errorf("openai: %w", transform.ErrTranslatorUnavailable)

	_, err := s.Translate(context.Background(), TranslateRequest{
		Filename: "ep01.srt", Content: sample, Languages: []string{"en"},
	}, nil)
	if !errors.Is(err, transform.ErrTranslatorUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if names := sink.Names(storage.StageTranslated); len(names) != 0 {
		t.Errorf("nothing should be stored, got %v", names)
	}
}

func TestTranslateInputErrors(t *testing.T) {
	s, _, _ := newTestService(t, Config{})
	tests := []struct {
		name string
		req  TranslateRequest
	}{
		{"empty content", TranslateRequest{Content: "", Languages: []string{"en"}}},
		{"no languages", TranslateRequest{Content: sample}},
		{"unsupported only", TranslateRequest{Content: sample, Languages: []string{"xx"}}},
		{"no blocks", TranslateRequest{Content: "just text\n\nmore", Languages: []string{"en"}}},
		{"unknown engine", TranslateRequest{Content: sample, Languages: []string{"en"}, Engine: "babel"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Translate(context.Background(), tt.req, nil); !srt.IsInputError(err) {
				t.Errorf("err = %v, want input error", err)
			}
		})
	}
}

func TestTranslateParsePolicy(t *testing.T) {
	bad := "x\n00:00:00,000 --> 00:00:01,000\nbroken\n\n" + sample

	s, _, _ := newTestService(t, Config{})
	_, err := s.Translate(context.Background(), TranslateRequest{Filename: "a.srt", Content: bad, Languages: []string{"en"}}, nil)
	var perr *srt.ParseError
	if !errors.As(err, &perr) || perr.Block != 1 {
		t.Fatalf("abort policy err = %v", err)
	}

	s, _, _ = newTestService(t, Config{Policy: srt.SkipMalformed})
	res, err := s.Translate(context.Background(), TranslateRequest{Filename: "a.srt", Content: bad, Languages: []string{"en"}}, nil)
	if err != nil {
		t.Fatalf("skip policy: %v", err)
	}
	if len(res.Skipped) != 1 || res.Reports[0].Total != 3 || len(res.SkippedText) != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestTranslateSettingsAndPresets(t *testing.T) {
	s, _, engines := newTestService(t, Config{
		SourceLang: "ko",
		Settings:   fakeSettings{"translate_engine": "deepl", "source_lang": "ja"},
		Presets: func(id int64) (string, error) {
			if id == 4 {
				return "Keep honorifics", nil
			}
			return "", errors.New("not found")
		},
	})

	res, err := s.Translate(context.Background(), TranslateRequest{
		Filename: "a.srt", Content: sample, Languages: []string{"en"}, PresetID: 4,
	}, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Engine != "deepl" {
		t.Errorf("engine = %s", res.Engine)
	}
	opts := engines.last.opts
	if opts.SourceLang != "ja" || opts.Preset != "custom" || opts.CustomPrompt != "Keep honorifics" {
		t.Errorf("opts = %+v", opts)
	}

	if _, err := s.Translate(context.Background(), TranslateRequest{
		Filename: "a.srt", Content: sample, Languages: []string{"en"}, PresetID: 9,
	}, nil); err == nil {
		t.Error("missing preset should fail")
	}
}

func TestHandleJob(t *testing.T) {
	s, sink, _ := newTestService(t, Config{})

	path := filepath.Join(t.TempDir(), "upload.srt")
	if err := os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, sample...), 0644); err != nil {
		t.Fatal(err)
	}
	params, _ := json.Marshal(job.TranslateParams{Filename: "ep01.srt", Languages: []string{"en", "ja"}})
	j := &job.Job{ID: "j1", Type: job.JobTranslate, FilePath: path, Params: params}

	var last float64
	if err := s.HandleJob(context.Background(), j, func(p float64) { last = p }); err != nil {
		t.Fatalf("HandleJob: %v", err)
	}
	if last != 1.0 {
		t.Errorf("progress = %v", last)
	}

	var res TranslateResult
	if err := json.Unmarshal(j.Result, &res); err != nil {
		t.Fatalf("result json: %v", err)
	}
	if len(res.Files) != 2 || res.Files[1].Filename != "ep01_ja.srt" {
		t.Errorf("files = %+v", res.Files)
	}
	if _, ok := sink.Get(storage.StageTranslated, res.ArchiveName); !ok {
		t.Error("archive not stored")
	}

	j.FilePath = filepath.Join(t.TempDir(), "missing.srt")
	if err := s.HandleJob(context.Background(), j, func(float64) {}); err == nil {
		t.Error("missing upload should fail")
	}
}

func TestOutputNamesMatchStoredFiles(t *testing.T) {
	root := t.TempDir()
	s := NewService(Config{Sink: storage.NewFilesystemSink(root), Engines: &fakeEngines{}})
	s.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	exists := func(stage storage.Stage, name string) {
		t.Helper()
		if _, err := os.Stat(filepath.Join(root, string(stage), name)); err != nil {
			t.Errorf("reported %s/%s not on disk: %v", stage, name, err)
		}
	}

	conv, err := s.Convert("my movie.txt", "hi\n")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if conv.Filename != "my_movie.srt" {
		t.Errorf("convert name = %q", conv.Filename)
	}
	exists(storage.StageConverted, conv.Filename)

	dup, err := s.Duplicate("my movie.srt", "X", 2)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	for _, c := range dup.Files {
		exists(storage.StageDuplicated, c.Filename)
	}

	rep, err := s.ReplaceWords(".hidden: ep 1.srt", "a", []transform.Replacement{{Old: "a", New: "b"}})
	if err != nil {
		t.Fatalf("ReplaceWords: %v", err)
	}
	exists(storage.StageWordsReplaced, rep.Filename)

	tr, err := s.Translate(context.Background(), TranslateRequest{
		Filename:  "my movie.srt",
		Content:   sample,
		Languages: []string{"en"},
	}, nil)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if tr.ArchiveName != "my_movie_translated_20260314_093000.zip" || tr.Files[0].Filename != "my_movie_en.srt" {
		t.Errorf("translate names = %q, %+v", tr.ArchiveName, tr.Files)
	}
	exists(storage.StageTranslated, tr.ArchiveName)

	if got := outputBase("..."); got != "subtitle" {
		t.Errorf("outputBase of dots = %q", got)
	}
}

func TestTranslateProgressNeverDecreases(t *testing.T) {
	s, _, _ := newTestService(t, Config{Concurrency: 3})

	var (
		mu     sync.Mutex
		values []float64
	)
	_, err := s.Translate(context.Background(), TranslateRequest{
		Filename:  "ep01.srt",
		Content:   sample,
		Languages: translate.SupportedCodes(),
	}, func(p float64) {
		mu.Lock()
		values = append(values, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Fatalf("progress went from %v to %v", values[i-1], values[i])
		}
	}
	if len(values) == 0 || values[len(values)-1] != 1 {
		t.Errorf("progress = %v", values)
	}
}
