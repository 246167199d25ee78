package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srt-studio/backend/internal/config"
	"github.com/srt-studio/backend/internal/pipeline"
	"github.com/srt-studio/backend/internal/storage"
	"github.com/srt-studio/backend/internal/subtitle/srt"
	"github.com/srt-studio/backend/internal/subtitle/translate"
)

type translateFlags struct {
	outDir    string
	languages []string
	engine    string
	apiKey    string
	preset    string
	source    string
	skipBad   bool
}

func newTranslateCommand() *cobra.Command {
	var flags translateFlags
	cmd := &cobra.Command{
		Use:          "translate <file.srt>",
		Short:        "Translate a subtitle file into every supported language",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args[0], flags)
		},
	}
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "Output directory (default: next to the input)")
	cmd.Flags().StringSliceVarP(&flags.languages, "lang", "l", translate.SupportedCodes(), "Target languages")
	cmd.Flags().StringVarP(&flags.engine, "engine", "e", "", "Translation engine: openai, gemini or deepl")
	cmd.Flags().StringVar(&flags.apiKey, "api-key", "", "API key (default: from the engine's environment variable)")
	cmd.Flags().StringVar(&flags.preset, "preset", "", "Prompt preset: anime, movie or documentary")
	cmd.Flags().StringVar(&flags.source, "source", "", "Source language (default: SOURCE_LANG)")
	cmd.Flags().BoolVar(&flags.skipBad, "skip-malformed", false, "Skip blocks with a malformed index instead of failing")
	return cmd
}

func runTranslate(cmd *cobra.Command, path string, flags translateFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content, err := storage.DecodeText(data)
	if err != nil {
		return err
	}

	tcfg := config.LoadTranslation()
	policy, err := srt.ParsePolicy(tcfg.ParsePolicy)
	if err != nil {
		return err
	}
	if flags.skipBad {
		policy = srt.SkipMalformed
	}
	sourceLang := tcfg.SourceLang
	if flags.source != "" {
		sourceLang = flags.source
	}
	outDir := flags.outDir
	if outDir == "" {
		outDir = filepath.Dir(path)
	}

	// The pipeline archive stays in memory; the CLI writes the plain files
	svc := pipeline.NewService(pipeline.Config{
		Sink: storage.NewMemorySink(),
		Engines: translate.NewRegistry(nil, translate.Keys{
			OpenAI: tcfg.OpenAIKey,
			Gemini: tcfg.GeminiKey,
			DeepL:  tcfg.DeepLKey,
		}),
		Policy:        policy,
		SourceLang:    sourceLang,
		DefaultEngine: tcfg.Engine,
		Concurrency:   tcfg.Concurrency,
	})

	result, err := svc.Translate(cmd.Context(), pipeline.TranslateRequest{
		Filename:  filepath.Base(path),
		Content:   content,
		Languages: flags.languages,
		Engine:    flags.engine,
		Preset:    flags.preset,
		APIKey:    flags.apiKey,
	}, nil)
	if err != nil {
		return err
	}

	out := storage.NewDirectorySink(outDir)
	rows := make([][]string, 0, len(result.Files))
	for i, f := range result.Files {
		written, err := out.Write(storage.StageTranslated, f.Filename, result.Outputs[f.Language])
		if err != nil {
			return err
		}
		report := result.Reports[i]
		rows = append(rows, []string{
			translate.LangName(f.Language),
			strconv.Itoa(report.Total),
			strconv.Itoa(len(report.Failed)),
			written,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Language", "Blocks", "Degraded", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
	))
	if len(result.SkippedText) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped malformed blocks:\n  %s\n", strings.Join(result.SkippedText, "\n  "))
	}
	return nil
}
