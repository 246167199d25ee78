package transform

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/srt-studio/backend/internal/subtitle/srt"
)

func TestReplace(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		pairs      []Replacement
		want       string
		wantCounts map[string]int
	}{
		{
			name:       "counts occurrences",
			content:    "cat cat bird",
			pairs:      []Replacement{{Old: "cat", New: "dog"}},
			want:       "dog dog bird",
			wantCounts: map[string]int{"cat": 2},
		},
		{
			name:       "pairs chain",
			content:    "a",
			pairs:      []Replacement{{Old: "a", New: "b"}, {Old: "b", New: "c"}},
			want:       "c",
			wantCounts: map[string]int{"a": 1, "b": 1},
		},
		{
			name:       "empty old skipped",
			content:    "hello",
			pairs:      []Replacement{{Old: "", New: "x"}, {Old: "missing", New: "y"}},
			want:       "hello",
			wantCounts: map[string]int{"missing": 0},
		},
		{
			name:       "repeated old keeps last count",
			content:    "aa",
			pairs:      []Replacement{{Old: "a", New: "ab"}, {Old: "a", New: "z"}},
			want:       "zbzb",
			wantCounts: map[string]int{"a": 2},
		},
		{
			name:       "reaches timecodes",
			content:    "1\n00:00:01,000 --> 00:00:02,000\n민수: 안녕\n",
			pairs:      []Replacement{{Old: "00:", New: "01:"}, {Old: "민수", New: "철수"}},
			want:       "1\n01:01:01,000 --> 01:01:02,000\n철수: 안녕\n",
			wantCounts: map[string]int{"00:": 4, "민수": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, counts := Replace(tt.content, tt.pairs)
			if got != tt.want {
				t.Errorf("Replace() = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(counts, tt.wantCounts) {
				t.Errorf("counts = %v, want %v", counts, tt.wantCounts)
			}
		})
	}
}

func TestDuplicate(t *testing.T) {
	copies, err := Duplicate("X", "f.srt", 3)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	want := []Copy{
		{Filename: "f_copy1.srt", Content: "X"},
		{Filename: "f_copy2.srt", Content: "X"},
		{Filename: "f_copy3.srt", Content: "X"},
	}
	if !reflect.DeepEqual(copies, want) {
		t.Fatalf("Duplicate = %#v, want %#v", copies, want)
	}
}

func TestDuplicateEdgeCases(t *testing.T) {
	if _, err := Duplicate("", "f", 2); !srt.IsInputError(err) {
		t.Errorf("empty content: expected input error, got %v", err)
	}
	for _, n := range []int{0, -4} {
		copies, err := Duplicate("X", "f", n)
		if err != nil || len(copies) != 0 {
			t.Errorf("Duplicate(count=%d) = %v, %v; want no copies and no error", n, copies, err)
		}
	}
	copies, _ := Duplicate("X", "f", 1)
	if copies[0].Filename != "f_copy1.srt" {
		t.Errorf("filename without extension = %q", copies[0].Filename)
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"movie.srt":         "movie",
		"dir/episode.1.srt": "episode.1",
		"noext":             "noext",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

var threeBlocks = []srt.Block{
	{Index: 1, Timecode: "00:00:00,000 --> 00:00:01,000", Text: "하나"},
	{Index: 2, Timecode: "00:00:01,000 --> 00:00:02,000", Text: "둘"},
	{Index: 3, Timecode: "00:00:02,000 --> 00:00:03,000", Text: "셋"},
}

func TestTranslateBlocksDegradesPerBlock(t *testing.T) {
	var seen []string
	tr := TranslatorFunc(func(_ context.Context, text, lang string) (string, error) {
		seen = append(seen, text)
		if text == "둘" {
			return "", errors.New("quota exceeded")
		}
		return lang + ":" + text, nil
	})

	var last float64
	out, report, err := TranslateBlocks(context.Background(), tr, threeBlocks, "en", func(p float64) { last = p })
	if err != nil {
		t.Fatalf("TranslateBlocks: %v", err)
	}
	want := []srt.Block{
		{Index: 1, Timecode: threeBlocks[0].Timecode, Text: "en:하나"},
		{Index: 2, Timecode: threeBlocks[1].Timecode, Text: "둘"},
		{Index: 3, Timecode: threeBlocks[2].Timecode, Text: "en:셋"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("out = %#v\nwant %#v", out, want)
	}
	if !reflect.DeepEqual(seen, []string{"하나", "둘", "셋"}) {
		t.Errorf("translation order = %v", seen)
	}
	if report.Total != 3 || !reflect.DeepEqual(report.Failed, []int{2}) {
		t.Errorf("report = %+v", report)
	}
	if last != 1 {
		t.Errorf("final progress = %v, want 1", last)
	}
	if threeBlocks[0].Text != "하나" {
		t.Error("input blocks were mutated")
	}
}

func TestTranslateBlocksUnavailableAborts(t *testing.T) {
	calls := 0
	tr := TranslatorFunc(func(context.Context, string, string) (string, error) {
		calls++
		return "", fmt.Errorf("openai: %w", ErrTranslatorUnavailable)
	})
	out, _, err := TranslateBlocks(context.Background(), tr, threeBlocks, "ja", nil)
	if !errors.Is(err, ErrTranslatorUnavailable) {
		t.Fatalf("expected ErrTranslatorUnavailable, got %v", err)
	}
	if out != nil {
		t.Errorf("expected no output, got %#v", out)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !strings.Contains(err.Error(), "ja") {
		t.Errorf("error should name the language: %v", err)
	}
}

func TestTranslateBlocksEmpty(t *testing.T) {
	out, report, err := TranslateBlocks(context.Background(), TranslatorFunc(nil), nil, "en", nil)
	if err != nil || len(out) != 0 || report.Total != 0 {
		t.Fatalf("got %v, %+v, %v", out, report, err)
	}
}
