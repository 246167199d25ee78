package storage

import "fmt"

// Stage identifies the pipeline step that produced an output file.
type Stage string

const (
	StageConverted        Stage = "converted"         // plain text imported as subtitles
	StageDuplicated       Stage = "duplicated"        // numbered copies
	StageWordsReplaced    Stage = "words-replaced"    // word substitutions applied
	StageSpeakersReplaced Stage = "speakers-replaced" // speaker names substituted
	StageTranslated       Stage = "translated"        // translation archives
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageConverted,
	StageDuplicated,
	StageWordsReplaced,
	StageSpeakersReplaced,
	StageTranslated,
}

// ParseStage validates a stage name from a URL or flag.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}
