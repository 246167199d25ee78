package srt

import (
	"fmt"
	"strings"
)

// PlainTextCueSeconds is the fixed length of every cue produced by
// FromPlainText.
const PlainTextCueSeconds = 2

// FromPlainText makes one block per non-empty line of content. Lines are
// trimmed and blank lines dropped; cue i (1-based) runs from (i-1)*2s to
// i*2s with no gaps.
func FromPlainText(content string) []Block {
	var blocks []Block
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n := len(blocks) + 1
		start := (n - 1) * PlainTextCueSeconds
		blocks = append(blocks, Block{
			Index:    n,
			Timecode: formatWholeSeconds(start) + " --> " + formatWholeSeconds(start+PlainTextCueSeconds),
			Text:     line,
		})
	}
	return blocks
}

// formatWholeSeconds renders HH:MM:SS,000; hours grow past two digits.
func formatWholeSeconds(total int) string {
	return fmt.Sprintf("%02d:%02d:%02d,000", total/3600, (total%3600)/60, total%60)
}
