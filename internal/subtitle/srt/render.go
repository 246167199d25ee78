package srt

import (
	"strconv"
	"strings"
)

// Render writes blocks in SubRip form. Each block is its index line, its
// timecode line and its text followed by a newline; consecutive blocks are
// separated by one blank line. There is no separator after the last block.
func Render(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strconv.Itoa(b.Index))
		sb.WriteString("\n")
		sb.WriteString(b.Timecode)
		sb.WriteString("\n")
		sb.WriteString(b.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
