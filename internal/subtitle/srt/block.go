// Package srt models numbered subtitle cues and converts them to and from
// the sequential SubRip text format.
package srt

// Block is one timed subtitle cue.
type Block struct {
	Index    int    `json:"index"`
	Timecode string `json:"timecode"` // kept verbatim, e.g. "00:00:01,000 --> 00:00:03,000"
	Text     string `json:"text"`     // may span several lines
}

// Clone returns a copy of blocks that shares no backing array with the input.
func Clone(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}

// Texts returns the text payload of every block, in order.
func Texts(blocks []Block) []string {
	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}
	return texts
}
