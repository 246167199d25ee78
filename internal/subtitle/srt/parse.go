package srt

import (
	"fmt"
	"strconv"
	"strings"
)

// Policy decides what the parser does with a block whose index line is not
// a positive integer.
type Policy int

const (
	// AbortOnMalformed fails the whole parse with a *ParseError.
	AbortOnMalformed Policy = iota
	// SkipMalformed drops the block and reports it alongside the result.
	SkipMalformed
)

func (p Policy) String() string {
	switch p {
	case SkipMalformed:
		return "skip"
	default:
		return "abort"
	}
}

// ParsePolicy converts a configuration value ("abort" or "skip") to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return AbortOnMalformed, nil
	case "skip":
		return SkipMalformed, nil
	}
	return AbortOnMalformed, fmt.Errorf("unknown parse policy %q", s)
}

// minBlockLines is index + timecode + at least one text line.
const minBlockLines = 3

// Parser turns subtitle text into blocks.
type Parser struct {
	Policy Policy
}

// Parse splits content into blocks separated by blank lines. Raw blocks with
// fewer than three lines are dropped silently. Malformed indexes are handled
// according to p.Policy; with SkipMalformed the dropped blocks are returned
// as the second value.
//
// Text lines are kept verbatim, trailing spaces included. Only CRLF line
// endings and the whitespace around the whole content are normalized, so
// rendering the blocks reproduces the cue text exactly.
//
// An empty result with a nil error means nothing in content looked like a
// cue; callers should treat it as an input error.
func (p Parser) Parse(content string) ([]Block, []*ParseError, error) {
	var (
		blocks  []Block
		skipped []*ParseError
	)
	for i, raw := range splitRawBlocks(content) {
		if len(raw) < minBlockLines {
			continue
		}
		token := strings.TrimSpace(raw[0])
		index, err := strconv.Atoi(token)
		if err != nil || index <= 0 {
			perr := &ParseError{Block: i + 1, Token: token, Err: ErrMalformedIndex}
			if p.Policy == AbortOnMalformed {
				return nil, nil, perr
			}
			skipped = append(skipped, perr)
			continue
		}
		blocks = append(blocks, Block{
			Index:    index,
			Timecode: strings.TrimSpace(raw[1]),
			Text:     strings.Join(raw[2:], "\n"),
		})
	}
	return blocks, skipped, nil
}

// Parse parses content with the AbortOnMalformed policy.
func Parse(content string) ([]Block, error) {
	blocks, _, err := Parser{}.Parse(content)
	return blocks, err
}

// splitRawBlocks groups the non-blank lines of content. A line is blank when
// it is empty after trimming whitespace; runs of blank lines count as one
// separator.
func splitRawBlocks(content string) [][]string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var (
		raws    [][]string
		current []string
	)
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			if current != nil {
				raws = append(raws, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if current != nil {
		raws = append(raws, current)
	}
	return raws
}
