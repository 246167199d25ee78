package srt

import (
	"errors"
	"fmt"
)

// ErrMalformedIndex is wrapped by ParseError when a block's first line is
// not a positive integer.
var ErrMalformedIndex = errors.New("malformed block index")

// ParseError reports a raw block that could not be turned into a Block.
type ParseError struct {
	Block int    // 1-based position of the raw block in the input
	Token string // offending index line
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("block %d: %v: %q", e.Block, e.Err, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InputError is a recoverable user-input condition, such as an empty upload
// or a file without a single usable cue. Reason is meant for end users.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

// NewInputError returns an *InputError with the given reason.
func NewInputError(reason string) error {
	return &InputError{Reason: reason}
}

// IsInputError reports whether err wraps an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
