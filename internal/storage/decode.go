package storage

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/srt-studio/backend/internal/subtitle/srt"
)

// DecodeText turns an uploaded file into a string. A UTF-8 or UTF-16 byte
// order mark selects the encoding and is dropped; without one the data must
// be UTF-8. Text is normalized to NFC so files saved with decomposed Hangul
// match replacements typed by hand.
func DecodeText(data []byte) (string, error) {
	decoder := transform.Chain(unicode.BOMOverride(unicode.UTF8.NewDecoder()), norm.NFC)
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", srt.NewInputError("file could not be decoded as text")
	}
	// the UTF-8 decoder substitutes U+FFFD for invalid bytes instead of failing
	if strings.ContainsRune(string(out), utf8.RuneError) && !utf8.Valid(data) {
		return "", srt.NewInputError("file is not valid UTF-8 text")
	}
	return string(out), nil
}
