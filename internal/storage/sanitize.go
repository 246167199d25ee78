package storage

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SecureFilename reduces an uploaded filename to a safe single path element.
// Letters of any script are kept; separators, control characters and
// leading dots are removed and whitespace becomes underscores.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			sb.WriteRune('_')
		case unicode.IsControl(r):
			continue
		case r == '/' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			continue
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimLeft(sb.String(), "._")
}
