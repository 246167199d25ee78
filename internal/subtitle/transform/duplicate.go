package transform

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/srt-studio/backend/internal/subtitle/srt"
)

// Copy is one named duplicate of a subtitle file.
type Copy struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Duplicate returns count copies of content named <base>_copyK.srt, where base
// is filename without its extension. A count of zero or less yields no copies.
func Duplicate(content, filename string, count int) ([]Copy, error) {
	if content == "" {
		return nil, srt.NewInputError("subtitle content is empty")
	}
	if count <= 0 {
		return nil, nil
	}
	base := BaseName(filename)
	copies := make([]Copy, count)
	for i := range copies {
		copies[i] = Copy{
			Filename: fmt.Sprintf("%s_copy%d.srt", base, i+1),
			Content:  content,
		}
	}
	return copies, nil
}

// BaseName strips the directory and the final extension from filename.
func BaseName(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
