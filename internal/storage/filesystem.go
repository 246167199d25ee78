package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type FileEntry struct {
	Name    string    `json:"name"`
	Stage   Stage     `json:"stage"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

var subtitleExtensions = map[string]bool{
	".srt": true, ".txt": true, ".zip": true,
}

// IsSubtitleFile reports whether name is a file the pipeline produces or accepts
func IsSubtitleFile(name string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListStage returns the outputs stored for stage, newest first
func (s *FilesystemSink) ListStage(stage Stage) ([]*FileEntry, error) {
	entries, err := os.ReadDir(s.Dir(stage))
	if os.IsNotExist(err) {
		return []*FileEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	result := make([]*FileEntry, 0, len(entries))
	for _, entry := range entries {
		// Skip hidden files and anything we did not write
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !IsSubtitleFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		result = append(result, &FileEntry{
			Name:    entry.Name(),
			Stage:   stage,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ModTime.After(result[j].ModTime)
	})
	return result, nil
}
