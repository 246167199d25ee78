package storage

import "strings"

// Search finds outputs in every stage whose name contains query (case-insensitive)
func (s *FilesystemSink) Search(query string, maxResults int) ([]*FileEntry, error) {
	query = strings.ToLower(query)
	results := []*FileEntry{}

	for _, stage := range Stages {
		entries, err := s.ListStage(stage)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if len(results) >= maxResults {
				return results, nil
			}
			if strings.Contains(strings.ToLower(e.Name), query) {
				results = append(results, e)
			}
		}
	}
	return results, nil
}
