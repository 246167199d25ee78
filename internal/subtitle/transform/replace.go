// Package transform holds the operations applied to subtitle content between
// parsing and rendering: find/replace, duplication and batch translation.
package transform

import "strings"

// Replacement is one find/replace pair.
type Replacement struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Replace applies pairs to content in order. Each pair works on the output of
// the previous one, so a New value that matches a later Old is replaced again.
// The returned map holds, per Old value, how many occurrences existed just
// before that pair was applied; a repeated Old keeps its last count. Empty Old
// values are ignored.
//
// Replace works on raw characters and knows nothing about block structure: a
// pair that matches an index or timecode line rewrites it too.
func Replace(content string, pairs []Replacement) (string, map[string]int) {
	counts := make(map[string]int)
	for _, p := range pairs {
		if p.Old == "" {
			continue
		}
		counts[p.Old] = strings.Count(content, p.Old)
		content = strings.ReplaceAll(content, p.Old, p.New)
	}
	return content, counts
}
