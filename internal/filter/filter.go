// Package filter decides which entries of a source tree are packed into the
// archive, based on user-supplied exclude patterns matched against paths
// relative to the source root.
package filter

import (
	"fmt"
	"strings"

	"github.com/castroofelipee/folder-lock/pkg/pathmatch"
)

// Filter skips archive entries whose relative path matches an exclude pattern.
// A nil pattern list produces a filter that skips nothing.
type Filter struct {
	excludes *pathmatch.Matcher
}

// New compiles exclude patterns into a reusable filter.
func New(excludes []string) (*Filter, error) {
	matcher, err := pathmatch.NewMatcher(normalize(excludes))
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{excludes: matcher}, nil
}

// Skip reports whether the entry at the given slash-separated relative path
// should be left out of the archive.
func (f *Filter) Skip(rel string) bool {
	return f.excludes.MatchAny(rel)
}

// normalize strips leading "./" so patterns match cleaned relative paths.
func normalize(patterns []string) []string {
	cleaned := make([]string, len(patterns))

	for i, p := range patterns {
		cleaned[i] = strings.TrimPrefix(p, "./")
	}

	return cleaned
}
