// Package pathmatch matches slash-separated relative paths against glob
// patterns with fnmatch(3) semantics (without FNM_PATHNAME):
//   - * matches any run of characters, including /
//   - ? matches exactly one character, including /
//   - [...] matches one character from the set, [!...] negates
//   - \ escapes the next character
//
// This differs from filepath.Match, where * stops at directory separators.
// A pattern like "*.log" therefore excludes log files at any depth.
package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Matcher holds a set of pre-compiled patterns for reuse across many paths.
type Matcher struct {
	compiled []*regexp.Regexp
}

// NewMatcher compiles the given glob patterns into a reusable matcher.
func NewMatcher(patterns []string) (*Matcher, error) {
	matcher := &Matcher{compiled: make([]*regexp.Regexp, len(patterns))}

	for i, pattern := range patterns {
		re, err := compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}

		matcher.compiled[i] = re
	}

	return matcher, nil
}

// MatchAny reports whether path matches at least one of the compiled patterns.
func (m *Matcher) MatchAny(path string) bool {
	for _, re := range m.compiled {
		if re.MatchString(path) {
			return true
		}
	}

	return false
}

// Match reports whether path matches a single glob pattern.
func Match(pattern, path string) (bool, error) {
	re, err := compile(pattern)
	if err != nil {
		return false, err
	}

	return re.MatchString(path), nil
}

var compileCache sync.Map //nolint:gochecknoglobals // compiled patterns are shared process-wide

// compile translates a glob pattern into an anchored regexp, caching the result.
func compile(pattern string) (*regexp.Regexp, error) {
	if cached, ok := compileCache.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp) //nolint:errcheck // only regexps are stored

		return re, nil
	}

	expr, err := translate(pattern)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", pattern, err)
	}

	compileCache.Store(pattern, re)

	return re, nil
}

// translate converts a glob pattern into an anchored regexp string.
func translate(pattern string) (string, error) {
	var out strings.Builder

	out.WriteString("^")

	for i := 0; i < len(pattern); {
		switch c := pattern[i]; c {
		case '*':
			out.WriteString(".*")

			i++

		case '?':
			out.WriteString(".")

			i++

		case '[':
			end, err := classEnd(pattern, i)
			if err != nil {
				return "", err
			}

			class := pattern[i : end+1]
			if strings.HasPrefix(class, "[!") {
				class = "[^" + class[2:]
			}

			out.WriteString(class)

			i = end + 1

		case '\\':
			if i+1 >= len(pattern) {
				return "", fmt.Errorf("trailing backslash in %q", pattern)
			}

			out.WriteString(regexp.QuoteMeta(string(pattern[i+1])))

			i += 2

		default:
			out.WriteString(regexp.QuoteMeta(string(c)))

			i++
		}
	}

	out.WriteString("$")

	return out.String(), nil
}

// classEnd returns the index of the closing ] for the character class opening at start.
func classEnd(pattern string, start int) (int, error) {
	i := start + 1

	// A leading ! or a leading ] is part of the class, not its end.
	if i < len(pattern) && pattern[i] == '!' {
		i++
	}

	if i < len(pattern) && pattern[i] == ']' {
		i++
	}

	for ; i < len(pattern); i++ {
		if pattern[i] == ']' {
			return i, nil
		}
	}

	return 0, fmt.Errorf("unclosed character class in %q", pattern)
}
