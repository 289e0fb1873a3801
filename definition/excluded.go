package definition

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aatuh/surreal-migrate/migrateerr"
)

// doubleStarPlaceholder stands in for "**" while "*" is escaped to a
// single-segment class, so the two don't interfere during expansion.
const doubleStarPlaceholder = "\x00DOUBLESTAR\x00"

// ExcludedFiles compiles a "|"-joined glob pattern list into matchers.
// A pattern containing "/" matches the full forward-slash-normalized
// relative path; a pattern with no "/" matches the basename only.
// Within one segment "*" matches any run of non-separator bytes;
// "**" crosses segment boundaries.
type ExcludedFiles struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re          *regexp.Regexp
	basenameOnly bool
}

// NewExcludedFiles compiles the pipe-joined pattern list. An empty
// string yields a matcher that excludes nothing.
func NewExcludedFiles(spec string) (*ExcludedFiles, error) {
	ex := &ExcludedFiles{}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return ex, nil
	}
	for _, raw := range strings.Split(spec, "|") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		cp, err := compilePattern(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", migrateerr.ErrFilePattern, raw, err)
		}
		ex.patterns = append(ex.patterns, cp)
	}
	return ex, nil
}

func compilePattern(pattern string) (compiledPattern, error) {
	basenameOnly := !strings.Contains(pattern, "/")

	escaped := strings.ReplaceAll(pattern, ".", `\.`)
	escaped = strings.ReplaceAll(escaped, "**", doubleStarPlaceholder)
	escaped = strings.ReplaceAll(escaped, "*", "[^/]*")
	escaped = strings.ReplaceAll(escaped, doubleStarPlaceholder, ".*")

	re, err := regexp.Compile("^" + escaped + "$")
	if err != nil {
		return compiledPattern{}, err
	}
	return compiledPattern{re: re, basenameOnly: basenameOnly}, nil
}

// Matches reports whether the relative path (or its basename, for
// basename-only patterns) matches any compiled exclusion pattern.
func (ex *ExcludedFiles) Matches(relPath string) bool {
	if ex == nil {
		return false
	}
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)
	for _, p := range ex.patterns {
		if p.basenameOnly {
			if p.re.MatchString(base) {
				return true
			}
			continue
		}
		if p.re.MatchString(normalized) {
			return true
		}
	}
	return false
}
