package browser

import (
	"fmt"

	"github.com/gobwas/glob"
)

// AllURLs is the match pattern for every URL.
const AllURLs = "<all_urls>"

// urlFilter matches request URLs against a set of glob patterns.
type urlFilter struct {
	patterns []glob.Glob
	all      bool
}

// compileURLFilter compiles the given patterns. An empty pattern list or the
// AllURLs sentinel matches every URL.
func compileURLFilter(patterns []string) (*urlFilter, error) {
	f := &urlFilter{}
	if len(patterns) == 0 {
		f.all = true
		return f, nil
	}

	for _, pattern := range patterns {
		if pattern == AllURLs {
			f.all = true
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid url pattern %q: %w", pattern, err)
		}
		f.patterns = append(f.patterns, g)
	}
	return f, nil
}

func (f *urlFilter) Matches(url string) bool {
	if f.all {
		return true
	}
	for _, g := range f.patterns {
		if g.Match(url) {
			return true
		}
	}
	return false
}
