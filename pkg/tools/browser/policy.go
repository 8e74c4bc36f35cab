package browser

import (
	"fmt"

	"github.com/gobwas/glob"
)

// URLPolicy restricts navigation to URLs matching a set of glob patterns.
// A nil or empty policy allows every URL.
type URLPolicy struct {
	patterns []string
	globs    []glob.Glob
}

// NewURLPolicy compiles the given patterns.
func NewURLPolicy(patterns []string) (*URLPolicy, error) {
	p := &URLPolicy{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid URL pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, pattern)
		p.globs = append(p.globs, g)
	}
	return p, nil
}

// Allows reports whether url may be opened.
func (p *URLPolicy) Allows(url string) bool {
	if p == nil || len(p.globs) == 0 {
		return true
	}
	for _, g := range p.globs {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// Check returns an error naming the allow-list when url is refused.
func (p *URLPolicy) Check(url string) error {
	if p.Allows(url) {
		return nil
	}
	return fmt.Errorf("URL %q is not allowed by browser.allowed_urls %v", url, p.patterns)
}
