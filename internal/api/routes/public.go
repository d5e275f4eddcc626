// Package routes decides which request paths are reachable without
// authentication.
package routes

import "strings"

// Matcher holds the public route patterns, fixed at startup and read-only
// afterwards. A pattern is one of:
//
//   - an exact path, which also matches any sub-path below it
//     ("/api/health" matches "/api/health" and "/api/health/ready",
//     but not "/api/healthz"), or
//   - a trailing-wildcard pattern ("/api/public/*"), which matches any
//     suffix after the prefix.
type Matcher struct {
	patterns []string
}

func NewMatcher(patterns []string) *Matcher {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &Matcher{patterns: cleaned}
}

// IsPublic reports whether path is exempt from authentication.
func (m *Matcher) IsPublic(path string) bool {
	for _, p := range m.patterns {
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
