package compliance

import (
	"regexp"
	"strings"
)

// pathLikeToken matches tokens that look like file paths when extracted
// from free-form boundary text: at least one path separator or a dotted
// extension.
var pathLikeToken = regexp.MustCompile(`[A-Za-z0-9_\-./*]+[/.][A-Za-z0-9_\-./*]*`)

// ParseBoundaries splits a declared boundaries string into individual
// patterns using a small mini-language: comma/semicolon/newline
// separated; tokens that already look like paths or globs pass through
// as-is, otherwise path-like tokens are extracted from the surrounding
// natural language.
func ParseBoundaries(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var patterns []string
	for _, field := range splitBoundaryFields(raw) {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if looksLikePath(field) {
			patterns = append(patterns, field)
			continue
		}
		patterns = append(patterns, pathLikeToken.FindAllString(field, -1)...)
	}
	return patterns
}

func splitBoundaryFields(raw string) []string {
	replaced := strings.NewReplacer(";", ",", "\n", ",").Replace(raw)
	return strings.Split(replaced, ",")
}

func looksLikePath(s string) bool {
	return !strings.ContainsAny(s, " \t") && (strings.ContainsAny(s, "/*") || strings.Contains(s, "."))
}

// MatchBoundary reports whether file f is covered by boundary pattern p:
// exact equality, a directory-prefix match when p ends in "/", or a glob
// with a single "*" wildcard anywhere in p.
func MatchBoundary(f, p string) bool {
	switch {
	case p == f:
		return true
	case strings.HasSuffix(p, "/"):
		return strings.HasPrefix(f, p)
	case strings.Contains(p, "*"):
		return globMatch(p, f)
	default:
		return false
	}
}

// globMatch supports a single "*" wildcard matching any run of
// characters, which is sufficient for the boundary mini-language's glob
// tokens (e.g. "src/secrets/*.key").
func globMatch(pattern, s string) bool {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return pattern == s
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	return strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix) && len(s) >= len(prefix)+len(suffix)
}
