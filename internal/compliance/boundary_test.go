package compliance

import (
	"reflect"
	"testing"
)

func TestParseBoundaries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \n  ", nil},
		{"single path", "internal/secrets.go", []string{"internal/secrets.go"}},
		{"comma separated", "a.go, b.go", []string{"a.go", "b.go"}},
		{"semicolon and newline separated", "a.go; b.go\nc.go", []string{"a.go", "b.go", "c.go"}},
		{"glob pattern passes through", "src/secrets/*.key", []string{"src/secrets/*.key"}},
		{"directory prefix passes through", "internal/auth/", []string{"internal/auth/"}},
		{"free text extracts path-like tokens", "do not touch internal/secrets.go or configs/prod.yaml please", []string{"internal/secrets.go", "configs/prod.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBoundaries(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseBoundaries(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMatchBoundary(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		pattern string
		want    bool
	}{
		{"exact match", "internal/secrets.go", "internal/secrets.go", true},
		{"exact mismatch", "internal/secrets.go", "internal/other.go", false},
		{"directory prefix match", "internal/auth/token.go", "internal/auth/", true},
		{"directory prefix mismatch", "internal/other/token.go", "internal/auth/", false},
		{"glob suffix match", "src/secrets/db.key", "src/secrets/*.key", true},
		{"glob suffix mismatch", "src/secrets/db.txt", "src/secrets/*.key", false},
		{"unrelated pattern", "internal/secrets.go", "not a path pattern", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchBoundary(tt.file, tt.pattern)
			if got != tt.want {
				t.Errorf("MatchBoundary(%q, %q) = %v, want %v", tt.file, tt.pattern, got, tt.want)
			}
		})
	}
}
