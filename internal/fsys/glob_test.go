package fsys

import "testing"

func TestGlobMatchBasics(t *testing.T) {
	tests := []struct {
		pattern, s string
		nocase     bool
		want       bool
	}{
		{"*", "anything", false, true},
		{"*", "", false, true},
		{"a?c", "abc", false, true},
		{"a?c", "ac", false, false},
		{"a*c", "abbbc", false, true},
		{"a*c", "ab", false, false},
		{"[abc]x", "bx", false, true},
		{"[a-z]x", "qx", false, true},
		{"[a-z]x", "Qx", false, false},
		{"[!abc]x", "dx", false, true},
		{"[^abc]x", "ax", false, false},
		{"[z-a]x", "mx", false, true}, // reversed range treated as forward
		{"\\*x", "*x", false, true},
		{"\\*x", "ax", false, false},
		{"*BETA*", "alpha beta gamma", true, true},
		{"*beta*", "alpha beta gamma", false, true},
		{"*BETA*", "alpha beta gamma", false, false},
	}
	for _, tt := range tests {
		if got := GlobMatch(tt.pattern, tt.s, tt.nocase); got != tt.want {
			t.Errorf("GlobMatch(%q, %q, %v) = %v, want %v", tt.pattern, tt.s, tt.nocase, got, tt.want)
		}
	}
}

func TestGlobMatchStarAlwaysMatches(t *testing.T) {
	samples := []string{"", "a", "abc", "a/b/c", "***"}
	for _, s := range samples {
		if !GlobMatch("*", s, false) {
			t.Errorf("GlobMatch(*, %q) should be true", s)
		}
	}
}

func TestGlobMatchCaseEquivalence(t *testing.T) {
	samples := []struct{ p, s string }{
		{"*Beta*", "ALPHA BETA GAMMA"},
		{"[A-Z]x", "Qx"},
	}
	for _, tt := range samples {
		want := GlobMatch(lower(tt.p), lower(tt.s), false)
		got := GlobMatch(tt.p, tt.s, true)
		if got != want {
			t.Errorf("nocase mismatch for %q/%q: got %v want %v", tt.p, tt.s, got, want)
		}
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func TestLongestLiteral(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"*ERROR*", "ERROR"},
		{"abc*def", "abc"},
		{"a*bb*c", "bb"},
		{"*", ""},
		{"\\*abc\\*", "*abc*"},
		{"[abc]longliteral", "longliteral"},
	}
	for _, tt := range tests {
		if got := LongestLiteral(tt.pattern); got != tt.want {
			t.Errorf("LongestLiteral(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}
