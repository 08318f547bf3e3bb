// Package normalize canonicalizes free-text team names so the same club
// spelled differently by the fixture and odds providers compares equal.
package normalize

import (
	"strings"
	"unicode"
)

// clubSuffixTokens are dropped wherever they appear, so "Arsenal FC" and
// "Arsenal" normalize to the same string.
var clubSuffixTokens = map[string]struct{}{
	"fc":   {},
	"afc":  {},
	"cfc":  {},
	"cf":   {},
	"sc":   {},
	"ac":   {},
	"club": {},
}

// Name normalizes a team name for comparison: trim, lowercase, unify "&"
// to "and", strip punctuation to whitespace, drop common club-suffix
// tokens, collapse whitespace. Idempotent; empty input yields "".
func Name(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if _, drop := clubSuffixTokens[f]; drop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// Tokens returns the word set of the normalized name.
func Tokens(s string) map[string]struct{} {
	fields := strings.Fields(Name(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
