// Package sanitizer normalizes free-text input before validation so the same
// vehicle never sneaks into the fleet twice under cosmetic spelling variants.
package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims and collapses internal whitespace runs to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}
	return result.String()
}

// NormalizeMakeOrModel keeps manufacturer names readable but canonical.
func NormalizeMakeOrModel(s string) string {
	return TrimAndNormalize(s)
}

// NormalizePlate upper-cases and strips whitespace so "ab 1234" and "AB-1234"
// compare the way registries compare them. Validity is the validator's job.
func NormalizePlate(s string) string {
	p := Pipeline{
		TrimAndNormalize,
		func(s string) string { return strings.ReplaceAll(s, " ", "") },
		strings.ToUpper,
	}
	return p.Apply(s)
}

// NormalizeEmail lower-cases for case-insensitive uniqueness.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeUsername trims; usernames stay case-preserving but compare folded.
func NormalizeUsername(s string) string {
	return TrimAndNormalize(s)
}
