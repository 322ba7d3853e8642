// Package sanitizer normalizes free-text input before it is validated or
// stored. Booking titles and notes come straight from a browser form, so
// stray whitespace and control characters are stripped here once instead of
// in every caller.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses any internal whitespace
// run into a single space. Control characters are dropped.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			// skip
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

func SanitizeTitle(title string) string {
	return TrimAndNormalize(title)
}

// SanitizeNotes preserves line breaks but trims each line and drops
// trailing empty lines.
func SanitizeNotes(notes string) string {
	lines := strings.Split(notes, "\n")
	for i, line := range lines {
		lines[i] = TrimAndNormalize(line)
	}
	out := strings.Join(lines, "\n")
	return strings.Trim(out, "\n")
}
