package reply

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var vowelPair = regexp.MustCompile(`(?i)[aeiou]{2,}`)

// InputFilter rejects junk input before any external call is made.
type InputFilter struct {
	// MaxCharRun is the length of a single repeated character run that rejects.
	MaxCharRun int
	// MaxSingleWordLen is the length above which a lone word without any vowel
	// pair counts as keyboard mashing.
	MaxSingleWordLen int
}

// DefaultInputFilter returns the thresholds tuned for customer chat.
func DefaultInputFilter() InputFilter {
	return InputFilter{MaxCharRun: 16, MaxSingleWordLen: 30}
}

// Rejects reports whether text should skip the LLM.
func (f InputFilter) Rejects(text string) bool {
	if f.MaxCharRun > 0 && longestRun(text) >= f.MaxCharRun {
		return true
	}

	words := strings.Fields(text)
	if len(words) == 1 && utf8.RuneCountInString(words[0]) > f.MaxSingleWordLen && !vowelPair.MatchString(words[0]) {
		return true
	}
	return false
}

// longestRun returns the length of the longest run of one repeated rune.
func longestRun(s string) int {
	best, cur := 0, 0
	var prev rune = -1
	for _, r := range s {
		if r == prev {
			cur++
		} else {
			prev, cur = r, 1
		}
		if cur > best {
			best = cur
		}
	}
	return best
}
