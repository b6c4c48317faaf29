package reply

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is one output predicate. Check returns true when the text must be rejected.
type Rule struct {
	Name  string
	Check func(text string) bool
}

// OutputFilterConfig holds every threshold of the output rules. The values
// were tuned against one provider's observed failures; change them only with
// a labeled regression corpus.
type OutputFilterConfig struct {
	MinLength          int
	CorruptionPatterns []string
	MaxCharRun         int
	LongWordLength     int
	RepeatUnitMin      int
	RepeatUnitMax      int
	RepeatOccurrences  int
	MaxLongWords       int
	AllowedPrefixes    []string
	MaxWordRepeats     int
	MaxBrackets        int
	MaxCamelCaseTokens int
}

// DefaultOutputFilterConfig returns the production thresholds.
func DefaultOutputFilterConfig() OutputFilterConfig {
	return OutputFilterConfig{
		MinLength: 10,
		CorruptionPatterns: []string{
			`(?i)Member.*session`,
			`(?i)Rune`,
			`(?i)ContentType`,
			`(?i)legacy.*imir`,
			`(?i)questasons`,
			`(?i)techniques.*techniques`,
			`(?i)glor.*glor`,
			`(?i)bach.*bach.*bach`,
			`(?i)uesues`,
			`(?i)imir.*imir`,
			`(?i)mirmers`,
		},
		MaxCharRun:         8,
		LongWordLength:     15,
		RepeatUnitMin:      2,
		RepeatUnitMax:      5,
		RepeatOccurrences:  3,
		MaxLongWords:       1,
		AllowedPrefixes:    []string{"http", "www", "email", "support", "customer", "shipping", "payment", "product", "service"},
		MaxWordRepeats:     5,
		MaxBrackets:        5,
		MaxCamelCaseTokens: 3,
	}
}

var camelCaseToken = regexp.MustCompile(`[a-z]+[A-Z][a-zA-Z]+`)

// NewOutputRules builds the ordered rule list from cfg.
func NewOutputRules(cfg OutputFilterConfig) ([]Rule, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.CorruptionPatterns))
	for _, p := range cfg.CorruptionPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("corruption pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	suspicious := func(word string) bool {
		return utf8.RuneCountInString(word) > cfg.LongWordLength && !hasAllowedPrefix(word, cfg.AllowedPrefixes)
	}

	return []Rule{
		{
			Name: "too_short",
			Check: func(text string) bool {
				return utf8.RuneCountInString(text) < cfg.MinLength
			},
		},
		{
			Name: "corruption_pattern",
			Check: func(text string) bool {
				if cfg.MaxCharRun > 0 && longestRun(text) > cfg.MaxCharRun {
					return true
				}
				for _, re := range patterns {
					if re.MatchString(text) {
						return true
					}
				}
				return false
			},
		},
		{
			Name: "repeating_word",
			Check: func(text string) bool {
				for _, w := range strings.Fields(text) {
					if suspicious(w) && hasRepeatingUnit(w, cfg.RepeatUnitMin, cfg.RepeatUnitMax, cfg.RepeatOccurrences) {
						return true
					}
				}
				return false
			},
		},
		{
			Name: "long_words",
			Check: func(text string) bool {
				n := 0
				for _, w := range strings.Fields(text) {
					if suspicious(w) {
						n++
					}
				}
				return n > cfg.MaxLongWords
			},
		},
		{
			Name: "word_repetition",
			Check: func(text string) bool {
				counts := make(map[string]int)
				for _, w := range strings.Fields(text) {
					w = strings.ToLower(w)
					counts[w]++
					if counts[w] > cfg.MaxWordRepeats {
						return true
					}
				}
				return false
			},
		},
		{
			Name: "markup",
			Check: func(text string) bool {
				n := 0
				for _, r := range text {
					switch r {
					case '{', '}', '[', ']', '(', ')', '<', '>':
						n++
					}
				}
				return n > cfg.MaxBrackets
			},
		},
		{
			Name: "camel_case",
			Check: func(text string) bool {
				return len(camelCaseToken.FindAllString(text, -1)) > cfg.MaxCamelCaseTokens
			},
		},
	}, nil
}

// OutputFilter applies rules in order; the first that fires rejects.
type OutputFilter struct {
	rules []Rule
}

func NewOutputFilter(rules ...Rule) *OutputFilter {
	return &OutputFilter{rules: rules}
}

// DefaultOutputFilter builds the filter from DefaultOutputFilterConfig.
func DefaultOutputFilter() *OutputFilter {
	rules, err := NewOutputRules(DefaultOutputFilterConfig())
	if err != nil {
		panic(err)
	}
	return NewOutputFilter(rules...)
}

// Check returns the name of the first rule rejecting text, or "" and true
// when the text can be shown to a customer.
func (f *OutputFilter) Check(text string) (string, bool) {
	for _, rule := range f.rules {
		if rule.Check(text) {
			return rule.Name, false
		}
	}
	return "", true
}

func hasAllowedPrefix(word string, prefixes []string) bool {
	lower := strings.ToLower(word)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// hasRepeatingUnit reports whether word contains a substring of minLen..maxLen
// runes repeated back to back at least occurrences times.
func hasRepeatingUnit(word string, minLen, maxLen, occurrences int) bool {
	runes := []rune(word)
	for size := minLen; size <= maxLen; size++ {
		span := size * occurrences
		for i := 0; i+span <= len(runes); i++ {
			if repeats(runes[i:i+span], size) {
				return true
			}
		}
	}
	return false
}

func repeats(rs []rune, size int) bool {
	for j := size; j < len(rs); j++ {
		if rs[j] != rs[j-size] {
			return false
		}
	}
	return true
}
