package emotion

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Messages returned to the caller instead of a sentence
const (
	MessageEmptyInput = "Invalid input! Text to analyze is missing or empty."
	MessageRejected   = "Invalid input! Try again."
)

// IsBlank reports whether text is empty once surrounding whitespace is removed.
// The ASCII separators U+001C to U+001F count as whitespace, matching the
// legacy service which stripped them too.
func IsBlank(text string) bool {
	return strings.TrimFunc(text, isSpace) == ""
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Sentence renders a populated analysis as the human readable summary.
// The label spacing is uneven on purpose: existing consumers match it exactly.
func Sentence(a Analysis) string {
	s := a.Scores
	return fmt.Sprintf(
		"For the given statement, the system response is 'anger': %s, 'disgust':%s, 'fear': %s, 'joy': %s and 'sadness':%s. The dominant emotion is %s.",
		FormatScore(s.Anger),
		FormatScore(s.Disgust),
		FormatScore(s.Fear),
		FormatScore(s.Joy),
		FormatScore(s.Sadness),
		a.DominantEmotion,
	)
}

// Describe returns the sentence, or the rejection message for the absent analysis
func Describe(a Analysis) string {
	if a.IsAbsent() {
		return MessageRejected
	}
	return Sentence(a)
}

// FormatScore prints a float in the legacy response format: shortest
// round-trip digits, a trailing ".0" on integral values, and exponent form
// below 1e-4 or from 1e16 up.
func FormatScore(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if v != 0 {
		sci := strconv.FormatFloat(v, 'e', -1, 64)
		exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
		if err == nil && (exp < -4 || exp >= 16) {
			return sci
		}
	}

	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(out, '.') {
		out += ".0"
	}
	return out
}
