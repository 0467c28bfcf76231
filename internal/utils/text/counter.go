// Package text provides small text utilities shared by the extractors and
// the summarizer backends.
//
// Token counts in this package approximate model tokens with
// whitespace-separated words, applied uniformly across backends. Text with
// few or no spaces (CJK, encoded blobs, long URLs) is additionally bounded by
// RunesPerToken runes per token.
package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CountRunes counts the Unicode characters in text.
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// CountTokens returns the number of whitespace-separated words in text.
func CountTokens(text string) int {
	return len(strings.Fields(text))
}

// RunesPerToken bounds how many runes one token may stand for. Spaced prose
// stays under it, so the bound only bites on text without word breaks.
const RunesPerToken = 8

// TruncateTokens keeps at most limit words of text and at most
// limit*RunesPerToken runes. When the text already fits it is returned
// unchanged and truncated is false; otherwise the kept words are joined with
// single spaces and cut at the rune bound, backing off to the last
// whitespace when the cut lands inside a word. A limit <= 0 disables
// truncation.
func TruncateTokens(text string, limit int) (out string, truncated bool) {
	if limit <= 0 {
		return text, false
	}
	out = text
	if words := strings.Fields(text); len(words) > limit {
		out, truncated = strings.Join(words[:limit], " "), true
	}
	if cut, ok := truncateRunes(out, limit*RunesPerToken); ok {
		out, truncated = cut, true
	}
	return out, truncated
}

func truncateRunes(text string, maxRunes int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text, false
	}
	cut := string(runes[:maxRunes])
	if !unicode.IsSpace(runes[maxRunes]) {
		if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimSpace(cut), true
}

// NormalizeSpace trims text and collapses every run of whitespace to a single space.
func NormalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

var controlTokens = regexp.MustCompile(`</?s>|<pad>|<unk>|<mask>`)

// StripControlTokens removes sequence-to-sequence control markers
// (<s>, </s>, <pad>, <unk>, <mask>) and normalizes whitespace.
func StripControlTokens(text string) string {
	return NormalizeSpace(controlTokens.ReplaceAllString(text, " "))
}
