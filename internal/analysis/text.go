package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// asciiLower lowercases ASCII letters only, so byte offsets into the result
// stay valid for the original text.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// bounded reports whether text[i:j] is not glued to surrounding letters or digits.
func bounded(text string, i, j int) bool {
	if i > 0 && (isAlnum(text[i-1]) || text[i-1] == '_') {
		return false
	}
	if j < len(text) && (isAlnum(text[j]) || text[j] == '_') {
		return false
	}
	return true
}

// indexAll returns the start offsets of every occurrence of needle in s.
func indexAll(s, needle string) []int {
	if needle == "" {
		return nil
	}
	var out []int
	for off := 0; ; {
		i := strings.Index(s[off:], needle)
		if i < 0 {
			return out
		}
		out = append(out, off+i)
		off += i + len(needle)
	}
}

// countWordPrefix counts occurrences of word in lower that start on a word
// boundary. Suffixes are allowed, so "project" also counts "projects".
func countWordPrefix(lower, word string) int {
	n := 0
	for _, i := range indexAll(lower, word) {
		if i == 0 || !isAlnum(lower[i-1]) {
			n++
		}
	}
	return n
}

func lineStart(text string, i int) int {
	return strings.LastIndexByte(text[:i], '\n') + 1
}

func lineEnd(text string, i int) int {
	if j := strings.IndexByte(text[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(text)
}

func clampWindow(text string, start, end int) (int, int) {
	start = max(0, start)
	end = min(len(text), end)
	// Keep windows on rune boundaries.
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return start, end
}

func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

// isUpperWord reports whether s has letters and none of them are lowercase.
func isUpperWord(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// cleanPhrase trims spaces and dangling separators from an extracted phrase.
func cleanPhrase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " ,;:|-–—(")
}

// span is a half-open byte range.
type span struct{ start, end int }

// mergeSpans merges overlapping spans; the input must be sorted by start.
func mergeSpans(spans []span) []span {
	var out []span
	for _, s := range spans {
		if n := len(out); n > 0 && s.start <= out[n-1].end {
			out[n-1].end = max(out[n-1].end, s.end)
			continue
		}
		out = append(out, s)
	}
	return out
}
