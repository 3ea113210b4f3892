// Package tokenizer splits paragraphs into tokens with segmentation biased
// toward a supplied vocabulary of known names.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Tokenizer turns text into a sequence of tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Factory builds a Tokenizer primed with vocabulary. Callers create their own
// instances; nothing is registered globally.
type Factory func(vocabulary []string) (Tokenizer, error)

// DictionaryFactory is the Factory for DictionaryTokenizer.
func DictionaryFactory(vocabulary []string) (Tokenizer, error) {
	return NewDictionaryTokenizer(vocabulary), nil
}

// DictionaryTokenizer emits every vocabulary entry found in the text as a
// single token, preferring the leftmost longest match, and splits the text in
// between into words. Han characters outside the vocabulary become one token
// each; other scripts are split into letter and digit runs.
//
// A match that starts or ends inside a word of a space-delimited script is
// ignored, so "Al" never matches inside "Always".
//
// A DictionaryTokenizer must not be shared between goroutines.
type DictionaryTokenizer struct {
	ac      ahocorasick.AhoCorasick
	enabled bool
}

// NewDictionaryTokenizer compiles vocabulary into an Aho-Corasick automaton.
// Empty entries are ignored.
func NewDictionaryTokenizer(vocabulary []string) *DictionaryTokenizer {
	patterns := make([]string, 0, len(vocabulary))
	for _, v := range vocabulary {
		if v != "" {
			patterns = append(patterns, v)
		}
	}

	t := &DictionaryTokenizer{}
	if len(patterns) == 0 {
		return t
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	t.ac = builder.Build(patterns)
	t.enabled = true
	return t
}

func (t *DictionaryTokenizer) Tokenize(text string) []string {
	tokens := make([]string, 0)
	if text == "" {
		return tokens
	}
	if !t.enabled {
		return appendWords(tokens, text)
	}

	pos := 0
	for _, m := range t.ac.FindAll(text) {
		start, end := m.Start(), m.End()
		if start < pos || !onWordBoundary(text, start, end) {
			continue
		}
		tokens = appendWords(tokens, text[pos:start])
		tokens = append(tokens, text[start:end])
		pos = end
	}
	return appendWords(tokens, text[pos:])
}

func isHan(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// isWordRune reports whether r belongs to a word of a space-delimited script.
func isWordRune(r rune) bool {
	if isHan(r) {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func onWordBoundary(text string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		first, _ := utf8.DecodeRuneInString(text[start:end])
		if isWordRune(prev) && isWordRune(first) {
			return false
		}
	}
	if end < len(text) {
		last, _ := utf8.DecodeLastRuneInString(text[start:end])
		next, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(last) && isWordRune(next) {
			return false
		}
	}
	return true
}

func appendWords(tokens []string, gap string) []string {
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range gap {
		switch {
		case isHan(r):
			flush()
			tokens = append(tokens, string(r))
		case isWordRune(r):
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
