// Package text splits narrative text into paragraph units.
package text

import "strings"

// DefaultParagraphDelimiter separates paragraphs once line endings have been
// normalised to "\n". It matches "\r\n\r\n" in CRLF encoded input.
const DefaultParagraphDelimiter = "\n\n"

// NormalizeLineEndings rewrites "\r\n" and lone "\r" to "\n".
func NormalizeLineEndings(raw string) string {
	if !strings.Contains(raw, "\r") {
		return raw
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(raw, "\r", "\n")
}

// SplitParagraphs splits raw text on delimiter after normalising line endings.
// An empty delimiter selects DefaultParagraphDelimiter.
//
// Leading, trailing and repeated delimiters produce empty paragraphs; they are
// kept so paragraph indexes line up with the source.
func SplitParagraphs(raw string, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultParagraphDelimiter
	}
	return strings.Split(NormalizeLineEndings(raw), NormalizeLineEndings(delimiter))
}
