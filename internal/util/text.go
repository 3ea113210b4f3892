package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const byteOrderMark = "\uFEFF"

// NormalizeText strips a leading byte order mark, drops invalid UTF-8 and NUL
// bytes and converts the result to NFC so surface forms compare byte-for-byte.
func NormalizeText(value string) string {
	if value == "" {
		return value
	}

	value = strings.TrimPrefix(value, byteOrderMark)
	sanitized := strings.ToValidUTF8(value, "")
	sanitized = strings.ReplaceAll(sanitized, "\x00", "")
	return norm.NFC.String(sanitized)
}
