package text

import (
	"reflect"
	"testing"
)

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		delimiter string
		want      []string
	}{
		{
			name: "crlf paragraphs",
			raw:  "A and B talked.\r\n\r\nB and C talked.",
			want: []string{"A and B talked.", "B and C talked."},
		},
		{
			name: "lf paragraphs",
			raw:  "first\n\nsecond\n\nthird",
			want: []string{"first", "second", "third"},
		},
		{
			name: "single line breaks stay inside a paragraph",
			raw:  "line one\r\nline two",
			want: []string{"line one\nline two"},
		},
		{
			name: "empty input is one empty paragraph",
			raw:  "",
			want: []string{""},
		},
		{
			name: "leading and trailing delimiters keep empty paragraphs",
			raw:  "\r\n\r\nbody\r\n\r\n",
			want: []string{"", "body", ""},
		},
		{
			name:      "custom delimiter",
			raw:       "one\n***\ntwo",
			delimiter: "\n***\n",
			want:      []string{"one", "two"},
		},
		{
			name:      "custom crlf delimiter is normalised",
			raw:       "one\r\n\r\ntwo",
			delimiter: "\r\n\r\n",
			want:      []string{"one", "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.raw, tt.delimiter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitParagraphs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	if got := NormalizeLineEndings("a\r\nb\rc\nd"); got != "a\nb\nc\nd" {
		t.Fatalf("NormalizeLineEndings() = %q", got)
	}
}
