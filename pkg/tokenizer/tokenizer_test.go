package tokenizer

import (
	"reflect"
	"testing"
)

func TestDictionaryTokenizer(t *testing.T) {
	tests := []struct {
		name       string
		vocabulary []string
		text       string
		want       []string
	}{
		{
			name:       "latin sentence",
			vocabulary: []string{"A", "B", "C"},
			text:       "A and B talked.",
			want:       []string{"A", "and", "B", "talked"},
		},
		{
			name:       "multi word name stays one token",
			vocabulary: []string{"Monkey D. Luffy", "Zoro"},
			text:       "Monkey D. Luffy met Zoro!",
			want:       []string{"Monkey D. Luffy", "met", "Zoro"},
		},
		{
			name:       "no match inside a longer word",
			vocabulary: []string{"Al"},
			text:       "Always Al.",
			want:       []string{"Always", "Al"},
		},
		{
			name:       "longest match wins",
			vocabulary: []string{"韦小宝", "小宝"},
			text:       "韦小宝说道",
			want:       []string{"韦小宝", "说", "道"},
		},
		{
			name:       "han names without spaces",
			vocabulary: []string{"韦小宝", "康熙"},
			text:       "康熙见了韦小宝。",
			want:       []string{"康熙", "见", "了", "韦小宝"},
		},
		{
			name:       "empty vocabulary splits words only",
			vocabulary: nil,
			text:       "Bob, 42 apples",
			want:       []string{"Bob", "42", "apples"},
		},
		{
			name:       "empty text",
			vocabulary: []string{"A"},
			text:       "",
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := NewDictionaryTokenizer(tt.vocabulary)
			got := tok.Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDictionaryFactory(t *testing.T) {
	tok, err := DictionaryFactory([]string{"Bob"})
	if err != nil {
		t.Fatal(err)
	}
	got := tok.Tokenize("Bob and A")
	want := []string{"Bob", "and", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %#v, want %#v", got, want)
	}
}
