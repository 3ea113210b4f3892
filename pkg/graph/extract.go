package graph

import (
	"github.com/OFFIS-RIT/charnet/pkg/names"
	"github.com/OFFIS-RIT/charnet/pkg/tokenizer"
)

// ExtractNames returns the canonical names mentioned in paragraph, in token
// order and with repeats. A token counts as a mention only when it is a
// dictionary surface form; synonyms are resolved after that check.
func ExtractNames(
	paragraph string,
	dict *names.Dictionary,
	synonyms *names.Synonyms,
	tok tokenizer.Tokenizer,
) []string {
	found := make([]string, 0)
	if paragraph == "" {
		return found
	}

	for _, token := range tok.Tokenize(paragraph) {
		if !dict.Contains(token) {
			continue
		}
		found = append(found, synonyms.Resolve(token))
	}
	return found
}

// Extraction accumulates per-paragraph name lists, the appearance counter and
// the relationship graph of one text.
//
// Every name that has been counted has a node in Relationships, created at
// the moment the name is first counted.
type Extraction struct {
	Paragraphs    [][]string
	Counter       *AppearanceCounter
	Relationships *RelationshipGraph

	pairs      int
	aggregated int
}

func NewExtraction() *Extraction {
	return &Extraction{
		Paragraphs:    make([][]string, 0),
		Counter:       NewAppearanceCounter(),
		Relationships: NewRelationshipGraph(),
	}
}

// AddParagraph records the canonical names of the next paragraph. An empty
// list is a valid paragraph.
func (e *Extraction) AddParagraph(names []string) {
	e.Paragraphs = append(e.Paragraphs, names)
	for _, name := range names {
		e.observe(name)
	}
}

func (e *Extraction) observe(name string) {
	if e.Counter.Increment(name) {
		e.Relationships.AddNode(name)
	}
}

// Aggregate accumulates co-occurrence weights for the paragraphs recorded
// since the previous call into Relationships. Each paragraph is counted once.
func (e *Extraction) Aggregate() *RelationshipGraph {
	e.pairs += accumulate(e.Relationships, e.Paragraphs[e.aggregated:])
	e.aggregated = len(e.Paragraphs)
	return e.Relationships
}

// Pairs returns the number of pair increments applied by Aggregate.
func (e *Extraction) Pairs() int {
	return e.pairs
}
