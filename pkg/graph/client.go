package graph

import (
	"fmt"

	"github.com/OFFIS-RIT/charnet/pkg/text"
	"github.com/OFFIS-RIT/charnet/pkg/tokenizer"
)

const defaultParallelParagraphs = 4

// GraphClient builds character co-occurrence graphs. It owns the run
// settings; nothing about a run is kept in package state.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	tokenizerFactory   tokenizer.Factory
	parallelParagraphs int
	paragraphDelimiter string
	minEdgeWeight      int
	nameTag            string
	strictSynonyms     bool
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// TokenizerFactory builds one tokenizer per worker from the dictionary
// vocabulary; it defaults to tokenizer.DictionaryFactory.
// ParallelParagraphs bounds how many workers tokenize paragraphs at once.
// MinEdgeWeight is the edge threshold: edges need a weight strictly above
// it. Nil selects DefaultMinEdgeWeight; zero keeps every edge.
type NewGraphClientParams struct {
	TokenizerFactory   tokenizer.Factory
	ParallelParagraphs int
	ParagraphDelimiter string
	MinEdgeWeight      *int
	NameTag            string
	StrictSynonyms     bool
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		ParallelParagraphs: 4,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	minWeight := DefaultMinEdgeWeight
	if params.MinEdgeWeight != nil {
		minWeight = *params.MinEdgeWeight
	}
	if minWeight < 0 {
		return nil, fmt.Errorf("min edge weight must not be negative, got %d", minWeight)
	}

	factory := params.TokenizerFactory
	if factory == nil {
		factory = tokenizer.DictionaryFactory
	}
	parallel := params.ParallelParagraphs
	if parallel <= 0 {
		parallel = defaultParallelParagraphs
	}
	delimiter := params.ParagraphDelimiter
	if delimiter == "" {
		delimiter = text.DefaultParagraphDelimiter
	}

	g := &GraphClient{
		tokenizerFactory:   factory,
		parallelParagraphs: parallel,
		paragraphDelimiter: delimiter,
		minEdgeWeight:      minWeight,
		nameTag:            params.NameTag,
		strictSynonyms:     params.StrictSynonyms,
	}

	return g, nil
}
