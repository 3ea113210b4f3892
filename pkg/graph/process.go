package graph

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/names"
	"github.com/OFFIS-RIT/charnet/pkg/text"

	"golang.org/x/sync/errgroup"
)

// BuildGraph splits raw into paragraphs, extracts the canonical names of
// each and aggregates them into the relationship graph.
//
// Paragraphs are tokenized in parallel, one tokenizer per worker. The
// extraction itself is applied in paragraph order, so counts, graph and
// first-seen order do not depend on scheduling.
func (g *GraphClient) BuildGraph(
	ctx context.Context,
	raw string,
	dict *names.Dictionary,
	synonyms *names.Synonyms,
) (*Extraction, error) {
	paragraphs := text.SplitParagraphs(util.NormalizeText(raw), g.paragraphDelimiter)

	found, err := g.extractParagraphs(ctx, paragraphs, dict, synonyms)
	if err != nil {
		return nil, err
	}

	ext := NewExtraction()
	for _, list := range found {
		ext.AddParagraph(list)
	}
	ext.Aggregate()

	return ext, nil
}

func (g *GraphClient) extractParagraphs(
	ctx context.Context,
	paragraphs []string,
	dict *names.Dictionary,
	synonyms *names.Synonyms,
) ([][]string, error) {
	found := make([][]string, len(paragraphs))
	if len(paragraphs) == 0 {
		return found, nil
	}

	workers := min(g.parallelParagraphs, len(paragraphs))
	chunkSize := (len(paragraphs) + workers - 1) / workers
	vocabulary := dict.Names()

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for start := 0; start < len(paragraphs); start += chunkSize {
		start, end := start, min(start+chunkSize, len(paragraphs))
		eg.Go(func() error {
			tok, err := g.tokenizerFactory(vocabulary)
			if err != nil {
				return fmt.Errorf("failed to build tokenizer: %w", err)
			}
			for i := start; i < end; i++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				// Each index is written by exactly one worker.
				found[i] = ExtractNames(paragraphs[i], dict, synonyms, tok)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}
