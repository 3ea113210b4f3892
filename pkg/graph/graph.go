package graph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/OFFIS-RIT/charnet/pkg/common"
	"github.com/OFFIS-RIT/charnet/pkg/loader"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
	"github.com/OFFIS-RIT/charnet/pkg/names"
	"github.com/OFFIS-RIT/charnet/pkg/store"

	"golang.org/x/sync/errgroup"
)

// GraphInput names the three inputs of a run.
type GraphInput struct {
	Text       loader.TextFile
	Dictionary loader.TextFile
	Synonyms   loader.TextFile
}

type loadedInput struct {
	text     string
	dict     *names.Dictionary
	synonyms *names.Synonyms
}

// ProcessGraph loads the inputs, builds the graph and saves the node and
// edge tables through storeClient. Nothing is written unless every earlier
// step succeeded.
func (g *GraphClient) ProcessGraph(
	ctx context.Context,
	input GraphInput,
	storeClient store.GraphStorage,
) (*common.Graph, common.Stats, error) {
	logger.Info("[Graph] Loading inputs", "text", input.Text.FilePath, "dictionary", input.Dictionary.FilePath, "synonyms", input.Synonyms.FilePath)

	in, err := g.loadInputs(ctx, input)
	if err != nil {
		return nil, common.Stats{}, fmt.Errorf("failed to load inputs: %w", err)
	}

	ext, err := g.BuildGraph(ctx, in.text, in.dict, in.synonyms)
	if err != nil {
		return nil, common.Stats{}, fmt.Errorf("failed to build graph: %w", err)
	}

	graph := &common.Graph{
		Nodes: ExportNodes(ext.Counter),
		Edges: ExportEdges(ext.Relationships, g.minEdgeWeight),
	}
	stats := Summarize(ext, graph)

	if err := storeClient.SaveGraph(ctx, graph); err != nil {
		return nil, stats, fmt.Errorf("failed to save graph: %w", err)
	}

	logger.Info("[Graph] Graph build completed",
		"paragraphs", stats.Paragraphs,
		"paragraphs_with_names", stats.ParagraphsWithNames,
		"names", stats.DistinctNames,
		"mentions", stats.Mentions,
		"pairs", stats.Pairs,
		"edges", stats.EdgesKept,
	)

	return graph, stats, nil
}

func (g *GraphClient) loadInputs(ctx context.Context, input GraphInput) (*loadedInput, error) {
	in := &loadedInput{}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		b, err := input.Text.GetText(gCtx)
		if err != nil {
			return err
		}
		in.text = string(b)
		return nil
	})
	eg.Go(func() error {
		b, err := input.Dictionary.GetText(gCtx)
		if err != nil {
			return err
		}
		in.dict, err = names.ParseDictionary(bytes.NewReader(b), names.DictionaryOptions{
			Source: input.Dictionary.FilePath,
			Tag:    g.nameTag,
		})
		return err
	})
	eg.Go(func() error {
		b, err := input.Synonyms.GetText(gCtx)
		if err != nil {
			return err
		}
		in.synonyms, err = names.ParseSynonyms(bytes.NewReader(b), names.SynonymOptions{
			Source: input.Synonyms.FilePath,
			Strict: g.strictSynonyms,
		})
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// Summarize collects the run statistics of an extraction and its export.
func Summarize(ext *Extraction, graph *common.Graph) common.Stats {
	stats := common.Stats{
		Paragraphs:    len(ext.Paragraphs),
		DistinctNames: ext.Counter.Len(),
		Mentions:      ext.Counter.Total(),
		Pairs:         ext.Pairs(),
		EdgesKept:     len(graph.Edges),
	}
	for _, list := range ext.Paragraphs {
		if len(list) > 0 {
			stats.ParagraphsWithNames++
		}
	}
	return stats
}
