package store

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/charnet/pkg/common"
	"github.com/OFFIS-RIT/charnet/pkg/export"
)

// WriteMode decides what happens to an existing table.
type WriteMode string

const (
	// WriteModeOverwrite replaces the table; repeated runs on the same input
	// produce identical files.
	WriteModeOverwrite WriteMode = "overwrite"
	// WriteModeAppend adds rows to the table. The header is only written
	// when the table is empty or missing.
	WriteModeAppend WriteMode = "append"
)

// ParseWriteMode parses "overwrite" or "append". The empty string selects
// WriteModeOverwrite.
func ParseWriteMode(value string) (WriteMode, error) {
	switch WriteMode(value) {
	case "", WriteModeOverwrite:
		return WriteModeOverwrite, nil
	case WriteModeAppend:
		return WriteModeAppend, nil
	default:
		return "", fmt.Errorf("unknown write mode %q", value)
	}
}

// GraphStorage persists the exported node and edge tables. Both tables are
// rendered before anything is written.
type GraphStorage interface {
	SaveGraph(ctx context.Context, graph *common.Graph) error
}

// TableOptions configures how tables are rendered and written.
type TableOptions struct {
	Mode       WriteMode
	LineEnding export.LineEnding
}

// RenderTables renders both tables. existingNodes and existingEdges are the
// current contents of the targets; they are only consulted in append mode
// and decide whether a header is needed.
func RenderTables(graph *common.Graph, opts TableOptions, existingNodes, existingEdges []byte) ([]byte, []byte, error) {
	nodeOpts := export.Options{LineEnding: opts.LineEnding}
	edgeOpts := export.Options{LineEnding: opts.LineEnding}
	if opts.Mode == WriteModeAppend {
		nodeOpts.SkipHeader = len(existingNodes) > 0
		edgeOpts.SkipHeader = len(existingEdges) > 0
	}

	nodes, err := export.EncodeNodes(graph.Nodes, nodeOpts)
	if err != nil {
		return nil, nil, err
	}
	edges, err := export.EncodeEdges(graph.Edges, edgeOpts)
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

// Separator returns the bytes needed before appending rows to existing so
// the first new row starts on its own line.
func Separator(existing []byte, lineEnding export.LineEnding) []byte {
	if len(existing) == 0 || existing[len(existing)-1] == '\n' {
		return nil
	}
	if lineEnding == export.LineEndingLF {
		return []byte("\n")
	}
	return []byte("\r\n")
}
