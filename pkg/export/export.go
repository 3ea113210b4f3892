// Package export renders node and edge tables as CSV in the layout Gephi
// imports: a header row followed by one comma-separated row per entry.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/OFFIS-RIT/charnet/pkg/common"
)

type LineEnding string

const (
	LineEndingCRLF LineEnding = "crlf"
	LineEndingLF   LineEnding = "lf"
)

var (
	NodeHeader = []string{"Id", "Label", "Weight"}
	EdgeHeader = []string{"Source", "Target", "Weight"}
)

// Options controls table rendering. SkipHeader is used when rows are
// appended to a table that already has one.
type Options struct {
	LineEnding LineEnding
	SkipHeader bool
}

func newWriter(w io.Writer, opts Options) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = opts.LineEnding != LineEndingLF
	return cw
}

// WriteNodes writes the node table to w.
func WriteNodes(w io.Writer, nodes []common.Node, opts Options) error {
	cw := newWriter(w, opts)
	if !opts.SkipHeader {
		if err := cw.Write(NodeHeader); err != nil {
			return fmt.Errorf("failed to write node header: %w", err)
		}
	}
	for _, n := range nodes {
		if err := cw.Write([]string{n.ID, n.Label, strconv.Itoa(n.Weight)}); err != nil {
			return fmt.Errorf("failed to write node %q: %w", n.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdges writes the edge table to w.
func WriteEdges(w io.Writer, edges []common.Edge, opts Options) error {
	cw := newWriter(w, opts)
	if !opts.SkipHeader {
		if err := cw.Write(EdgeHeader); err != nil {
			return fmt.Errorf("failed to write edge header: %w", err)
		}
	}
	for _, e := range edges {
		if err := cw.Write([]string{e.Source, e.Target, strconv.Itoa(e.Weight)}); err != nil {
			return fmt.Errorf("failed to write edge %q -> %q: %w", e.Source, e.Target, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeNodes renders the node table into memory.
func EncodeNodes(nodes []common.Node, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteNodes(&buf, nodes, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeEdges renders the edge table into memory.
func EncodeEdges(edges []common.Edge, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteEdges(&buf, edges, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
