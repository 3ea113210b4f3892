package graph

import (
	"github.com/OFFIS-RIT/charnet/pkg/common"
)

// DefaultMinEdgeWeight is the edge threshold used when none is configured.
const DefaultMinEdgeWeight = 3

// ExportNodes renders the counter as node rows, one per canonical name.
func ExportNodes(counter *AppearanceCounter) []common.Node {
	nodes := make([]common.Node, 0, counter.Len())
	counter.Each(func(name string, count int) {
		nodes = append(nodes, common.Node{
			ID:     name,
			Label:  name,
			Weight: count,
		})
	})
	return nodes
}

// ExportEdges renders every pair whose weight is strictly greater than
// minWeight. Pairs at or below the threshold are left out.
func ExportEdges(g *RelationshipGraph, minWeight int) []common.Edge {
	edges := make([]common.Edge, 0)
	g.Each(func(source, target string, weight int) {
		if weight <= minWeight {
			return
		}
		edges = append(edges, common.Edge{
			Source: source,
			Target: target,
			Weight: weight,
		})
	})
	return edges
}
