package graph

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type adjacency = orderedmap.OrderedMap[string, int]

// RelationshipGraph holds co-occurrence weights as source -> target -> weight.
//
// Both directions of a pair are stored and always carry the same weight.
// Self-loops are never stored. Sources iterate in the order they were added,
// targets in the order their weight was first incremented.
type RelationshipGraph struct {
	adj *orderedmap.OrderedMap[string, *adjacency]
}

func NewRelationshipGraph() *RelationshipGraph {
	return &RelationshipGraph{
		adj: orderedmap.New[string, *adjacency](),
	}
}

// AddNode creates an empty adjacency entry for name if none exists.
func (g *RelationshipGraph) AddNode(name string) {
	if _, ok := g.adj.Get(name); ok {
		return
	}
	g.adj.Set(name, orderedmap.New[string, int]())
}

func (g *RelationshipGraph) HasNode(name string) bool {
	_, ok := g.adj.Get(name)
	return ok
}

// Increment adds one to the weight of source -> target. Equal names are
// ignored.
func (g *RelationshipGraph) Increment(source, target string) {
	if source == target {
		return
	}
	g.AddNode(source)
	targets, _ := g.adj.Get(source)
	weight, _ := targets.Get(target)
	targets.Set(target, weight+1)
}

// Weight returns the weight of source -> target, 0 when the pair never
// co-occurred.
func (g *RelationshipGraph) Weight(source, target string) int {
	targets, ok := g.adj.Get(source)
	if !ok {
		return 0
	}
	weight, _ := targets.Get(target)
	return weight
}

// Targets returns a copy of the weights leaving source.
func (g *RelationshipGraph) Targets(source string) map[string]int {
	targets, ok := g.adj.Get(source)
	if !ok {
		return nil
	}
	out := make(map[string]int, targets.Len())
	for pair := targets.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// Len returns the number of nodes.
func (g *RelationshipGraph) Len() int {
	return g.adj.Len()
}

// Each calls fn for every stored source -> target weight.
func (g *RelationshipGraph) Each(fn func(source, target string, weight int)) {
	for src := g.adj.Oldest(); src != nil; src = src.Next() {
		for dst := src.Value.Oldest(); dst != nil; dst = dst.Next() {
			fn(src.Key, dst.Key, dst.Value)
		}
	}
}
