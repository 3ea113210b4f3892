package graph

// Aggregate builds a relationship graph from per-paragraph name lists.
func Aggregate(paragraphs [][]string) *RelationshipGraph {
	g := NewRelationshipGraph()
	for _, p := range paragraphs {
		for _, name := range p {
			g.AddNode(name)
		}
	}
	accumulate(g, paragraphs)
	return g
}

// accumulate visits the full cross product of every paragraph, so a pair
// (a, b) is counted once per occurrence of a times once per occurrence of b,
// in both directions. It returns the number of increments.
func accumulate(g *RelationshipGraph, paragraphs [][]string) int {
	pairs := 0
	for _, p := range paragraphs {
		for _, a := range p {
			for _, b := range p {
				if a == b {
					continue
				}
				g.Increment(a, b)
				pairs++
			}
		}
	}
	return pairs
}
