package common

// Node is one row of the node table. Label always equals ID; the graph has
// no separate display-name concept.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// Edge is one row of the edge table. Co-occurrence is tracked in both
// directions, so every pair that survives the threshold yields two edges.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Graph is the exported form of a character network: the node table and the
// threshold-filtered edge table, in first-seen order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Stats summarises a single extraction run.
type Stats struct {
	Paragraphs          int `json:"paragraphs"`
	ParagraphsWithNames int `json:"paragraphs_with_names"`
	DistinctNames       int `json:"distinct_names"`
	Mentions            int `json:"mentions"`
	Pairs               int `json:"pairs"`
	EdgesKept           int `json:"edges_kept"`
}
