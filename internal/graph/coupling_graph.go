// Package graph holds the undirected weighted coupling graph and the analyses
// run over it.
package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Vertex is a publication as seen by the graph.
type Vertex struct {
	ID    string
	Title string
	Year  int
}

// Edge is one coupling edge. Source sorts before Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// CouplingGraph is an undirected weighted graph over publication ids, backed by
// a gonum graph whose node ids are the positions of the ids in sorted order.
type CouplingGraph struct {
	g        *simple.WeightedUndirectedGraph
	vertices []Vertex // indexed by gonum node id
	index    map[string]int64
	edges    []Edge // insertion order
}

// newCouplingGraph creates a graph holding every vertex and no edges.
func newCouplingGraph(vertices []Vertex) *CouplingGraph {
	sorted := append([]Vertex(nil), vertices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	cg := &CouplingGraph{
		g:        simple.NewWeightedUndirectedGraph(0, 0),
		vertices: sorted,
		index:    make(map[string]int64, len(sorted)),
	}
	for i, v := range sorted {
		cg.index[v.ID] = int64(i)
		cg.g.AddNode(simple.Node(int64(i)))
	}
	return cg
}

// Gonum exposes the backing graph for the community-detection oracles.
// Callers must not modify it.
func (cg *CouplingGraph) Gonum() gonum.Undirected {
	return cg.g
}

// WeightedCopy returns a mutable copy of the backing graph.
func (cg *CouplingGraph) WeightedCopy() *simple.WeightedUndirectedGraph {
	dst := simple.NewWeightedUndirectedGraph(0, 0)
	gonum.CopyWeighted(dst, cg.g)
	return dst
}

// Len returns the number of vertices.
func (cg *CouplingGraph) Len() int {
	return len(cg.vertices)
}

// EdgeCount returns the number of edges.
func (cg *CouplingGraph) EdgeCount() int {
	return len(cg.edges)
}

// Edges returns the edges in the order they were added.
func (cg *CouplingGraph) Edges() []Edge {
	return append([]Edge(nil), cg.edges...)
}

// NodeIDs returns a sorted list of all vertex ids (for deterministic output)
func (cg *CouplingGraph) NodeIDs() []string {
	ids := make([]string, len(cg.vertices))
	for i, v := range cg.vertices {
		ids[i] = v.ID
	}
	return ids
}

// Vertex returns the vertex with the given publication id.
func (cg *CouplingGraph) Vertex(id string) (Vertex, bool) {
	i, ok := cg.index[id]
	if !ok {
		return Vertex{}, false
	}
	return cg.vertices[i], true
}

// Has reports whether id is a vertex of the graph.
func (cg *CouplingGraph) Has(id string) bool {
	_, ok := cg.index[id]
	return ok
}

// NodeID returns the gonum node id of a publication.
func (cg *CouplingGraph) NodeID(id string) (int64, bool) {
	n, ok := cg.index[id]
	return n, ok
}

// PublicationID maps a gonum node id back to its publication id.
func (cg *CouplingGraph) PublicationID(n int64) string {
	return cg.vertices[n].ID
}

// PublicationIDs maps gonum nodes back to publication ids, keeping order.
func (cg *CouplingGraph) PublicationIDs(nodes []gonum.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = cg.vertices[n.ID()].ID
	}
	return out
}

// HasEdge reports whether a and b are joined by an edge.
func (cg *CouplingGraph) HasEdge(a, b string) bool {
	x, okA := cg.index[a]
	y, okB := cg.index[b]
	return okA && okB && cg.g.HasEdgeBetween(x, y)
}

// Weight returns the coupling weight between a and b.
func (cg *CouplingGraph) Weight(a, b string) (int, bool) {
	x, okA := cg.index[a]
	y, okB := cg.index[b]
	if !okA || !okB || !cg.g.HasEdgeBetween(x, y) {
		return 0, false
	}
	w, _ := cg.g.Weight(x, y)
	return int(w), true
}

// Neighbors returns the sorted neighbor ids of id.
func (cg *CouplingGraph) Neighbors(id string) []string {
	n, ok := cg.index[id]
	if !ok {
		return nil
	}
	out := cg.PublicationIDs(gonum.NodesOf(cg.g.From(n)))
	sort.Strings(out)
	return out
}

// Degree returns the number of neighbors of id.
func (cg *CouplingGraph) Degree(id string) int {
	n, ok := cg.index[id]
	if !ok {
		return 0
	}
	return cg.g.From(n).Len()
}

// Strength returns the summed edge weight at id.
func (cg *CouplingGraph) Strength(id string) int {
	n, ok := cg.index[id]
	if !ok {
		return 0
	}
	total := 0
	to := cg.g.From(n)
	for to.Next() {
		w, _ := cg.g.Weight(n, to.Node().ID())
		total += int(w)
	}
	return total
}

// TotalWeight returns the sum of all edge weights.
func (cg *CouplingGraph) TotalWeight() int {
	total := 0
	for _, e := range cg.edges {
		total += e.Weight
	}
	return total
}

// addEdge joins a and b. Self edges and unknown ids are ignored.
func (cg *CouplingGraph) addEdge(a, b string, weight int) bool {
	x, okA := cg.index[a]
	y, okB := cg.index[b]
	if !okA || !okB || x == y {
		return false
	}
	cg.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(x), T: simple.Node(y), W: float64(weight)})
	if b < a {
		a, b = b, a
	}
	cg.edges = append(cg.edges, Edge{Source: a, Target: b, Weight: weight})
	return true
}
