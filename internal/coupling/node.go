// Package coupling builds the bibliographic coupling view of a corpus: one node
// per publication, each counting how often it shares a citing set with every
// other publication.
package coupling

import (
	"sort"

	"scholarmap/bibnet/internal/corpus"
)

// Node records one publication's view of its coupling relationships.
// Edges maps neighbor id -> coupling strength (>= 1).
type Node struct {
	Publication corpus.Publication
	Edges       map[string]int
}

// NewNode creates a node with an empty edge map.
func NewNode(p corpus.Publication) *Node {
	return &Node{Publication: p, Edges: make(map[string]int)}
}

// ID returns the publication identifier of the node.
func (n *Node) ID() string {
	return n.Publication.ID
}

// AddCoupling increments the strength towards other, starting at 1.
func (n *Node) AddCoupling(other string) {
	n.Edges[other]++
}

// Merge adds other's strengths into n, summing per neighbor.
func (n *Node) Merge(other *Node) {
	for id, w := range other.Edges {
		n.Edges[id] += w
	}
}

// Strength returns the coupling strength towards other, 0 if absent.
func (n *Node) Strength(other string) int {
	return n.Edges[other]
}

// Neighbors returns the neighbor ids sorted ascending.
func (n *Node) Neighbors() []string {
	ids := make([]string, 0, len(n.Edges))
	for id := range n.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
