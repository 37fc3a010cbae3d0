package coupling

import (
	"fmt"
	"sort"

	"scholarmap/bibnet/internal/corpus"
)

// Arena owns every node of a run, keyed by publication id.
type Arena struct {
	nodes map[string]*Node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{nodes: make(map[string]*Node)}
}

// Len returns the number of nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Get returns the node for id.
func (a *Arena) Get(id string) (*Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

// IDs returns all node ids sorted ascending (for deterministic output).
func (a *Arena) IDs() []string {
	ids := make([]string, 0, len(a.nodes))
	for id := range a.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns all nodes sorted ascending by id.
func (a *Arena) Nodes() []*Node {
	ids := a.IDs()
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = a.nodes[id]
	}
	return out
}

// Merge inserts n, or sums its strengths into the node already held for the same id.
func (a *Arena) Merge(n *Node) {
	if existing, ok := a.nodes[n.ID()]; ok {
		existing.Merge(n)
		return
	}
	a.nodes[n.ID()] = n
}

// materialize returns the node for id, creating it from the store on first use.
func (a *Arena) materialize(store *corpus.Store, id, rootID string) (*Node, error) {
	if n, ok := a.nodes[id]; ok {
		return n, nil
	}
	p, err := store.Lookup(id, fmt.Sprintf("citing set of %s", rootID))
	if err != nil {
		return nil, err
	}
	n := NewNode(p)
	a.nodes[id] = n
	return n, nil
}

// Build makes one pass over every root listing of the store. Each pair of
// publications sharing a citing set gains one unit of coupling strength in
// both nodes, and each root gains one unit towards each of its citers. A root
// listed more than once has its contributions summed.
func Build(store *corpus.Store) (*Arena, error) {
	a := NewArena()
	for _, root := range store.Roots() {
		rootPub, err := store.Lookup(root.ID, "root listing")
		if err != nil {
			return nil, err
		}
		rootNode := NewNode(rootPub)

		for _, cid := range root.CitingIDs {
			node, err := a.materialize(store, cid, root.ID)
			if err != nil {
				return nil, err
			}
			for _, cid2 := range root.CitingIDs {
				if cid2 != cid {
					node.AddCoupling(cid2)
				}
			}
			if cid != root.ID {
				rootNode.AddCoupling(cid)
			}
		}

		a.Merge(rootNode)
	}
	return a, nil
}
