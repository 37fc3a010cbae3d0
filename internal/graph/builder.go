package graph

import (
	"scholarmap/bibnet/internal/coupling"
)

// Build converts the coupling nodes into a CouplingGraph holding every edge
// whose strength is at least minStrength. Nodes are visited in ascending id
// order; an edge already captured from a visited neighbor is not added again.
// Every node id (and every neighbor id) becomes a vertex; those left without
// edges are returned as orphans, sorted.
func Build(arena *coupling.Arena, minStrength int) (*CouplingGraph, []string) {
	nodes := arena.Nodes()

	vertices := make([]Vertex, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		seen[n.ID()] = true
		vertices = append(vertices, Vertex{ID: n.ID(), Title: n.Publication.Title, Year: n.Publication.Year})
	}
	for _, n := range nodes {
		for nb := range n.Edges {
			if !seen[nb] {
				seen[nb] = true
				vertices = append(vertices, Vertex{ID: nb})
			}
		}
	}
	cg := newCouplingGraph(vertices)

	visited := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		id := n.ID()
		for _, nb := range n.Neighbors() {
			if n.Edges[nb] < minStrength || nb == id {
				continue
			}
			if visited[nb] && cg.HasEdge(id, nb) {
				continue
			}
			cg.addEdge(id, nb, n.Edges[nb])
		}
		visited[id] = true
	}

	var orphans []string
	for _, id := range cg.NodeIDs() {
		if cg.Degree(id) == 0 {
			orphans = append(orphans, id)
		}
	}
	return cg, orphans
}
