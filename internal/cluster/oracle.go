// Package cluster partitions the coupling graph with a community-detection
// oracle and sorts the result into clusters and outliers.
package cluster

import (
	"fmt"
	"sort"

	gonum "gonum.org/v1/gonum/graph"

	"scholarmap/bibnet/internal/graph"
)

// Oracle names accepted by NewOracle.
const (
	OracleLouvain      = "louvain"
	OracleGirvanNewman = "girvan-newman"
)

// DefaultResolution is the modularity resolution used when none is given.
const DefaultResolution = 1.0

// Oracle partitions the vertex set of a coupling graph into disjoint
// communities. Implementations must be deterministic for a given graph.
type Oracle interface {
	Name() string
	Partition(cg *graph.CouplingGraph) ([][]string, error)
}

// NewOracle returns the oracle registered under name. An empty name selects Louvain.
func NewOracle(name string, resolution float64, seed uint64) (Oracle, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	switch name {
	case "", OracleLouvain:
		return &LouvainOracle{Resolution: resolution, Seed: seed}, nil
	case OracleGirvanNewman:
		return &GirvanNewmanOracle{Resolution: resolution}, nil
	default:
		return nil, fmt.Errorf("%w %q (want %s or %s)", ErrUnknownOracle, name, OracleLouvain, OracleGirvanNewman)
	}
}

// singletons returns one community per vertex, in id order.
func singletons(cg *graph.CouplingGraph) [][]string {
	ids := cg.NodeIDs()
	out := make([][]string, len(ids))
	for i, id := range ids {
		out[i] = []string{id}
	}
	return out
}

// canonicalize maps gonum communities to publication ids, sorts each community,
// and orders communities by size descending, then by first member.
func canonicalize(cg *graph.CouplingGraph, communities [][]gonum.Node) [][]string {
	out := make([][]string, 0, len(communities))
	for _, c := range communities {
		if len(c) == 0 {
			continue
		}
		ids := cg.PublicationIDs(c)
		sort.Strings(ids)
		out = append(out, ids)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}

// toNodes maps publication-id communities back onto gonum nodes.
func toNodes(cg *graph.CouplingGraph, communities [][]string) [][]gonum.Node {
	out := make([][]gonum.Node, 0, len(communities))
	for _, c := range communities {
		nodes := make([]gonum.Node, 0, len(c))
		for _, id := range c {
			if n, ok := cg.NodeID(id); ok {
				nodes = append(nodes, cg.Gonum().Node(n))
			}
		}
		out = append(out, nodes)
	}
	return out
}
