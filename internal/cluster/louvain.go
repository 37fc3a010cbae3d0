package cluster

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/community"

	"scholarmap/bibnet/internal/graph"
)

// LouvainOracle is greedy modularity maximization (Louvain) over the weighted
// coupling graph. A fixed Seed makes the result reproducible.
type LouvainOracle struct {
	Resolution float64
	Seed       uint64
}

func (o *LouvainOracle) Name() string { return OracleLouvain }

// Partition returns the communities of the lowest level of the modularization.
func (o *LouvainOracle) Partition(cg *graph.CouplingGraph) ([][]string, error) {
	if cg.Len() == 0 {
		return nil, nil
	}
	if cg.EdgeCount() == 0 {
		return singletons(cg), nil
	}
	src := rand.NewPCG(o.Seed, o.Seed)
	reduced := community.Modularize(cg.Gonum(), o.Resolution, src)
	return canonicalize(cg, reduced.Communities()), nil
}
