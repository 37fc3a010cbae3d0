package cluster

import (
	"math"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"scholarmap/bibnet/internal/graph"
)

// GirvanNewmanOracle divides the graph by repeatedly removing the edge with the
// highest betweenness. Every division that splits a component is scored by
// modularity against the full graph and the best scoring division is kept.
type GirvanNewmanOracle struct {
	Resolution float64
	// Patience stops the walk after this many divisions without a strict
	// improvement. Zero walks every division.
	Patience int
}

func (o *GirvanNewmanOracle) Name() string { return OracleGirvanNewman }

func (o *GirvanNewmanOracle) Partition(cg *graph.CouplingGraph) ([][]string, error) {
	if cg.Len() == 0 {
		return nil, nil
	}
	if cg.EdgeCount() == 0 {
		return singletons(cg), nil
	}

	full := cg.Gonum()
	work := cg.WeightedCopy()
	remaining := cg.EdgeCount()

	current := topo.ConnectedComponents(work)
	tracker := &modularityTracker{patience: o.Patience}
	tracker.observe(community.Q(full, current, o.Resolution), current)

	for remaining > 0 {
		removeMostBetween(work)
		remaining--

		next := topo.ConnectedComponents(work)
		if len(next) == len(current) {
			continue
		}
		current = next
		if tracker.observe(community.Q(full, current, o.Resolution), current) {
			break
		}
	}
	return canonicalize(cg, tracker.best), nil
}

// betweennessTolerance treats nearly equal betweenness values as ties, so the
// choice does not depend on floating point summation order.
const betweennessTolerance = 1e-9

// removeMostBetween removes the edge with the highest unweighted betweenness.
// Ties go to the smallest node id pair.
func removeMostBetween(g *simple.WeightedUndirectedGraph) {
	var (
		pick  [2]int64
		score float64
		found bool
	)
	for key, v := range network.EdgeBetweenness(g) {
		tol := betweennessTolerance * math.Max(1, math.Abs(score))
		switch {
		case !found, v > score+tol:
			pick, score, found = key, v, true
		case v >= score-tol && pairLess(key, pick):
			pick, score = key, v
		}
	}
	if found {
		g.RemoveEdge(pick[0], pick[1])
	}
}

func pairLess(a, b [2]int64) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// qEpsilon is the margin a modularity score must clear to count as an improvement.
const qEpsilon = 1e-12

// modularityTracker keeps the best scoring division of a possibly
// non-monotonic modularity sequence. Ties keep the earlier division.
type modularityTracker struct {
	patience  int
	best      [][]gonum.Node
	bestQ     float64
	seen      bool
	sinceBest int
}

// observe records one division and reports whether the walk should stop.
func (t *modularityTracker) observe(q float64, communities [][]gonum.Node) bool {
	if !t.seen || q > t.bestQ+qEpsilon {
		t.best, t.bestQ, t.seen, t.sinceBest = communities, q, true, 0
		return false
	}
	t.sinceBest++
	return t.patience > 0 && t.sinceBest >= t.patience
}
