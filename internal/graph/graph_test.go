package graph

import (
	"math"
	"testing"

	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/coupling"
)

// quickGraph builds a graph with unit weights.
func quickGraph(ids []string, edges [][2]string) *CouplingGraph {
	vertices := make([]Vertex, len(ids))
	for i, id := range ids {
		vertices[i] = Vertex{ID: id, Title: "Paper " + id}
	}
	cg := newCouplingGraph(vertices)
	for _, e := range edges {
		cg.addEdge(e[0], e[1], 1)
	}
	return cg
}

// arenaOf builds an arena from per-node coupling views.
func arenaOf(views map[string]map[string]int) *coupling.Arena {
	a := coupling.NewArena()
	for id, edges := range views {
		n := coupling.NewNode(corpus.Publication{ID: id, Title: "Paper " + id, Year: 2015})
		for nb, w := range edges {
			n.Edges[nb] = w
		}
		a.Merge(n)
	}
	return a
}

// --- Builder Tests ---

func TestBuild_NoDuplicateEdges(t *testing.T) {
	a := arenaOf(map[string]map[string]int{
		"A": {"B": 2, "C": 1},
		"B": {"A": 2, "C": 1},
		"C": {"A": 1, "B": 1},
	})
	cg, orphans := Build(a, 1)
	if cg.EdgeCount() != 3 {
		t.Fatalf("expected 3 edges, got %d: %v", cg.EdgeCount(), cg.Edges())
	}
	seen := make(map[[2]string]bool)
	for _, e := range cg.Edges() {
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			t.Errorf("duplicate edge %v", key)
		}
		seen[key] = true
		if e.Source >= e.Target {
			t.Errorf("edge endpoints not ordered: %v", e)
		}
	}
	if w, _ := cg.Weight("B", "A"); w != 2 {
		t.Errorf("expected weight 2 for A-B, got %d", w)
	}
	if len(orphans) != 0 {
		t.Errorf("expected no orphans, got %v", orphans)
	}
}

func TestBuild_ThresholdKeepsOrphans(t *testing.T) {
	a := arenaOf(map[string]map[string]int{
		"A": {"B": 3, "C": 1},
		"B": {"A": 3, "C": 1},
		"C": {"A": 1, "B": 1},
		"D": {},
	})
	cg, orphans := Build(a, 2)
	if cg.Len() != 4 {
		t.Errorf("every node must be a vertex, got %d", cg.Len())
	}
	if cg.EdgeCount() != 1 {
		t.Errorf("expected only A-B to pass the threshold, got %v", cg.Edges())
	}
	want := []string{"C", "D"}
	if len(orphans) != len(want) || orphans[0] != want[0] || orphans[1] != want[1] {
		t.Errorf("expected orphans %v, got %v", want, orphans)
	}
}

func TestBuild_OneSidedView(t *testing.T) {
	// the root records its citers, the citers do not record the root
	a := arenaOf(map[string]map[string]int{
		"A":    {},
		"B":    {},
		"Root": {"A": 1, "B": 1},
	})
	cg, orphans := Build(a, 1)
	if !cg.HasEdge("A", "Root") || !cg.HasEdge("B", "Root") {
		t.Errorf("root edges missing: %v", cg.Edges())
	}
	if len(orphans) != 0 {
		t.Errorf("expected no orphans, got %v", orphans)
	}
}

func TestBuild_HigherIDViewUsedWhenLowerFailsThreshold(t *testing.T) {
	a := arenaOf(map[string]map[string]int{
		"A": {"B": 1},
		"B": {"A": 2},
	})
	cg, _ := Build(a, 2)
	w, ok := cg.Weight("A", "B")
	if !ok || w != 2 {
		t.Errorf("expected A-B with weight 2, got %d (present=%v)", w, ok)
	}
	if cg.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", cg.EdgeCount())
	}
}

func TestBuild_NeighborWithoutNodeBecomesVertex(t *testing.T) {
	a := arenaOf(map[string]map[string]int{"A": {"Z": 1}})
	cg, _ := Build(a, 1)
	if !cg.Has("Z") || !cg.HasEdge("A", "Z") {
		t.Errorf("expected Z as vertex with edge to A")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	views := map[string]map[string]int{
		"A": {"B": 1, "C": 2},
		"B": {"A": 1, "D": 1},
		"C": {"A": 2},
		"D": {"B": 1},
	}
	first, _ := Build(arenaOf(views), 1)
	for i := 0; i < 5; i++ {
		again, _ := Build(arenaOf(views), 1)
		if len(again.Edges()) != len(first.Edges()) {
			t.Fatalf("edge count changed between runs")
		}
		for j, e := range again.Edges() {
			if e != first.Edges()[j] {
				t.Errorf("run %d edge %d: %v != %v", i, j, e, first.Edges()[j])
			}
		}
	}
}

// --- Topology Tests ---

func TestTopology_EmptyGraph(t *testing.T) {
	r := ComputeTopology(quickGraph(nil, nil), 4, 10)
	if r.TotalNodes != 0 || r.TotalEdges != 0 || r.NumComponents != 0 {
		t.Errorf("empty graph should have all zeros, got nodes=%d edges=%d components=%d",
			r.TotalNodes, r.TotalEdges, r.NumComponents)
	}
	if len(r.DegreeHistogram) != 7 {
		t.Errorf("expected 7 histogram buckets, got %d", len(r.DegreeHistogram))
	}
}

func TestTopology_TwoComponentsAndOrphan(t *testing.T) {
	cg := quickGraph(
		[]string{"A", "B", "C", "D", "E", "F"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"D", "E"}},
	)
	r := ComputeTopology(cg, 4, 10)
	if r.NumComponents != 3 {
		t.Errorf("expected 3 components, got %d", r.NumComponents)
	}
	if r.LargestComponent != 3 || r.SmallestComponent != 1 {
		t.Errorf("expected largest=3 smallest=1, got %d/%d", r.LargestComponent, r.SmallestComponent)
	}
	if r.OrphanCount != 1 || r.OrphanIDs[0] != "F" {
		t.Errorf("expected F as the only orphan, got %v", r.OrphanIDs)
	}
	if r.TotalWeight != 3 {
		t.Errorf("expected total weight 3, got %d", r.TotalWeight)
	}
}

func TestTopology_DegreeHistogram(t *testing.T) {
	cg := quickGraph(
		[]string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"A", "C"}},
	)
	r := ComputeTopology(cg, 4, 10)
	want := map[string]int{"0": 1, "1": 2, "2-3": 1}
	for _, b := range r.DegreeHistogram {
		if b.Count != want[b.Label] {
			t.Errorf("bucket %s: expected %d, got %d", b.Label, want[b.Label], b.Count)
		}
	}
}

func TestHub_Detection(t *testing.T) {
	cg := quickGraph(
		[]string{"center", "s1", "s2", "s3", "s4", "s5"},
		[][2]string{{"center", "s1"}, {"center", "s2"}, {"center", "s3"}, {"center", "s4"}, {"center", "s5"}},
	)
	r := ComputeTopology(cg, 4, 10)
	if len(r.Hubs) != 1 {
		t.Fatalf("expected 1 hub, got %d", len(r.Hubs))
	}
	if r.Hubs[0].ID != "center" || r.Hubs[0].Strength != 5 {
		t.Errorf("expected center with strength 5, got %+v", r.Hubs[0])
	}
}

func TestUnionFind_Components(t *testing.T) {
	uf := NewUnionFind(5)
	uf.Union(3, 4)
	uf.Union(0, 2)
	if uf.Union(2, 0) {
		t.Errorf("second union of the same sets should report false")
	}
	got := uf.Components()
	if len(got) != 3 {
		t.Fatalf("expected 3 components, got %v", got)
	}
	if got[0][0] != 0 || got[0][1] != 2 || got[1][0] != 1 || got[2][0] != 3 {
		t.Errorf("unexpected component order %v", got)
	}
	if uf.Size(4) != 2 {
		t.Errorf("expected size 2, got %d", uf.Size(4))
	}
}

// --- Tarjan Tests ---

func TestTarjan_Path(t *testing.T) {
	cg := quickGraph([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})
	r := ComputeBridges(cg, nil)
	if r.BridgeCount != 2 {
		t.Errorf("expected 2 bridges, got %d", r.BridgeCount)
	}
	if r.APCount != 1 || r.ArticulationPoints[0].ID != "B" {
		t.Errorf("expected B as the only articulation point, got %v", r.ArticulationPoints)
	}
}

func TestTarjan_CycleNoBridges(t *testing.T) {
	cg := quickGraph([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})
	r := ComputeBridges(cg, nil)
	if r.BridgeCount != 0 || r.APCount != 0 {
		t.Errorf("triangle should have no bridges or APs, got %d/%d", r.BridgeCount, r.APCount)
	}
}

func TestTarjan_TwoCyclesJoined(t *testing.T) {
	cg := quickGraph(
		[]string{"A", "B", "C", "D", "E", "F"},
		[][2]string{
			{"A", "B"}, {"B", "C"}, {"C", "A"},
			{"D", "E"}, {"E", "F"}, {"F", "D"},
			{"C", "D"},
		},
	)
	clusterOf := map[string]int{"A": 1, "B": 1, "C": 1, "D": 2, "E": 2, "F": 2}
	r := ComputeBridges(cg, clusterOf)
	if r.BridgeCount != 1 || r.BridgeEdges[0].Source != "C" || r.BridgeEdges[0].Target != "D" {
		t.Errorf("expected the single bridge C-D, got %v", r.BridgeEdges)
	}
	if r.APCount != 2 {
		t.Errorf("expected C and D as APs, got %v", r.ArticulationPoints)
	}
	if len(r.WeakLinks) != 1 || r.WeakLinks[0].CrossEdges != 1 {
		t.Errorf("expected one weak link between clusters 1 and 2, got %v", r.WeakLinks)
	}
}

func TestAnalyze_Cohesion(t *testing.T) {
	cg := quickGraph([]string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})
	r := Analyze(cg, nil, DefaultConfig())
	if math.Abs(r.CohesionScore-1.0) > 1e-9 {
		t.Errorf("a triangle should score 1.0, got %f", r.CohesionScore)
	}

	sparse := quickGraph([]string{"A", "B", "C", "D"}, nil)
	r = Analyze(sparse, nil, DefaultConfig())
	if r.CohesionScore >= 0.5 {
		t.Errorf("a graph of orphans should score low, got %f", r.CohesionScore)
	}
}
