package cluster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/coupling"
	"scholarmap/bibnet/internal/graph"
)

// fixture is a small corpus: two tightly coupled triangles joined by one
// weak coupling, plus isolated publications of various years.
type fixture struct {
	store *corpus.Store
	graph *graph.CouplingGraph
}

func newFixture(t *testing.T, years map[string]int, edges [][3]interface{}) fixture {
	t.Helper()
	var recs []corpus.Publication
	for id, y := range years {
		recs = append(recs, corpus.Publication{ID: id, Year: y, Kind: corpus.KindCiting})
	}
	store, err := corpus.NewStore(recs)
	require.NoError(t, err)

	arena := coupling.NewArena()
	nodes := make(map[string]*coupling.Node)
	for id := range years {
		p, _ := store.Get(id)
		nodes[id] = coupling.NewNode(p)
	}
	for _, e := range edges {
		a, b, w := e[0].(string), e[1].(string), e[2].(int)
		nodes[a].Edges[b] = w
		nodes[b].Edges[a] = w
	}
	for _, n := range nodes {
		arena.Merge(n)
	}
	cg, _ := graph.Build(arena, 1)
	return fixture{store: store, graph: cg}
}

func twoTriangles(t *testing.T) fixture {
	return newFixture(t,
		map[string]int{
			"a1": 2015, "a2": 2016, "a3": 2017,
			"b1": 2018, "b2": 2019, "b3": 2020,
			"lone-new": 2020, "lone-mid": 2018, "lone-edge": 2017, "lone-old": 2015,
		},
		[][3]interface{}{
			{"a1", "a2", 5}, {"a2", "a3", 5}, {"a1", "a3", 5},
			{"b1", "b2", 5}, {"b2", "b3", 5}, {"b1", "b3", 5},
			{"a3", "b1", 1},
		},
	)
}

func TestLouvain_FindsBothTriangles(t *testing.T) {
	f := twoTriangles(t)
	o, err := NewOracle(OracleLouvain, 1.0, 42)
	require.NoError(t, err)

	communities, err := o.Partition(f.graph)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(communities), 2)
	assert.Equal(t, []string{"a1", "a2", "a3"}, communities[0])
	assert.Equal(t, []string{"b1", "b2", "b3"}, communities[1])
}

func TestLouvain_Deterministic(t *testing.T) {
	f := twoTriangles(t)
	o := &LouvainOracle{Resolution: 1.0, Seed: 7}
	first, err := o.Partition(f.graph)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := o.Partition(f.graph)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGirvanNewman_FindsBothTriangles(t *testing.T) {
	f := twoTriangles(t)
	o, err := NewOracle(OracleGirvanNewman, 1.0, 0)
	require.NoError(t, err)

	communities, err := o.Partition(f.graph)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(communities), 2)
	assert.Equal(t, []string{"a1", "a2", "a3"}, communities[0])
	assert.Equal(t, []string{"b1", "b2", "b3"}, communities[1])
	assert.Len(t, communities, 6, "two triangles plus four isolated publications")
}

func TestOracles_EdgelessGraphIsAllSingletons(t *testing.T) {
	f := newFixture(t, map[string]int{"x": 2010, "y": 2011}, nil)
	for _, name := range []string{OracleLouvain, OracleGirvanNewman} {
		o, err := NewOracle(name, 1.0, 1)
		require.NoError(t, err)
		communities, err := o.Partition(f.graph)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"x"}, {"y"}}, communities, name)
	}
}

func TestNewOracle_Unknown(t *testing.T) {
	_, err := NewOracle("spectral", 1.0, 1)
	assert.ErrorIs(t, err, ErrUnknownOracle)
}

func TestModularityTracker_NonMonotonic(t *testing.T) {
	seq := []float64{0.10, 0.30, 0.25, 0.40, 0.40, 0.35, 0.05}
	part := func(i int) [][]gonum.Node { return [][]gonum.Node{{simple.Node(int64(i))}} }

	tr := &modularityTracker{}
	for i, q := range seq {
		assert.False(t, tr.observe(q, part(i)), "no patience never stops early")
	}
	assert.Equal(t, 0.40, tr.bestQ)
	assert.Equal(t, int64(3), tr.best[0][0].ID(), "ties keep the earlier division")

	tr = &modularityTracker{patience: 1}
	stopped := -1
	for i, q := range seq {
		if tr.observe(q, part(i)) {
			stopped = i
			break
		}
	}
	assert.Equal(t, 2, stopped)
	assert.Equal(t, 0.30, tr.bestQ)
}

func TestPartitioner_RoutesClustersAndOutliers(t *testing.T) {
	f := twoTriangles(t)
	p := NewPartitioner(&LouvainOracle{Resolution: 1.0, Seed: 1})

	part, err := p.Partition(f.graph, f.store)
	require.NoError(t, err)

	require.Len(t, part.Clusters, 2)
	assert.Equal(t, 1, part.Clusters[0].ID)
	assert.Equal(t, 2, part.Clusters[1].ID)
	assert.Equal(t, 3, part.Clusters[0].Size())

	// max year is 2020: a gap below 3 years is recent
	assert.ElementsMatch(t, []string{"lone-new", "lone-mid"}, part.RecentOutliers)
	assert.ElementsMatch(t, []string{"lone-edge", "lone-old"}, part.Outliers)
	assert.Greater(t, part.Modularity, 0.0)

	clusterOf := part.ClusterOf()
	assert.Equal(t, 1, clusterOf["a2"])
	assert.Equal(t, 2, clusterOf["b3"])
	assert.NotContains(t, clusterOf, "lone-new")
}

func TestPartitioner_MaxYearComesFromWholeStore(t *testing.T) {
	// the newest publication is clustered; the singleton is judged against it
	f := newFixture(t,
		map[string]int{"a": 2024, "b": 2024, "s": 2020},
		[][3]interface{}{{"a", "b", 1}},
	)
	part, err := NewPartitioner(&LouvainOracle{Resolution: 1, Seed: 1}).Partition(f.graph, f.store)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, part.Outliers)
	assert.Empty(t, part.RecentOutliers)
}

type stubOracle struct {
	out [][]string
	err error
}

func (s stubOracle) Name() string { return "stub" }
func (s stubOracle) Partition(*graph.CouplingGraph) ([][]string, error) {
	return s.out, s.err
}

func TestPartitioner_EmptyPartition(t *testing.T) {
	f := twoTriangles(t)
	_, err := NewPartitioner(stubOracle{}).Partition(f.graph, f.store)
	assert.ErrorIs(t, err, ErrEmptyPartition)
}

func TestPartitioner_IntegrityViolations(t *testing.T) {
	f := newFixture(t, map[string]int{"a": 2010, "b": 2011, "c": 2012}, [][3]interface{}{{"a", "b", 1}})

	tests := []struct {
		name string
		out  [][]string
		want PartitionIntegrityError
	}{
		{"missing", [][]string{{"a", "b"}}, PartitionIntegrityError{Missing: []string{"c"}}},
		{"duplicated", [][]string{{"a", "b"}, {"b"}, {"c"}}, PartitionIntegrityError{Duplicated: []string{"b"}}},
		{"unknown", [][]string{{"a", "b"}, {"c", "zz"}}, PartitionIntegrityError{Unknown: []string{"zz"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPartitioner(stubOracle{out: tt.out}).Partition(f.graph, f.store)
			require.Error(t, err)
			var perr *PartitionIntegrityError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.want.Missing, perr.Missing)
			assert.Equal(t, tt.want.Duplicated, perr.Duplicated)
			assert.Equal(t, tt.want.Unknown, perr.Unknown)
			assert.ErrorIs(t, err, ErrPartitionIntegrity)
		})
	}
}

func TestPartitioner_MissingPublication(t *testing.T) {
	// the neighbor "ghost" is a vertex but has no record in the store
	store, err := corpus.NewStore([]corpus.Publication{{ID: "a", Year: 2010, Kind: corpus.KindCiting}})
	require.NoError(t, err)
	p, _ := store.Get("a")
	n := coupling.NewNode(p)
	n.AddCoupling("ghost")
	arena := coupling.NewArena()
	arena.Merge(n)
	cg, _ := graph.Build(arena, 1)

	_, err = NewPartitioner(&LouvainOracle{Resolution: 1, Seed: 1}).Partition(cg, store)
	require.Error(t, err)
	assert.ErrorIs(t, err, corpus.ErrMissingPublication)
}

func TestPartitioner_OracleError(t *testing.T) {
	f := twoTriangles(t)
	boom := errors.New("boom")
	_, err := NewPartitioner(stubOracle{err: boom}).Partition(f.graph, f.store)
	assert.ErrorIs(t, err, boom)
}
