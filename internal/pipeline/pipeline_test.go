package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarmap/bibnet/internal/cluster"
	"scholarmap/bibnet/internal/config"
	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/db"
	"scholarmap/bibnet/internal/export"
	"scholarmap/bibnet/internal/graph"
	"scholarmap/bibnet/internal/indices"
	"scholarmap/bibnet/internal/observability"
)

func citing(id, title string, year, cites int) corpus.Publication {
	return corpus.Publication{ID: id, Title: title, Year: year, CitationCount: cites, Kind: corpus.KindCiting}
}

func root(id, title string, year int, citers ...string) corpus.Publication {
	return corpus.Publication{ID: id, Title: title, Year: year, Kind: corpus.KindRoot, CitingIDs: citers}
}

// testStore holds two disconnected coupling groups and two lone roots.
func testStore(t *testing.T) *corpus.Store {
	t.Helper()
	s, err := corpus.NewStore([]corpus.Publication{
		root("ra", "protein folding simulation", 2012, "a1", "a2", "a3"),
		root("ra2", "protein structure prediction", 2014, "a1", "a2", "a3"),
		root("rb", "graph neural networks", 2018, "b1", "b2", "b3"),
		root("z1", "isolated survey", 2000),
		root("z3", "isolated preprint", 2021),
		citing("a1", "protein folding dynamics", 2015, 10),
		citing("a2", "protein energy landscapes", 2016, 4),
		citing("a3", "folding pathways", 2017, 1),
		citing("b1", "graph attention", 2019, 30),
		citing("b2", "graph convolution networks", 2020, 12),
		citing("b3", "message passing networks", 2020, 0),
	})
	require.NoError(t, err)
	return s
}

func testOptions(t *testing.T) Options {
	cfg := config.Default()
	cfg.Analysis.CurrentYear = 2021
	cfg.Output.Dir = t.TempDir()
	return Options{
		Config: cfg,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestRun_ClustersAndOutliers(t *testing.T) {
	res, err := Run(testStore(t), testOptions(t))
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)

	r := res.Report
	require.NotNil(t, r)
	require.Len(t, r.Summary, 2)
	assert.Equal(t, 5, r.Summary[0].Size)
	assert.Equal(t, 4, r.Summary[1].Size)
	assert.Contains(t, r.Summary[0].Name, "protein")
	for _, s := range r.Summary {
		assert.NotNil(t, s.GrowthIndex)
		assert.NotNil(t, s.ImpactIndex)
		assert.Empty(t, s.Error)
	}
	// b1..b3: (30+12+0)/3 with rb at 0 citations.
	assert.InDelta(t, 10.5, *r.Summary[1].ImpactIndex, 1e-9)

	require.Len(t, r.Outliers, 1)
	assert.Equal(t, "z1", r.Outliers[0].ID)
	require.Len(t, r.RecentOutliers, 1)
	assert.Equal(t, "z3", r.RecentOutliers[0].ID)

	assert.Equal(t, 11, r.Publications)
	assert.Equal(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), r.CreatedAt)
	require.NotNil(t, r.Analysis)
	assert.Equal(t, 4, r.Analysis.Topology.NumComponents)

	var stages []Stage
	for _, s := range res.Stages {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []Stage{StageCoupling, StageGraph, StagePartition, StageMetrics, StageAssemble, StageExport}, stages)
}

func TestRun_Idempotent(t *testing.T) {
	store := testStore(t)
	first, err := Run(store, testOptions(t))
	require.NoError(t, err)
	second, err := Run(store, testOptions(t))
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Report.Summary, second.Report.Summary)
	assert.Equal(t, first.Report.Members, second.Report.Members)
	assert.Equal(t, first.Report.Network, second.Report.Network)
	assert.Equal(t, first.Report.Series, second.Report.Series)
	assert.Equal(t, first.Report.Modularity, second.Report.Modularity)
}

func TestRun_GirvanNewmanAgreesOnComponents(t *testing.T) {
	opts := testOptions(t)
	opts.Config.Analysis.Oracle = cluster.OracleGirvanNewman
	res, err := Run(testStore(t), opts)
	require.NoError(t, err)
	assert.Equal(t, cluster.OracleGirvanNewman, res.Report.Params.Oracle)
	require.Len(t, res.Report.Summary, 2)
}

func TestRun_MetricFailureIsPartial(t *testing.T) {
	opts := testOptions(t)
	opts.Config.Analysis.MinYear = 2020
	opts.Config.Analysis.MaxYear = 2020
	opts.Metrics = observability.NewMetrics("bibnet_test")

	res, err := Run(testStore(t), opts)
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, res.Status)
	for _, s := range res.Report.Summary {
		assert.Nil(t, s.GrowthIndex)
		assert.NotNil(t, s.ImpactIndex)
		assert.Contains(t, s.Error, "growth index")
	}
	assert.Equal(t, 2, res.Report.MetricErrors())
	assert.Equal(t, 2.0, testutil.ToFloat64(opts.Metrics.MetricErrors.WithLabelValues("growth_index")))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.RunsTotal.WithLabelValues(string(StatusPartial))))
}

type badOracle struct{}

func (badOracle) Name() string { return "bad" }
func (badOracle) Partition(cg *graph.CouplingGraph) ([][]string, error) {
	return [][]string{{"a1", "a1"}}, nil
}

func TestRun_IntegrityFailureAborts(t *testing.T) {
	opts := testOptions(t)
	opts.Oracle = badOracle{}
	opts.Metrics = observability.NewMetrics("bibnet_test")

	res, err := Run(testStore(t), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cluster.ErrPartitionIntegrity))
	assert.Equal(t, StatusFailed, res.Status)
	assert.Nil(t, res.Report)
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.RunsTotal.WithLabelValues(string(StatusFailed))))
}

func TestRun_MissingPublication(t *testing.T) {
	s, err := corpus.NewStore([]corpus.Publication{root("r", "", 2019, "ghost")})
	require.NoError(t, err)

	_, err = Run(s, testOptions(t))
	var missing *corpus.MissingPublicationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ghost", missing.ID)
}

func TestRun_NilConfig(t *testing.T) {
	_, err := Run(testStore(t), Options{})
	assert.Error(t, err)
}

func TestRun_WritesSinks(t *testing.T) {
	d, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	defer d.Close()

	opts := testOptions(t)
	sinks, err := NewSinks(context.Background(), []string{config.FormatJSON, config.FormatGraphML, config.FormatSQLite}, d)
	require.NoError(t, err)
	opts.Sinks = sinks

	res, err := Run(testStore(t), opts)
	require.NoError(t, err)
	require.Len(t, res.Outputs, 3)
	for _, p := range res.Outputs[:2] {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	runs, err := d.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, 2, runs[0].Clusters)
}

func TestNewSinks(t *testing.T) {
	_, err := NewSinks(context.Background(), []string{config.FormatSQLite}, nil)
	assert.Error(t, err)

	_, err = NewSinks(context.Background(), []string{"pdf"}, nil)
	assert.Error(t, err)

	sinks, err := NewSinks(context.Background(), []string{config.FormatXLSX, config.FormatYAML}, nil)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", sinks[0].Format())
	assert.Equal(t, "yaml", sinks[1].Format())
}

var _ export.Writer = (*SQLiteSink)(nil)

func TestClassificationUsesConfiguredYear(t *testing.T) {
	opts := testOptions(t)
	opts.Config.Analysis.CurrentYear = 2021
	res, err := Run(testStore(t), opts)
	require.NoError(t, err)
	// rb 2018, b1 2019, b2/b3 2020: all within three years of 2021.
	assert.Equal(t, indices.RecentlyEmerging, res.Report.Summary[1].Type)
}
