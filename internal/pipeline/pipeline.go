// Package pipeline runs the forward-only analysis: store, coupling nodes,
// coupling graph, partition, cluster metrics, and report assembly.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scholarmap/bibnet/internal/cluster"
	"scholarmap/bibnet/internal/config"
	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/coupling"
	"scholarmap/bibnet/internal/export"
	"scholarmap/bibnet/internal/graph"
	"scholarmap/bibnet/internal/indices"
	"scholarmap/bibnet/internal/label"
	"scholarmap/bibnet/internal/observability"
)

// Options configures one run. Only Config is required.
type Options struct {
	Config *config.Config
	Logger zerolog.Logger
	// Metrics, when set, receives the run gauges and counters.
	Metrics *observability.Metrics
	// Oracle overrides the oracle named in the configuration.
	Oracle cluster.Oracle
	// Labeler overrides the TF-IDF labeler built over the store.
	Labeler label.Labeler
	// Analyzer configures the topology report; nil uses graph.DefaultConfig.
	Analyzer *graph.AnalyzerConfig
	// Sinks receive the finished report.
	Sinks []export.Writer
	// Now stamps the report; nil uses time.Now.
	Now func() time.Time
}

// Run executes the pipeline over store. Integrity failures abort the run;
// per-cluster metric failures are recorded on the summary and the run ends
// with StatusPartial.
func Run(store *corpus.Store, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: nil config")
	}
	result := &Result{RunID: uuid.New().String(), Status: StatusFailed}
	r := &runner{opts: opts, store: store, result: result, log: opts.Logger}

	err := r.run()
	if m := opts.Metrics; m != nil {
		m.RunsTotal.WithLabelValues(string(result.Status)).Inc()
	}
	if err != nil {
		r.log.Error().Err(err).Msg("run failed")
		return result, err
	}
	return result, nil
}

type runner struct {
	opts   Options
	store  *corpus.Store
	result *Result
	log    zerolog.Logger
}

// stage records a finished stage and returns a logger tagged with it.
func (r *runner) stage(s Stage, start time.Time, count int) *zerolog.Logger {
	r.result.Stages = append(r.result.Stages, StageResult{Stage: s, Duration: time.Since(start), Count: count})
	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveStage(s.String(), start)
	}
	l := observability.WithStage(r.log, s.String())
	return &l
}

func (r *runner) run() error {
	cfg := r.opts.Config.Analysis
	oracle, err := r.oracle()
	if err != nil {
		return err
	}
	r.log = observability.WithRunContext(r.opts.Logger, r.result.RunID, oracle.Name())
	m := r.opts.Metrics

	start := time.Now()
	arena, err := coupling.Build(r.store)
	if err != nil {
		return fmt.Errorf("building coupling nodes: %w", err)
	}
	r.stage(StageCoupling, start, arena.Len()).Info().
		Int("publications", r.store.Len()).
		Int("nodes", arena.Len()).
		Msg("coupling nodes built")

	start = time.Now()
	cg, orphans := graph.Build(arena, cfg.MinStrength)
	r.stage(StageGraph, start, cg.EdgeCount()).Info().
		Int("nodes", cg.Len()).
		Int("edges", cg.EdgeCount()).
		Int("orphans", len(orphans)).
		Msg("coupling graph built")
	if m != nil {
		m.Publications.Set(float64(r.store.Len()))
		m.GraphNodes.Set(float64(cg.Len()))
		m.GraphEdges.Set(float64(cg.EdgeCount()))
		m.Orphans.Set(float64(len(orphans)))
	}

	start = time.Now()
	partitioner := cluster.NewPartitioner(oracle)
	partitioner.OutlierWindow = cfg.OutlierWindow
	partitioner.Resolution = cfg.Resolution
	part, err := partitioner.Partition(cg, r.store)
	if err != nil {
		return fmt.Errorf("partitioning: %w", err)
	}
	r.stage(StagePartition, start, len(part.Clusters)).Info().
		Int("clusters", len(part.Clusters)).
		Int("outliers", len(part.Outliers)).
		Int("recent_outliers", len(part.RecentOutliers)).
		Float64("modularity", part.Modularity).
		Msg("graph partitioned")
	if m != nil {
		m.Clusters.Set(float64(len(part.Clusters)))
		m.Outliers.WithLabelValues("outlier").Set(float64(len(part.Outliers)))
		m.Outliers.WithLabelValues("recent").Set(float64(len(part.RecentOutliers)))
		m.Modularity.Set(part.Modularity)
	}

	start = time.Now()
	window := indices.Window{MinYear: cfg.MinYear, MaxYear: cfg.MaxYear}
	summaries, series, failed := r.summarize(part, window)
	r.stage(StageMetrics, start, len(summaries)).Info().
		Int("clusters", len(summaries)).
		Int("metric_errors", failed).
		Msg("cluster metrics computed")

	start = time.Now()
	analyzer := r.opts.Analyzer
	if analyzer == nil {
		analyzer = graph.DefaultConfig()
	}
	clusterOf := part.ClusterOf()
	report, err := export.NewAssembler(r.store).Assemble(export.Input{
		RunID: r.result.RunID,
		Params: export.Params{
			MinStrength: cfg.MinStrength,
			Window:      window,
			Oracle:      oracle.Name(),
			Resolution:  cfg.Resolution,
			Seed:        cfg.Seed,
			CurrentYear: cfg.CurrentYear,
		},
		Graph:     cg,
		Partition: part,
		Summaries: summaries,
		Series:    series,
		Analysis:  graph.Analyze(cg, clusterOf, analyzer),
	})
	if err != nil {
		return fmt.Errorf("assembling report: %w", err)
	}
	report.CreatedAt = r.now()
	r.result.Report = report
	r.stage(StageAssemble, start, len(report.Network)).Info().
		Int("network_rows", len(report.Network)).
		Int("cited_by_rows", len(report.CitedBy)).
		Msg("report assembled")

	start = time.Now()
	for _, sink := range r.opts.Sinks {
		paths, err := sink.Write(report, r.opts.Config.Output.Dir)
		if err != nil {
			return fmt.Errorf("writing %s output: %w", sink.Format(), err)
		}
		r.result.Outputs = append(r.result.Outputs, paths...)
	}
	r.stage(StageExport, start, len(r.result.Outputs)).Info().
		Strs("outputs", r.result.Outputs).
		Msg("report written")

	r.result.Status = StatusSuccess
	if failed > 0 {
		r.result.Status = StatusPartial
	}
	return nil
}

func (r *runner) oracle() (cluster.Oracle, error) {
	if r.opts.Oracle != nil {
		return r.opts.Oracle, nil
	}
	cfg := r.opts.Config.Analysis
	o, err := cluster.NewOracle(cfg.Oracle, cfg.Resolution, cfg.Seed)
	if err != nil {
		return nil, err
	}
	if gn, ok := o.(*cluster.GirvanNewmanOracle); ok {
		gn.Patience = cfg.Patience
	}
	return o, nil
}

func (r *runner) labeler() label.Labeler {
	if r.opts.Labeler != nil {
		return r.opts.Labeler
	}
	all := r.store.All()
	texts := make([]string, len(all))
	for i, p := range all {
		texts[i] = p.Text()
	}
	return label.NewTFIDF(texts, r.opts.Config.Analysis.LabelWords)
}

func (r *runner) now() time.Time {
	if r.opts.Now != nil {
		return r.opts.Now()
	}
	return time.Now()
}

// summarize computes the summary and yearly series of every cluster. A failed
// metric leaves its value nil and is recorded on that cluster only.
func (r *runner) summarize(part *cluster.Partition, w indices.Window) ([]export.ClusterSummary, map[int][]indices.YearCount, int) {
	cfg := r.opts.Config.Analysis
	classifier := indices.Classifier{
		CurrentYear: cfg.CurrentYear,
		RecentYears: cfg.RecentYears,
		RecentShare: cfg.RecentShare,
	}
	labeler := r.labeler()

	summaries := make([]export.ClusterSummary, 0, len(part.Clusters))
	series := make(map[int][]indices.YearCount, len(part.Clusters))
	failed := 0
	for _, c := range part.Clusters {
		log := observability.WithCluster(r.log, c.ID, c.Size())
		years := make([]int, 0, c.Size())
		citations := make([]int, 0, c.Size())
		texts := make([]string, 0, c.Size())
		for _, id := range c.Members {
			// Members were resolved against the store by the partitioner.
			p, _ := r.store.Get(id)
			years = append(years, p.Year)
			citations = append(citations, p.CitationCount)
			texts = append(texts, p.Text())
		}

		s := export.ClusterSummary{
			ID:   c.ID,
			Name: labeler.Label(c.ID, texts),
			Type: classifier.Classify(years, w),
			Size: c.Size(),
		}
		var errs []string
		if gi, err := indices.GrowthIndex(years, r.store.Len(), w); err != nil {
			errs = append(errs, "growth index: "+err.Error())
			r.metricError(log, "growth_index", err)
		} else {
			s.GrowthIndex = &gi
		}
		if ii, err := indices.ImpactIndex(citations); err != nil {
			errs = append(errs, "impact index: "+err.Error())
			r.metricError(log, "impact_index", err)
		} else {
			s.ImpactIndex = &ii
		}
		if len(errs) > 0 {
			s.Error = strings.Join(errs, "; ")
			failed++
		}
		summaries = append(summaries, s)
		series[c.ID] = indices.CumulativeSeries(years, w)
	}
	return summaries, series, failed
}

func (r *runner) metricError(log zerolog.Logger, metric string, err error) {
	log.Warn().Err(err).Str("metric", metric).Msg("cluster metric failed")
	if r.opts.Metrics != nil {
		r.opts.Metrics.MetricErrors.WithLabelValues(metric).Inc()
	}
}
