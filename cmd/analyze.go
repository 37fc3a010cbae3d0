package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scholarmap/bibnet/internal/cluster"
	"scholarmap/bibnet/internal/config"
	"scholarmap/bibnet/internal/export"
	"scholarmap/bibnet/internal/graph"
	"scholarmap/bibnet/internal/observability"
	"scholarmap/bibnet/internal/pipeline"
)

var (
	analyzeJSON         bool
	analyzeMinStrength  int
	analyzeMinYear      int
	analyzeMaxYear      int
	analyzeCurrentYear  int
	analyzeOracle       string
	analyzeSeed         uint64
	analyzeOut          string
	analyzeFormats      []string
	analyzeTopN         int
	analyzeHubThreshold int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the coupling network, cluster it, and write the cluster reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		applyAnalyzeFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		d, err := OpenDatabase(cfg, false)
		if err != nil {
			return err
		}
		defer d.Close()

		store, err := d.LoadStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading publications: %w", err)
		}
		if store.Len() == 0 {
			return fmt.Errorf("database %s holds no publications (run bibnet import first)", d.Path)
		}

		sinks, err := pipeline.NewSinks(cmd.Context(), cfg.Output.Formats, d)
		if err != nil {
			return err
		}

		var metrics *observability.Metrics
		if cfg.Metrics.Enabled {
			metrics = observability.NewMetrics("bibnet")
		}

		result, runErr := pipeline.Run(store, pipeline.Options{
			Config:   cfg,
			Logger:   logger,
			Metrics:  metrics,
			Analyzer: &graph.AnalyzerConfig{HubThreshold: analyzeHubThreshold, TopN: analyzeTopN},
			Sinks:    sinks,
		})

		if metrics != nil && cfg.Metrics.TextfilePath != "" {
			if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
				logger.Warn().Err(err).Msg("writing metrics textfile")
			}
		}
		if runErr != nil {
			return runErr
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printHumanReadable(result)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().IntVar(&analyzeMinStrength, "min-strength", 1, "Minimum coupling strength kept as an edge")
	analyzeCmd.Flags().IntVar(&analyzeMinYear, "min-year", 2010, "First year of the growth window")
	analyzeCmd.Flags().IntVar(&analyzeMaxYear, "max-year", 2020, "Last year of the growth window")
	analyzeCmd.Flags().IntVar(&analyzeCurrentYear, "current-year", 0, "Year anchoring recent documents (0: this year)")
	analyzeCmd.Flags().StringVar(&analyzeOracle, "oracle", cluster.OracleLouvain, "Community detection: louvain or girvan-newman")
	analyzeCmd.Flags().Uint64Var(&analyzeSeed, "seed", 1, "Seed of the louvain oracle")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "Output directory")
	analyzeCmd.Flags().StringSliceVar(&analyzeFormats, "format", nil, "Output formats: "+strings.Join(append(export.Formats, config.FormatSQLite), ", "))
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 10, "Number of top items to show per section")
	analyzeCmd.Flags().IntVar(&analyzeHubThreshold, "hub-threshold", 10, "Minimum degree to consider a publication a hub")
	rootCmd.AddCommand(analyzeCmd)
}

// applyAnalyzeFlags overrides configuration values with explicitly set flags.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("min-strength") {
		cfg.Analysis.MinStrength = analyzeMinStrength
	}
	if flags.Changed("min-year") {
		cfg.Analysis.MinYear = analyzeMinYear
	}
	if flags.Changed("max-year") {
		cfg.Analysis.MaxYear = analyzeMaxYear
	}
	if flags.Changed("current-year") {
		cfg.Analysis.CurrentYear = analyzeCurrentYear
	}
	if flags.Changed("oracle") {
		cfg.Analysis.Oracle = analyzeOracle
	}
	if flags.Changed("seed") {
		cfg.Analysis.Seed = analyzeSeed
	}
	if flags.Changed("out") {
		cfg.Output.Dir = analyzeOut
	}
	if flags.Changed("format") {
		cfg.Output.Formats = analyzeFormats
	}
}

func printHumanReadable(result *pipeline.Result) {
	r := result.Report
	a := r.Analysis

	fmt.Printf("\n  Run %s  (%s, %s)\n", truncID(result.RunID), result.Status, pipeline.FormatDurationShort(result.Duration()))
	fmt.Printf("  %d publications, oracle=%s, min_strength=%d, window=%d-%d\n",
		r.Publications, r.Params.Oracle, r.Params.MinStrength, r.Params.Window.MinYear, r.Params.Window.MaxYear)

	// Cohesion bar
	barLen := int(a.CohesionScore * 20)
	if barLen > 20 {
		barLen = 20
	}
	bar := strings.Repeat("█", barLen) + strings.Repeat("░", 20-barLen)
	fmt.Printf("\n  Network cohesion: %.0f%%  [%s]  modularity=%.3f\n", a.CohesionScore*100, bar, r.Modularity)
	fmt.Printf("  breakdown: connectivity=%.2f components=%.2f fragility=%.2f\n\n",
		a.CohesionBreakdown.Connectivity,
		a.CohesionBreakdown.Components,
		a.CohesionBreakdown.Fragility)

	// Clusters
	fmt.Println("  CLUSTERS")
	fmt.Println("  ────────────────────────────────────────")
	if len(r.Summary) == 0 {
		fmt.Println("  No multi-member clusters.")
	}
	for _, s := range r.Summary {
		fmt.Printf("  %3d  %-24s %-22s size=%-4d growth=%s impact=%s\n",
			s.ID, truncTitle(s.Name, 24), s.Type, s.Size, optional(s.GrowthIndex), optional(s.ImpactIndex))
		if s.Error != "" {
			fmt.Printf("       ! %s\n", s.Error)
		}
	}
	fmt.Printf("  Outliers: %d  Recent outliers: %d\n", len(r.Outliers), len(r.RecentOutliers))

	// Topology
	t := a.Topology
	fmt.Println("\n  TOPOLOGY")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Nodes: %d  Edges: %d  Total weight: %d  Components: %d\n",
		t.TotalNodes, t.TotalEdges, t.TotalWeight, t.NumComponents)
	fmt.Printf("  Largest component: %d  Smallest: %d\n", t.LargestComponent, t.SmallestComponent)
	if t.OrphanCount > 0 {
		fmt.Printf("  Orphans: %d uncoupled publications\n", t.OrphanCount)
		limit := min(5, len(t.OrphanIDs))
		for _, id := range t.OrphanIDs[:limit] {
			title := "?"
			if v, ok := r.Graph.Vertex(id); ok {
				title = truncTitle(v.Title, 50)
			}
			fmt.Printf("    - %s (%s)\n", truncID(id), title)
		}
		if t.OrphanCount > 5 {
			fmt.Printf("    ... and %d more\n", t.OrphanCount-5)
		}
	}

	// Degree distribution
	fmt.Println("\n  Degree distribution:")
	for _, b := range t.DegreeHistogram {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			fmt.Printf("    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	// Hubs
	if len(t.Hubs) > 0 {
		fmt.Println("\n  Top hubs (degree > threshold):")
		for _, hub := range t.Hubs {
			fmt.Printf("    %s degree=%d strength=%d  %s\n",
				truncID(hub.ID), hub.Degree, hub.Strength, truncTitle(hub.Title, 40))
		}
	}

	// Bridges
	br := a.Bridges
	if br.APCount > 0 || br.BridgeCount > 0 || len(br.WeakLinks) > 0 {
		fmt.Println("\n  STRUCTURAL FRAGILITY")
		fmt.Println("  ────────────────────────────────────────")
		if br.APCount > 0 {
			fmt.Printf("  %d articulation points (removal splits a component):\n", br.APCount)
			for _, ap := range br.ArticulationPoints[:min(10, len(br.ArticulationPoints))] {
				fmt.Printf("    %s (degree %d)  %s\n", truncID(ap.ID), ap.Degree, truncTitle(ap.Title, 40))
			}
		}
		if br.BridgeCount > 0 {
			fmt.Printf("  %d bridge couplings:\n", br.BridgeCount)
			for _, be := range br.BridgeEdges[:min(10, len(br.BridgeEdges))] {
				fmt.Printf("    %s -- %s (weight %d)\n", truncID(be.Source), truncID(be.Target), be.Weight)
			}
		}
		if len(br.WeakLinks) > 0 {
			fmt.Printf("  %d weak links between clusters (<=2 couplings):\n", len(br.WeakLinks))
			for _, wl := range br.WeakLinks[:min(10, len(br.WeakLinks))] {
				s := ""
				if wl.CrossEdges != 1 {
					s = "s"
				}
				fmt.Printf("    cluster %d <-> cluster %d (%d coupling%s)\n", wl.ClusterA, wl.ClusterB, wl.CrossEdges, s)
			}
		}
	}

	if len(result.Outputs) > 0 {
		fmt.Println("\n  Written:")
		for _, p := range result.Outputs {
			fmt.Printf("    %s\n", p)
		}
	}
	fmt.Println()
}

func optional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}
