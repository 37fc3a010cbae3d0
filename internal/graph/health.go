package graph

import "math"

// CohesionBreakdown shows the sub-scores of the cohesion formula
type CohesionBreakdown struct {
	Connectivity float64 `json:"connectivity"`
	Components   float64 `json:"components"`
	Fragility    float64 `json:"fragility"`
}

// AnalysisReport is the full network analysis result
type AnalysisReport struct {
	CohesionScore     float64           `json:"cohesion_score"`
	CohesionBreakdown CohesionBreakdown `json:"cohesion_breakdown"`
	Topology          *TopologyReport   `json:"topology"`
	Bridges           *BridgeReport     `json:"bridges"`
}

// AnalyzerConfig holds analysis parameters
type AnalyzerConfig struct {
	HubThreshold int
	TopN         int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		HubThreshold: 10,
		TopN:         50,
	}
}

// Analyze runs the topology and bridge analyses and combines them into a
// cohesion score in [0, 1]. clusterOf feeds the cluster links of the bridge report.
func Analyze(cg *CouplingGraph, clusterOf map[string]int, config *AnalyzerConfig) *AnalysisReport {
	topology := ComputeTopology(cg, config.HubThreshold, config.TopN)
	bridges := ComputeBridges(cg, clusterOf)

	total := float64(topology.TotalNodes)
	var connectivity, components, fragility float64
	if total > 0 {
		connectivity = clamp(1.0-math.Min(float64(topology.OrphanCount)/total, 0.5)*2.0, 0, 1)
		fragility = clamp(1.0-math.Min(float64(bridges.APCount)/total, 0.05)*20.0, 0, 1)
	}
	if topology.NumComponents > 0 {
		components = clamp(1.0/float64(topology.NumComponents), 0, 1)
	}

	return &AnalysisReport{
		CohesionScore: 0.40*connectivity + 0.30*components + 0.30*fragility,
		CohesionBreakdown: CohesionBreakdown{
			Connectivity: connectivity,
			Components:   components,
			Fragility:    fragility,
		},
		Topology: topology,
		Bridges:  bridges,
	}
}

func clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
