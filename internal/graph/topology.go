package graph

import "sort"

// HubNode is a publication coupled to many others
type HubNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Degree   int    `json:"degree"`
	Strength int    `json:"strength"`
}

// DegreeBucket is one bucket in the degree histogram
type DegreeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopologyReport contains topology analysis results
type TopologyReport struct {
	TotalNodes        int            `json:"total_nodes"`
	TotalEdges        int            `json:"total_edges"`
	TotalWeight       int            `json:"total_weight"`
	NumComponents     int            `json:"num_components"`
	LargestComponent  int            `json:"largest_component"`
	SmallestComponent int            `json:"smallest_component"`
	OrphanCount       int            `json:"orphan_count"`
	OrphanIDs         []string       `json:"orphan_ids"`
	DegreeHistogram   []DegreeBucket `json:"degree_histogram"`
	Hubs              []HubNode      `json:"hubs"`
}

// ComputeTopology analyzes graph topology: components, orphans, degree distribution, hubs.
// Orphan and hub lists are capped at topN.
func ComputeTopology(cg *CouplingGraph, hubThreshold, topN int) *TopologyReport {
	totalNodes := cg.Len()
	if totalNodes == 0 {
		return &TopologyReport{DegreeHistogram: defaultHistogram()}
	}

	uf := NewUnionFind(totalNodes)
	for _, e := range cg.edges {
		uf.Union(int(cg.index[e.Source]), int(cg.index[e.Target]))
	}
	components := uf.Components()
	largest, smallest := 0, totalNodes
	for _, c := range components {
		largest = max(largest, len(c))
		smallest = min(smallest, len(c))
	}

	nodeIDs := cg.NodeIDs()
	var orphans []string
	var hubs []HubNode
	buckets := [7]int{}
	for _, id := range nodeIDs {
		degree := cg.Degree(id)
		buckets[degreeBucket(degree)]++
		if degree == 0 {
			orphans = append(orphans, id)
		}
		if degree > hubThreshold {
			v, _ := cg.Vertex(id)
			hubs = append(hubs, HubNode{
				ID:       id,
				Title:    v.Title,
				Degree:   degree,
				Strength: cg.Strength(id),
			})
		}
	}
	orphanCount := len(orphans)
	if len(orphans) > topN {
		orphans = orphans[:topN]
	}

	histogram := defaultHistogram()
	for i := range histogram {
		histogram[i].Count = buckets[i]
	}

	sort.SliceStable(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		return hubs[i].Strength > hubs[j].Strength
	})
	if len(hubs) > topN {
		hubs = hubs[:topN]
	}

	return &TopologyReport{
		TotalNodes:        totalNodes,
		TotalEdges:        cg.EdgeCount(),
		TotalWeight:       cg.TotalWeight(),
		NumComponents:     len(components),
		LargestComponent:  largest,
		SmallestComponent: smallest,
		OrphanCount:       orphanCount,
		OrphanIDs:         orphans,
		DegreeHistogram:   histogram,
		Hubs:              hubs,
	}
}

func defaultHistogram() []DegreeBucket {
	return []DegreeBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2-3"},
		{Label: "4-7"}, {Label: "8-15"}, {Label: "16-31"}, {Label: "32+"},
	}
}

func degreeBucket(degree int) int {
	switch {
	case degree == 0:
		return 0
	case degree == 1:
		return 1
	case degree <= 3:
		return 2
	case degree <= 7:
		return 3
	case degree <= 15:
		return 4
	case degree <= 31:
		return 5
	default:
		return 6
	}
}
