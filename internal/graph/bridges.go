package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
)

// ArticulationPoint is a publication whose removal splits its component
type ArticulationPoint struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Degree int    `json:"degree"`
}

// BridgeEdge is a coupling whose removal splits its component
type BridgeEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// ClusterLink counts the couplings between two clusters
type ClusterLink struct {
	ClusterA   int `json:"cluster_a"`
	ClusterB   int `json:"cluster_b"`
	CrossEdges int `json:"cross_edges"`
	Weight     int `json:"weight"`
}

// BridgeReport contains bridge analysis results
type BridgeReport struct {
	ArticulationPoints []ArticulationPoint `json:"articulation_points"`
	BridgeEdges        []BridgeEdge        `json:"bridge_edges"`
	WeakLinks          []ClusterLink       `json:"weak_links"`
	APCount            int                 `json:"ap_count"`
	BridgeCount        int                 `json:"bridge_count"`
}

// weakLinkMax is the largest number of cross edges still reported as a weak link.
const weakLinkMax = 2

// ComputeBridges finds articulation points and bridge edges with an iterative
// Tarjan walk, and the cluster pairs joined by at most two couplings.
// clusterOf maps publication ids to cluster ids; ids it lacks (or maps to 0)
// are ignored for the cluster links.
func ComputeBridges(cg *CouplingGraph, clusterOf map[string]int) *BridgeReport {
	n := cg.Len()
	if n == 0 {
		return &BridgeReport{}
	}

	adj := make([][]int, n)
	for i := range adj {
		nodes := gonum.NodesOf(cg.g.From(int64(i)))
		adj[i] = make([]int, len(nodes))
		for j, v := range nodes {
			adj[i][j] = int(v.ID())
		}
		sort.Ints(adj[i])
	}

	type frame struct{ v, parent, next int }
	disc := make([]int, n) // 0 = unvisited
	low := make([]int, n)
	isAP := make([]bool, n)
	var bridgePairs [][2]int
	clock := 0

	for start := 0; start < n; start++ {
		if disc[start] != 0 {
			continue
		}
		clock++
		disc[start], low[start] = clock, clock
		stack := []frame{{v: start, parent: -1}}
		children := 0

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next < len(adj[f.v]) {
				w := adj[f.v][f.next]
				f.next++
				switch {
				case w == f.parent:
				case disc[w] != 0:
					low[f.v] = min(low[f.v], disc[w])
				default:
					clock++
					disc[w], low[w] = clock, clock
					if f.v == start {
						children++
					}
					stack = append(stack, frame{v: w, parent: f.v})
				}
				continue
			}

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				break
			}
			u, v := stack[len(stack)-1].v, f.v
			low[u] = min(low[u], low[v])
			if low[v] > disc[u] {
				bridgePairs = append(bridgePairs, [2]int{u, v})
			}
			if u != start && low[v] >= disc[u] {
				isAP[u] = true
			}
		}
		if children >= 2 {
			isAP[start] = true
		}
	}

	report := &BridgeReport{}
	for i := 0; i < n; i++ {
		if isAP[i] {
			v := cg.vertices[i]
			report.ArticulationPoints = append(report.ArticulationPoints, ArticulationPoint{
				ID: v.ID, Title: v.Title, Degree: len(adj[i]),
			})
		}
	}
	for _, p := range bridgePairs {
		a, b := cg.vertices[p[0]].ID, cg.vertices[p[1]].ID
		if b < a {
			a, b = b, a
		}
		w, _ := cg.Weight(a, b)
		report.BridgeEdges = append(report.BridgeEdges, BridgeEdge{Source: a, Target: b, Weight: w})
	}
	sort.Slice(report.BridgeEdges, func(i, j int) bool {
		if report.BridgeEdges[i].Source != report.BridgeEdges[j].Source {
			return report.BridgeEdges[i].Source < report.BridgeEdges[j].Source
		}
		return report.BridgeEdges[i].Target < report.BridgeEdges[j].Target
	})
	report.WeakLinks = weakClusterLinks(cg.edges, clusterOf)
	report.APCount = len(report.ArticulationPoints)
	report.BridgeCount = len(report.BridgeEdges)
	return report
}

func weakClusterLinks(edges []Edge, clusterOf map[string]int) []ClusterLink {
	type pair struct{ a, b int }
	links := make(map[pair]*ClusterLink)
	for _, e := range edges {
		ca, cb := clusterOf[e.Source], clusterOf[e.Target]
		if ca == 0 || cb == 0 || ca == cb {
			continue
		}
		if ca > cb {
			ca, cb = cb, ca
		}
		l, ok := links[pair{ca, cb}]
		if !ok {
			l = &ClusterLink{ClusterA: ca, ClusterB: cb}
			links[pair{ca, cb}] = l
		}
		l.CrossEdges++
		l.Weight += e.Weight
	}

	var weak []ClusterLink
	for _, l := range links {
		if l.CrossEdges <= weakLinkMax {
			weak = append(weak, *l)
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].CrossEdges != weak[j].CrossEdges {
			return weak[i].CrossEdges < weak[j].CrossEdges
		}
		if weak[i].ClusterA != weak[j].ClusterA {
			return weak[i].ClusterA < weak[j].ClusterA
		}
		return weak[i].ClusterB < weak[j].ClusterB
	})
	return weak
}
