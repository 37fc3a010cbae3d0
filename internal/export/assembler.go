package export

import (
	"fmt"
	"sort"

	"scholarmap/bibnet/internal/cluster"
	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/graph"
	"scholarmap/bibnet/internal/indices"
)

// Assembler joins cluster assignments, labels and metrics back onto the
// publication records.
type Assembler struct {
	store *corpus.Store
}

// NewAssembler creates an assembler over the store of the run.
func NewAssembler(store *corpus.Store) *Assembler {
	return &Assembler{store: store}
}

// Input is everything the pipeline produced for one run.
type Input struct {
	RunID     string
	Params    Params
	Graph     *graph.CouplingGraph
	Partition *cluster.Partition
	Summaries []ClusterSummary
	Series    map[int][]indices.YearCount
	Analysis  *graph.AnalysisReport
}

// Assemble builds the report tables. Coupling rows are kept when one of their
// endpoints is clustered and carry that endpoint's cluster (the source's when
// both are). Cited-by rows link each root to its citers once.
func (a *Assembler) Assemble(in Input) (*Report, error) {
	clusterOf := in.Partition.ClusterOf()
	r := &Report{
		RunID:        in.RunID,
		Params:       in.Params,
		Publications: a.store.Len(),
		Modularity:   in.Partition.Modularity,
		Summary:      in.Summaries,
		Analysis:     in.Analysis,
		Graph:        in.Graph,
		ClusterOf:    clusterOf,
	}

	for _, e := range in.Graph.Edges() {
		c := clusterOf[e.Source]
		if c == 0 {
			c = clusterOf[e.Target]
		}
		if c == 0 {
			continue
		}
		row, err := a.networkRow(e.Source, e.Target, e.Weight, InteractionCouple)
		if err != nil {
			return nil, err
		}
		row.Cluster = c
		r.Network = append(r.Network, row)
	}
	sort.SliceStable(r.Network, func(i, j int) bool { return r.Network[i].Cluster < r.Network[j].Cluster })

	seen := make(map[[2]string]bool)
	for _, root := range a.store.Roots() {
		for _, cid := range root.CitingIDs {
			key := [2]string{root.ID, cid}
			if seen[key] {
				continue
			}
			seen[key] = true
			row, err := a.networkRow(root.ID, cid, 1, InteractionCitedBy)
			if err != nil {
				return nil, err
			}
			r.CitedBy = append(r.CitedBy, row)
		}
	}

	for _, c := range in.Partition.Clusters {
		for _, id := range c.Members {
			row, err := a.publicationRow(id, c.ID)
			if err != nil {
				return nil, err
			}
			r.Members = append(r.Members, row)
		}
		for _, yc := range in.Series[c.ID] {
			r.Series = append(r.Series, SeriesRow{Cluster: c.ID, Year: yc.Year, Count: yc.Count})
		}
	}
	for _, id := range in.Partition.Outliers {
		row, err := a.publicationRow(id, 0)
		if err != nil {
			return nil, err
		}
		r.Outliers = append(r.Outliers, row)
	}
	for _, id := range in.Partition.RecentOutliers {
		row, err := a.publicationRow(id, 0)
		if err != nil {
			return nil, err
		}
		r.RecentOutliers = append(r.RecentOutliers, row)
	}
	return r, nil
}

func (a *Assembler) endpoint(id string) (Endpoint, error) {
	p, err := a.store.Lookup(id, "report")
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{ID: p.ID, Title: p.Title, Year: p.Year, Kind: KindLabel(p.Kind)}, nil
}

func (a *Assembler) networkRow(source, target string, weight int, interaction string) (NetworkRow, error) {
	s, err := a.endpoint(source)
	if err != nil {
		return NetworkRow{}, err
	}
	t, err := a.endpoint(target)
	if err != nil {
		return NetworkRow{}, err
	}
	return NetworkRow{Source: s, Target: t, Weight: weight, Interaction: interaction}, nil
}

func (a *Assembler) publicationRow(id string, clusterID int) (PublicationRow, error) {
	p, err := a.store.Lookup(id, fmt.Sprintf("cluster %d", clusterID))
	if err != nil {
		return PublicationRow{}, err
	}
	return PublicationRow{
		Cluster:          clusterID,
		ID:               p.ID,
		Title:            p.Title,
		Abstract:         p.Abstract,
		Year:             p.Year,
		Authors:          p.Authors,
		CitationCount:    p.CitationCount,
		Hyperlink:        p.Hyperlink,
		Kind:             KindLabel(p.Kind),
		CitingIDs:        p.CitingIDs,
		TopicNumber:      p.Topic.Number,
		Topic:            p.Topic.Label,
		TopicProbability: p.Topic.Probability,
	}, nil
}

// KindLabel is the spreadsheet spelling of a publication kind.
func KindLabel(k corpus.Kind) string {
	if k == corpus.KindRoot {
		return "Root Publication"
	}
	return "Citing Publication"
}
