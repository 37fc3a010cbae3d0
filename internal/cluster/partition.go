package cluster

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/community"

	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/graph"
)

// DefaultOutlierWindow is the number of years before the corpus maximum in
// which a singleton still counts as a recent outlier.
const DefaultOutlierWindow = 3

// Cluster is a multi-member community with its sequential id (from 1).
type Cluster struct {
	ID      int      `json:"id" yaml:"id"`
	Members []string `json:"members" yaml:"members"`
}

// Size returns the number of members.
func (c Cluster) Size() int {
	return len(c.Members)
}

// Partition is the post-processed oracle output.
type Partition struct {
	Oracle         string    `json:"oracle" yaml:"oracle"`
	Modularity     float64   `json:"modularity" yaml:"modularity"`
	Clusters       []Cluster `json:"clusters" yaml:"clusters"`
	Outliers       []string  `json:"outliers" yaml:"outliers"`
	RecentOutliers []string  `json:"recent_outliers" yaml:"recent_outliers"`
}

// ClusterOf maps every clustered publication to its cluster id.
func (p *Partition) ClusterOf() map[string]int {
	m := make(map[string]int)
	for _, c := range p.Clusters {
		for _, id := range c.Members {
			m[id] = c.ID
		}
	}
	return m
}

// Partitioner runs an oracle and routes its communities.
type Partitioner struct {
	Oracle Oracle
	// OutlierWindow: a singleton published fewer than this many years before
	// the corpus maximum is a recent outlier.
	OutlierWindow int
	Resolution    float64
}

// NewPartitioner returns a partitioner with the default outlier window.
func NewPartitioner(o Oracle) *Partitioner {
	return &Partitioner{Oracle: o, OutlierWindow: DefaultOutlierWindow, Resolution: DefaultResolution}
}

// Partition delegates to the oracle, checks that its output covers every
// vertex exactly once, and splits it into clusters (numbered in oracle order)
// and singleton outliers. Every member must resolve in the store.
func (p *Partitioner) Partition(cg *graph.CouplingGraph, store *corpus.Store) (*Partition, error) {
	communities, err := p.Oracle.Partition(cg)
	if err != nil {
		return nil, fmt.Errorf("running %s oracle: %w", p.Oracle.Name(), err)
	}
	if cg.Len() > 0 && len(communities) == 0 {
		return nil, fmt.Errorf("%s oracle on %d vertices: %w", p.Oracle.Name(), cg.Len(), ErrEmptyPartition)
	}
	if err := checkIntegrity(p.Oracle.Name(), cg, communities); err != nil {
		return nil, err
	}

	maxYear := store.MaxYear()
	out := &Partition{Oracle: p.Oracle.Name()}
	for _, c := range communities {
		if len(c) == 0 {
			continue
		}
		for _, id := range c {
			if _, err := store.Lookup(id, "partition"); err != nil {
				return nil, err
			}
		}
		if len(c) > 1 {
			out.Clusters = append(out.Clusters, Cluster{
				ID:      len(out.Clusters) + 1,
				Members: append([]string(nil), c...),
			})
			continue
		}
		pub, _ := store.Get(c[0])
		if maxYear-pub.Year < p.OutlierWindow {
			out.RecentOutliers = append(out.RecentOutliers, pub.ID)
		} else {
			out.Outliers = append(out.Outliers, pub.ID)
		}
	}

	if cg.EdgeCount() > 0 {
		res := p.Resolution
		if res <= 0 {
			res = DefaultResolution
		}
		out.Modularity = community.Q(cg.Gonum(), toNodes(cg, communities), res)
	}
	return out, nil
}

// checkIntegrity verifies that the communities cover every vertex exactly once.
func checkIntegrity(oracle string, cg *graph.CouplingGraph, communities [][]string) error {
	count := make(map[string]int, cg.Len())
	unknown := make(map[string]bool)
	for _, c := range communities {
		for _, id := range c {
			if !cg.Has(id) {
				unknown[id] = true
				continue
			}
			count[id]++
		}
	}

	perr := &PartitionIntegrityError{Oracle: oracle}
	for _, id := range cg.NodeIDs() {
		switch n := count[id]; {
		case n == 0:
			perr.Missing = append(perr.Missing, id)
		case n > 1:
			perr.Duplicated = append(perr.Duplicated, id)
		}
	}
	for id := range unknown {
		perr.Unknown = append(perr.Unknown, id)
	}
	sort.Strings(perr.Unknown)

	if len(perr.Missing) > 0 || len(perr.Duplicated) > 0 || len(perr.Unknown) > 0 {
		return perr
	}
	return nil
}
