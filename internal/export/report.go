// Package export assembles the tables of an analysis run and writes them out.
package export

import (
	"time"

	"scholarmap/bibnet/internal/graph"
	"scholarmap/bibnet/internal/indices"
)

// Interaction labels of network rows.
const (
	InteractionCouple  = "Bibliographic Couple"
	InteractionCitedBy = "Cited By"
)

// Endpoint is the publication data repeated on each side of a network row.
type Endpoint struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Year  int    `json:"year" yaml:"year"`
	Kind  string `json:"kind" yaml:"kind"`
}

// NetworkRow is a coupling or citation edge. Cluster is 0 for cited-by rows.
type NetworkRow struct {
	Source      Endpoint `json:"source" yaml:"source"`
	Target      Endpoint `json:"target" yaml:"target"`
	Weight      int      `json:"weight" yaml:"weight"`
	Interaction string   `json:"interaction" yaml:"interaction"`
	Cluster     int      `json:"cluster,omitempty" yaml:"cluster,omitempty"`
}

// PublicationRow is a publication joined to its cluster (0 for outliers).
type PublicationRow struct {
	Cluster          int      `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	ID               string   `json:"result_id" yaml:"result_id"`
	Title            string   `json:"title" yaml:"title"`
	Abstract         string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Year             int      `json:"year" yaml:"year"`
	Authors          []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	CitationCount    int      `json:"citation_count" yaml:"citation_count"`
	Hyperlink        string   `json:"hyperlink,omitempty" yaml:"hyperlink,omitempty"`
	Kind             string   `json:"kind" yaml:"kind"`
	CitingIDs        []string `json:"citing_ids,omitempty" yaml:"citing_ids,omitempty"`
	TopicNumber      int      `json:"topic_number" yaml:"topic_number"`
	Topic            string   `json:"topic,omitempty" yaml:"topic,omitempty"`
	TopicProbability float64  `json:"topic_probability" yaml:"topic_probability"`
}

// ClusterSummary holds the derived metrics of one multi-member cluster. A
// metric that failed is nil and its error is recorded in Error.
type ClusterSummary struct {
	ID          int                 `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Type        indices.ClusterType `json:"type" yaml:"type"`
	Size        int                 `json:"size" yaml:"size"`
	GrowthIndex *float64            `json:"growth_index" yaml:"growth_index"`
	ImpactIndex *float64            `json:"impact_index" yaml:"impact_index"`
	Error       string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// SeriesRow is one point of a cluster's cumulative yearly series.
type SeriesRow struct {
	Cluster int `json:"cluster" yaml:"cluster"`
	Year    int `json:"year" yaml:"year"`
	Count   int `json:"count" yaml:"count"`
}

// Params records the parameters a report was produced with.
type Params struct {
	MinStrength int            `json:"min_strength" yaml:"min_strength"`
	Window      indices.Window `json:"window" yaml:"window"`
	Oracle      string         `json:"oracle" yaml:"oracle"`
	Resolution  float64        `json:"resolution" yaml:"resolution"`
	Seed        uint64         `json:"seed" yaml:"seed"`
	CurrentYear int            `json:"current_year" yaml:"current_year"`
}

// Report is the complete output of one run.
type Report struct {
	RunID          string                `json:"run_id" yaml:"run_id"`
	CreatedAt      time.Time             `json:"created_at" yaml:"created_at"`
	Params         Params                `json:"params" yaml:"params"`
	Publications   int                   `json:"publications" yaml:"publications"`
	Modularity     float64               `json:"modularity" yaml:"modularity"`
	Network        []NetworkRow          `json:"network" yaml:"network"`
	CitedBy        []NetworkRow          `json:"cited_by" yaml:"cited_by"`
	Members        []PublicationRow      `json:"members" yaml:"members"`
	Outliers       []PublicationRow      `json:"outliers" yaml:"outliers"`
	RecentOutliers []PublicationRow      `json:"recent_outliers" yaml:"recent_outliers"`
	Summary        []ClusterSummary      `json:"summary" yaml:"summary"`
	Series         []SeriesRow           `json:"series" yaml:"series"`
	Analysis       *graph.AnalysisReport `json:"analysis,omitempty" yaml:"analysis,omitempty"`

	// Graph is the coupling graph the report was built from.
	Graph *graph.CouplingGraph `json:"-" yaml:"-"`
	// ClusterOf maps clustered publications to their cluster id.
	ClusterOf map[string]int `json:"-" yaml:"-"`
}

// MetricErrors counts the clusters whose summary recorded an error.
func (r *Report) MetricErrors() int {
	n := 0
	for _, s := range r.Summary {
		if s.Error != "" {
			n++
		}
	}
	return n
}
