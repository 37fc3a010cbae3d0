// Package indices computes the growth, impact, and emergence metrics of a cluster.
package indices

import "time"

// Window is the inclusive year range of the analysis.
type Window struct {
	MinYear int `json:"min_year" yaml:"min_year"`
	MaxYear int `json:"max_year" yaml:"max_year"`
}

// Period returns MaxYear - MinYear.
func (w Window) Period() int {
	return w.MaxYear - w.MinYear
}

// Check fails with an InvalidWindowError when the period is at most 1.
func (w Window) Check() error {
	if w.Period() <= 1 {
		return &InvalidWindowError{MinYear: w.MinYear, MaxYear: w.MaxYear}
	}
	return nil
}

// cumulative counts the years that are <= upTo. Unknown years (0) always count.
func cumulative(years []int, upTo int) int {
	n := 0
	for _, y := range years {
		if y <= upTo {
			n++
		}
	}
	return n
}

// GrowthIndex weighs the cluster's share of the corpus by its summed
// year-over-year growth, walking back from MaxYear. When a previous year has
// no documents the walk stops and the current cumulative count replaces the
// sum accumulated so far.
func GrowthIndex(years []int, totalDoc int, w Window) (float64, error) {
	if err := w.Check(); err != nil {
		return 0, err
	}
	if len(years) == 0 {
		return 0, ErrEmptyCluster
	}
	if totalDoc <= 0 {
		return 0, ErrNoDocuments
	}

	period := w.Period()
	var sum float64
	for x := 0; x < period; x++ {
		current := cumulative(years, w.MaxYear-x)
		previous := cumulative(years, w.MaxYear-x-1)
		if previous == 0 {
			sum = float64(current)
			break
		}
		sum += float64(current-previous) / float64(previous)
	}

	share := float64(len(years)) / float64(totalDoc)
	return share * (sum / (float64(period-1) * 100)), nil
}

// ImpactIndex is the mean citation count.
func ImpactIndex(citations []int) (float64, error) {
	if len(citations) == 0 {
		return 0, ErrEmptyCluster
	}
	total := 0
	for _, c := range citations {
		total += c
	}
	return float64(total) / float64(len(citations)), nil
}

// ClusterType is the emergence classification of a cluster.
type ClusterType string

const (
	RecentlyEmerging     ClusterType = "Recently Emerging"
	PersistentlyEmerging ClusterType = "Persistently Emerging"
	Neutral              ClusterType = "Neutral"
	Outlier              ClusterType = "Outlier"
)

// Classifier defaults.
const (
	DefaultRecentYears = 3
	DefaultRecentShare = 0.8
)

// Classifier assigns a ClusterType from the publication years of a cluster.
type Classifier struct {
	// CurrentYear anchors "recent"; 0 means the wall clock year.
	CurrentYear int
	// RecentYears: a document is recent if year >= CurrentYear - RecentYears.
	RecentYears int
	// RecentShare is the fraction of recent documents that makes a cluster recently emerging.
	RecentShare float64
}

// NewClassifier returns a classifier with the default thresholds.
func NewClassifier(currentYear int) Classifier {
	return Classifier{CurrentYear: currentYear, RecentYears: DefaultRecentYears, RecentShare: DefaultRecentShare}
}

func (c Classifier) currentYear() int {
	if c.CurrentYear > 0 {
		return c.CurrentYear
	}
	return time.Now().Year()
}

// Classify returns, in priority order: RecentlyEmerging if the recent share
// reaches RecentShare, PersistentlyEmerging if more distinct years are present
// than half the window's period, else Neutral. Unknown years count towards the
// cluster size only. An empty cluster is an Outlier.
func (c Classifier) Classify(years []int, w Window) ClusterType {
	size := len(years)
	if size == 0 {
		return Outlier
	}

	cutoff := c.currentYear() - c.RecentYears
	recent := 0
	distinct := make(map[int]bool)
	for _, y := range years {
		if y == 0 {
			continue
		}
		distinct[y] = true
		if y >= cutoff {
			recent++
		}
	}

	switch {
	case float64(recent)/float64(size) >= c.RecentShare:
		return RecentlyEmerging
	case float64(len(distinct)) > float64(w.Period())/2:
		return PersistentlyEmerging
	default:
		return Neutral
	}
}

// YearCount is one point of a cumulative yearly series.
type YearCount struct {
	Year  int `json:"year" yaml:"year"`
	Count int `json:"count" yaml:"count"`
}

// CumulativeSeries counts the documents published from MinYear up to each
// year of the window. Documents outside the window are not counted.
func CumulativeSeries(years []int, w Window) []YearCount {
	if w.MaxYear < w.MinYear {
		return nil
	}
	perYear := make(map[int]int)
	for _, y := range years {
		perYear[y]++
	}
	series := make([]YearCount, 0, w.MaxYear-w.MinYear+1)
	running := 0
	for y := w.MinYear; y <= w.MaxYear; y++ {
		running += perYear[y]
		series = append(series, YearCount{Year: y, Count: running})
	}
	return series
}
