package export

import (
	"fmt"
	"strings"

	"scholarmap/bibnet/internal/ingest"
)

// Table names, also used as sheet names and file stems.
const (
	TableNetwork        = "Network"
	TableCitedBy        = "Cited By"
	TableMembers        = "Cluster Members"
	TableOutliers       = "Outliers"
	TableRecentOutliers = "Recent Outliers"
	TableSummary        = "Summary"
	TableSeries         = "Series"
)

// Table is a flat rendition of one report section.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

var networkHeader = []string{
	"Pub_1", "Pub_2", "Weight", "Interaction", "Cluster",
	"Pub_1_title", "Pub_1_year", "Pub_1_type",
	"Pub_2_title", "Pub_2_year", "Pub_2_type",
}

// publicationHeader matches the ingest workbook so member sheets can be read back.
var publicationHeader = []string{
	"Cluster", ingest.ColResultID, ingest.ColTitle, ingest.ColAbstract, ingest.ColYear, ingest.ColAuthors,
	ingest.ColHyperlink, ingest.ColCitations, ingest.ColKind, ingest.ColCitingIDs,
	ingest.ColTopicNumber, ingest.ColTopic, ingest.ColTopicProbability,
}

// Tables flattens the report in a fixed order.
func (r *Report) Tables() []Table {
	return []Table{
		networkTable(TableNetwork, r.Network),
		networkTable(TableCitedBy, r.CitedBy),
		publicationTable(TableMembers, r.Members),
		publicationTable(TableOutliers, r.Outliers),
		publicationTable(TableRecentOutliers, r.RecentOutliers),
		summaryTable(r.Summary),
		seriesTable(r.Series),
	}
}

func networkTable(name string, rows []NetworkRow) Table {
	t := Table{Name: name, Header: networkHeader}
	for _, n := range rows {
		var c any = ""
		if n.Cluster != 0 {
			c = n.Cluster
		}
		t.Rows = append(t.Rows, []any{
			n.Source.ID, n.Target.ID, n.Weight, n.Interaction, c,
			n.Source.Title, n.Source.Year, n.Source.Kind,
			n.Target.Title, n.Target.Year, n.Target.Kind,
		})
	}
	return t
}

func publicationTable(name string, rows []PublicationRow) Table {
	t := Table{Name: name, Header: publicationHeader}
	for _, p := range rows {
		var c any = ""
		if p.Cluster != 0 {
			c = p.Cluster
		}
		t.Rows = append(t.Rows, []any{
			c, p.ID, p.Title, p.Abstract, p.Year, strings.Join(p.Authors, ", "),
			p.Hyperlink, p.CitationCount, p.Kind, strings.Join(p.CitingIDs, ";"),
			p.TopicNumber, p.Topic, p.TopicProbability,
		})
	}
	return t
}

func summaryTable(rows []ClusterSummary) Table {
	t := Table{Name: TableSummary, Header: []string{"Cluster", "Name", "Type", "Size", "Growth Index", "Impact Index", "Error"}}
	for _, s := range rows {
		t.Rows = append(t.Rows, []any{s.ID, s.Name, string(s.Type), s.Size, optional(s.GrowthIndex), optional(s.ImpactIndex), s.Error})
	}
	return t
}

func seriesTable(rows []SeriesRow) Table {
	t := Table{Name: TableSeries, Header: []string{"Cluster", "Year", "Cumulative Count"}}
	for _, s := range rows {
		t.Rows = append(t.Rows, []any{s.Cluster, s.Year, s.Count})
	}
	return t
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// Writer writes a report into a directory.
type Writer interface {
	Format() string
	Write(r *Report, dir string) ([]string, error)
}

// Formats lists the formats NewWriter accepts.
var Formats = []string{"xlsx", "json", "yaml", "graphml"}

// NewWriter returns the writer for a format name.
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "xlsx":
		return XLSXWriter{}, nil
	case "json":
		return JSONWriter{Indent: "  "}, nil
	case "yaml", "yml":
		return YAMLWriter{}, nil
	case "graphml":
		return GraphMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}
