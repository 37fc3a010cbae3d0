// Package corpus holds the publication records of one analysis run.
package corpus

import "strings"

// Kind distinguishes publications returned by the topic query from the
// publications discovered through their citation lists.
type Kind string

const (
	KindRoot   Kind = "root"
	KindCiting Kind = "citing"
)

// NoTopic is the topic number of a publication the topic model did not assign.
const NoTopic = -1

// Topic is the topic-model assignment of a publication. It is carried through
// to the exported tables and never used for clustering.
type Topic struct {
	Number      int     `json:"number" yaml:"number"`
	Label       string  `json:"label" yaml:"label"`
	Probability float64 `json:"probability" yaml:"probability" validate:"gte=0,lte=1"`
}

// Publication is one record of the corpus. Year 0 means unknown.
type Publication struct {
	ID            string   `json:"result_id" yaml:"result_id" validate:"required"`
	Title         string   `json:"title" yaml:"title"`
	Abstract      string   `json:"abstract" yaml:"abstract"`
	Year          int      `json:"year" yaml:"year" validate:"gte=0"`
	Authors       []string `json:"authors" yaml:"authors"`
	CitationCount int      `json:"citation_count" yaml:"citation_count" validate:"gte=0"`
	Hyperlink     string   `json:"hyperlink" yaml:"hyperlink"`
	Kind          Kind     `json:"kind" yaml:"kind" validate:"oneof=root citing"`
	CitingIDs     []string `json:"citing_ids" yaml:"citing_ids" validate:"dive,required"`
	Topic         Topic    `json:"topic" yaml:"topic"`
}

// IsRoot reports whether p was returned directly by the topic query.
func (p Publication) IsRoot() bool {
	return p.Kind == KindRoot
}

// Text returns the title and abstract joined by a space.
func (p Publication) Text() string {
	return strings.TrimSpace(p.Title + " " + p.Abstract)
}

// AuthorList returns the authors joined with ", ".
func (p Publication) AuthorList() string {
	return strings.Join(p.Authors, ", ")
}

func (p Publication) clone() Publication {
	c := p
	c.Authors = append([]string(nil), p.Authors...)
	c.CitingIDs = append([]string(nil), p.CitingIDs...)
	return c
}
