package db

import (
	"encoding/json"
	"time"

	"scholarmap/bibnet/internal/corpus"
)

// Run is a row of the runs table
type Run struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Oracle       string    `json:"oracle"`
	MinStrength  int       `json:"min_strength"`
	MinYear      int       `json:"min_year"`
	MaxYear      int       `json:"max_year"`
	CurrentYear  int       `json:"current_year"`
	Resolution   float64   `json:"resolution"`
	Seed         uint64    `json:"seed"`
	Publications int       `json:"publications"`
	Modularity   float64   `json:"modularity"`
	Clusters     int       `json:"clusters"`
}

const publicationColumns = `id, title, abstract, year, authors, citation_count, hyperlink, kind,
	citing_ids, topic_number, topic_label, topic_probability`

// scanPublication scans a row holding publicationColumns in order.
func scanPublication(scanner interface{ Scan(dest ...any) error }) (corpus.Publication, error) {
	var (
		p       corpus.Publication
		kind    string
		authors string
		citing  string
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Abstract, &p.Year, &authors, &p.CitationCount, &p.Hyperlink, &kind,
		&citing, &p.Topic.Number, &p.Topic.Label, &p.Topic.Probability,
	)
	if err != nil {
		return p, err
	}
	p.Kind = corpus.Kind(kind)
	if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(citing), &p.CitingIDs); err != nil {
		return p, err
	}
	return p, nil
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}
