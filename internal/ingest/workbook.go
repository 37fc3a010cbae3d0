package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"scholarmap/bibnet/internal/corpus"
)

// Column headers of the retrieval workbook.
const (
	ColResultID         = "Result_id"
	ColTitle            = "Title"
	ColYear             = "Year"
	ColAbstract         = "Abstract"
	ColAuthors          = "Authors"
	ColHyperlink        = "Hyperlink"
	ColCitations        = "No_of_citations"
	ColKind             = "Type of Pub"
	ColCitingIDs        = "Citing_pubs_id"
	ColTopicNumber      = "Topic Number"
	ColTopic            = "Topic"
	ColTopicProbability = "Topic Probability"
)

// columns maps a lower-cased header to its column index.
type columns map[string]int

func newColumns(header []string) columns {
	c := make(columns, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := c[key]; !dup && key != "" {
			c[key] = i
		}
	}
	return c
}

func (c columns) has(name string) bool {
	_, ok := c[strings.ToLower(name)]
	return ok
}

// cell returns the value of the named column, "" for absent columns and short rows.
func (c columns) cell(row []string, name string) string {
	i, ok := c[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadWorkbook reads publications from the first sheet of an xlsx workbook.
func ReadWorkbook(path string) ([]corpus.Publication, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]corpus.Publication, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := newColumns(rows[0])
	if !cols.has(ColResultID) {
		return nil, fmt.Errorf("missing %q column", ColResultID)
	}

	var pubs []corpus.Publication
	for i, row := range rows[1:] {
		line := i + 2
		id := cols.cell(row, ColResultID)
		if id == "" {
			// blank spacer rows are common in exported sheets
			continue
		}
		p, err := rowToPublication(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", line, id, err)
		}
		if err := corpus.Validate(p); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		pubs = append(pubs, p)
	}
	return pubs, nil
}

func rowToPublication(cols columns, row []string) (corpus.Publication, error) {
	citations, err := ParseCount(cols.cell(row, ColCitations))
	if err != nil {
		return corpus.Publication{}, fmt.Errorf("parsing %s: %w", ColCitations, err)
	}

	topic := corpus.Topic{Number: corpus.NoTopic, Label: cols.cell(row, ColTopic)}
	if raw := cols.cell(row, ColTopicNumber); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return corpus.Publication{}, fmt.Errorf("parsing %s: %w", ColTopicNumber, err)
		}
		topic.Number = n
	}
	if raw := cols.cell(row, ColTopicProbability); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return corpus.Publication{}, fmt.Errorf("parsing %s: %w", ColTopicProbability, err)
		}
		topic.Probability = p
	}

	return corpus.Publication{
		ID:            cols.cell(row, ColResultID),
		Title:         cols.cell(row, ColTitle),
		Abstract:      cols.cell(row, ColAbstract),
		Year:          ParseYear(cols.cell(row, ColYear)),
		Authors:       SplitAuthors(cols.cell(row, ColAuthors)),
		CitationCount: citations,
		Hyperlink:     cols.cell(row, ColHyperlink),
		Kind:          ParseKind(cols.cell(row, ColKind)),
		CitingIDs:     SplitCitingIDs(cols.cell(row, ColCitingIDs)),
		Topic:         topic,
	}, nil
}
