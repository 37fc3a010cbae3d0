package db

import (
	"context"
	"strings"

	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/label"
)

// BuildFTSQuery preprocesses a natural language query for FTS5: lowercase
// word tokens without stop words and words under 3 chars, joined with " OR ".
func BuildFTSQuery(query string) string {
	var filtered []string
	for _, w := range label.Tokenize(query) {
		if len(w) < 3 {
			continue
		}
		filtered = append(filtered, w)
	}
	return strings.Join(filtered, " OR ")
}

func (d *DB) queryPublications(ctx context.Context, query string, args ...any) ([]corpus.Publication, error) {
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []corpus.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

// SearchByIDPrefix finds publications whose id starts with the given prefix.
func (d *DB) SearchByIDPrefix(ctx context.Context, prefix string, limit int) ([]corpus.Publication, error) {
	return d.queryPublications(ctx,
		`SELECT `+publicationColumns+` FROM publications WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT ?`,
		escapeLike(prefix)+"%", limit)
}

// SearchByTitle finds publications whose title or abstract matches query,
// best match first. Without an FTS5 index it falls back to a case-insensitive
// substring match on the title.
func (d *DB) SearchByTitle(ctx context.Context, query string, limit int) ([]corpus.Publication, error) {
	if !d.fts {
		return d.queryPublications(ctx,
			`SELECT `+publicationColumns+` FROM publications WHERE title LIKE ? ESCAPE '\' ORDER BY position LIMIT ?`,
			"%"+escapeLike(query)+"%", limit)
	}

	ftsQuery := BuildFTSQuery(query)
	if ftsQuery == "" {
		return []corpus.Publication{}, nil
	}
	return d.queryPublications(ctx, `
		SELECT p.id, p.title, p.abstract, p.year, p.authors, p.citation_count, p.hyperlink, p.kind,
		       p.citing_ids, p.topic_number, p.topic_label, p.topic_probability
		FROM publications_fts
		JOIN publications p ON p.id = publications_fts.id
		WHERE publications_fts MATCH ?
		ORDER BY publications_fts.rank
		LIMIT ?
	`, ftsQuery, limit)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
