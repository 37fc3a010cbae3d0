package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"scholarmap/bibnet/internal/corpus"
)

// ImportPublications replaces the stored corpus with records in one
// transaction and returns the number of distinct publications. Records are
// validated first; the first record of a repeated id wins, and every root
// record is kept as its own listing.
func (d *DB) ImportPublications(ctx context.Context, records []corpus.Publication) (int, error) {
	for _, rec := range records {
		if err := corpus.Validate(rec); err != nil {
			return 0, err
		}
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM citing_links",
		"DELETE FROM root_listings",
		"DELETE FROM publications",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("clearing corpus: %w", err)
		}
	}
	if d.fts {
		if _, err := tx.ExecContext(ctx, "DELETE FROM publications_fts"); err != nil {
			return 0, fmt.Errorf("clearing search index: %w", err)
		}
	}

	insertPub, err := tx.PrepareContext(ctx, `INSERT INTO publications (
		position, `+publicationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insertPub.Close()

	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		if !seen[rec.ID] {
			seen[rec.ID] = true
			authors, err := encodeList(rec.Authors)
			if err != nil {
				return 0, err
			}
			citing, err := encodeList(rec.CitingIDs)
			if err != nil {
				return 0, err
			}
			if _, err := insertPub.ExecContext(ctx, i,
				rec.ID, rec.Title, rec.Abstract, rec.Year, authors, rec.CitationCount, rec.Hyperlink, string(rec.Kind),
				citing, rec.Topic.Number, rec.Topic.Label, rec.Topic.Probability,
			); err != nil {
				return 0, fmt.Errorf("inserting publication %s: %w", rec.ID, err)
			}
			if d.fts {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO publications_fts (id, title, abstract) VALUES (?, ?, ?)",
					rec.ID, rec.Title, rec.Abstract,
				); err != nil {
					return 0, fmt.Errorf("indexing publication %s: %w", rec.ID, err)
				}
			}
		}
		if !rec.IsRoot() {
			continue
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO root_listings (seq, root_id) VALUES (?, ?)", i, rec.ID); err != nil {
			return 0, fmt.Errorf("inserting root listing %s: %w", rec.ID, err)
		}
		for j, cid := range rec.CitingIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO citing_links (seq, root_id, position, citing_id) VALUES (?, ?, ?, ?)",
				i, rec.ID, j, cid,
			); err != nil {
				return 0, fmt.Errorf("inserting citing link %s -> %s: %w", rec.ID, cid, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return len(seen), nil
}

type sequenced struct {
	seq int
	pub corpus.Publication
}

// LoadStore rebuilds the in-memory Store from the stored corpus, replaying
// the records in import order so that repeated root listings survive.
func (d *DB) LoadStore(ctx context.Context) (*corpus.Store, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT position, `+publicationColumns+` FROM publications ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading publications: %w", err)
	}
	var records []sequenced
	byID := make(map[string]corpus.Publication)
	for rows.Next() {
		var pos int
		p, err := scanPublication(rowWithPrefix{rows, &pos})
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, sequenced{seq: pos, pub: p})
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	dups, err := d.repeatedListings(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range dups {
		p, ok := byID[l.pub.ID]
		if !ok {
			continue
		}
		p.Kind = corpus.KindRoot
		p.CitingIDs = l.pub.CitingIDs
		records = append(records, sequenced{seq: l.seq, pub: p})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	pubs := make([]corpus.Publication, len(records))
	for i, r := range records {
		pubs[i] = r.pub
	}
	return corpus.NewStore(pubs)
}

// repeatedListings returns the root listings that were not the first record
// of their publication, with their own citing sets.
func (d *DB) repeatedListings(ctx context.Context) ([]sequenced, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT rl.seq, rl.root_id, cl.citing_id
		FROM root_listings rl
		JOIN publications p ON p.id = rl.root_id
		LEFT JOIN citing_links cl ON cl.seq = rl.seq
		WHERE rl.seq <> p.position
		ORDER BY rl.seq, cl.position
	`)
	if err != nil {
		return nil, fmt.Errorf("loading root listings: %w", err)
	}
	defer rows.Close()

	var out []sequenced
	for rows.Next() {
		var (
			seq    int
			rootID string
			cid    sql.NullString
		)
		if err := rows.Scan(&seq, &rootID, &cid); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].seq != seq {
			out = append(out, sequenced{seq: seq, pub: corpus.Publication{ID: rootID, CitingIDs: []string{}}})
		}
		if cid.Valid {
			last := &out[len(out)-1]
			last.pub.CitingIDs = append(last.pub.CitingIDs, cid.String)
		}
	}
	return out, rows.Err()
}

// rowWithPrefix scans one leading column into pos before the publication columns.
type rowWithPrefix struct {
	scanner interface{ Scan(dest ...any) error }
	pos     *int
}

func (r rowWithPrefix) Scan(dest ...any) error {
	return r.scanner.Scan(append([]any{r.pos}, dest...)...)
}

// CountPublications returns the number of stored publications.
func (d *DB) CountPublications(ctx context.Context) (int, error) {
	var n int
	err := d.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM publications").Scan(&n)
	return n, err
}

// GetPublication returns a single publication by id. A missing id returns
// sql.ErrNoRows.
func (d *DB) GetPublication(ctx context.Context, id string) (*corpus.Publication, error) {
	row := d.conn.QueryRowContext(ctx, `SELECT `+publicationColumns+` FROM publications WHERE id = ?`, id)
	p, err := scanPublication(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CitedBy returns the ids of the roots whose citing sets list id.
func (d *DB) CitedBy(ctx context.Context, id string) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx,
		"SELECT DISTINCT root_id FROM citing_links WHERE citing_id = ? ORDER BY root_id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var rid string
		if err := rows.Scan(&rid); err != nil {
			return nil, err
		}
		ids = append(ids, rid)
	}
	return ids, rows.Err()
}
