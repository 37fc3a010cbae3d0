package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"scholarmap/bibnet/internal/export"
	"scholarmap/bibnet/internal/indices"
)

// SaveRun stores a report's parameters, cluster assignments and summaries in
// one transaction. Saving the same run id twice replaces the earlier rows.
func (d *DB) SaveRun(ctx context.Context, r *export.Report) error {
	if r.RunID == "" {
		return fmt.Errorf("saving run: empty run id")
	}
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning run save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", r.RunID); err != nil {
		return err
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	p := r.Params
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, oracle, min_strength, min_year, max_year, current_year,
		                  resolution, seed, publications, modularity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, created.UnixMilli(), p.Oracle, p.MinStrength, p.Window.MinYear, p.Window.MaxYear, p.CurrentYear,
		p.Resolution, strconv.FormatUint(p.Seed, 10), r.Publications, r.Modularity,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	sizes := make(map[int]int)
	for _, m := range r.Members {
		sizes[m.Cluster]++
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO run_members (run_id, pub_id, cluster_id, bucket) VALUES (?, ?, ?, ?)",
			r.RunID, m.ID, m.Cluster, BucketCluster,
		); err != nil {
			return fmt.Errorf("inserting member %s: %w", m.ID, err)
		}
	}
	for bucket, rows := range map[string][]export.PublicationRow{
		BucketOutlier:       r.Outliers,
		BucketRecentOutlier: r.RecentOutliers,
	} {
		for _, m := range rows {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO run_members (run_id, pub_id, cluster_id, bucket) VALUES (?, ?, NULL, ?)",
				r.RunID, m.ID, bucket,
			); err != nil {
				return fmt.Errorf("inserting outlier %s: %w", m.ID, err)
			}
		}
	}
	for id, size := range sizes {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO run_clusters (run_id, cluster_id, size) VALUES (?, ?, ?)", r.RunID, id, size,
		); err != nil {
			return fmt.Errorf("inserting cluster %d: %w", id, err)
		}
	}
	for _, s := range r.Summary {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_summaries (run_id, cluster_id, name, type, size, growth_index, impact_index, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, s.ID, s.Name, string(s.Type), s.Size, nullFloat(s.GrowthIndex), nullFloat(s.ImpactIndex), s.Error,
		); err != nil {
			return fmt.Errorf("inserting summary %d: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT r.id, r.created_at, r.oracle, r.min_strength, r.min_year, r.max_year, r.current_year,
		       r.resolution, r.seed, r.publications, r.modularity,
		       (SELECT COUNT(*) FROM run_clusters c WHERE c.run_id = r.id)
		FROM runs r ORDER BY r.created_at DESC, r.id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created int64
			seed    string
		)
		if err := rows.Scan(&r.ID, &created, &r.Oracle, &r.MinStrength, &r.MinYear, &r.MaxYear, &r.CurrentYear,
			&r.Resolution, &seed, &r.Publications, &r.Modularity, &r.Clusters); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(created)
		if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("run %s: bad seed %q: %w", r.ID, seed, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunSummaries returns the cluster summaries of a run ordered by cluster id.
func (d *DB) RunSummaries(ctx context.Context, runID string) ([]export.ClusterSummary, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT cluster_id, name, type, size, growth_index, impact_index, error
		FROM run_summaries WHERE run_id = ? ORDER BY cluster_id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []export.ClusterSummary
	for rows.Next() {
		var (
			s      export.ClusterSummary
			typ    string
			gi, ii sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.Name, &typ, &s.Size, &gi, &ii, &s.Error); err != nil {
			return nil, err
		}
		s.Type = indices.ClusterType(typ)
		if gi.Valid {
			s.GrowthIndex = &gi.Float64
		}
		if ii.Valid {
			s.ImpactIndex = &ii.Float64
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RunAssignments maps each publication of a run to its cluster id, 0 for outliers.
func (d *DB) RunAssignments(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := d.conn.QueryContext(ctx,
		"SELECT pub_id, COALESCE(cluster_id, 0) FROM run_members WHERE run_id = ?", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			id string
			c  int
		)
		if err := rows.Scan(&id, &c); err != nil {
			return nil, err
		}
		out[id] = c
	}
	return out, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
