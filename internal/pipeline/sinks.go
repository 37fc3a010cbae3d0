package pipeline

import (
	"context"
	"fmt"

	"scholarmap/bibnet/internal/config"
	"scholarmap/bibnet/internal/db"
	"scholarmap/bibnet/internal/export"
)

// SQLiteSink stores reports as runs of the database.
type SQLiteSink struct {
	ctx context.Context
	db  *db.DB
}

// NewSQLiteSink returns a sink saving reports into d.
func NewSQLiteSink(ctx context.Context, d *db.DB) *SQLiteSink {
	return &SQLiteSink{ctx: ctx, db: d}
}

func (s *SQLiteSink) Format() string { return config.FormatSQLite }

func (s *SQLiteSink) Write(r *export.Report, _ string) ([]string, error) {
	if err := s.db.SaveRun(s.ctx, r); err != nil {
		return nil, err
	}
	return []string{s.db.Path + "#run=" + r.RunID}, nil
}

// NewSinks builds the writers for the configured formats. The sqlite format
// needs an open database.
func NewSinks(ctx context.Context, formats []string, d *db.DB) ([]export.Writer, error) {
	sinks := make([]export.Writer, 0, len(formats))
	for _, f := range formats {
		if f == config.FormatSQLite {
			if d == nil {
				return nil, fmt.Errorf("output format %s needs a database", f)
			}
			sinks = append(sinks, NewSQLiteSink(ctx, d))
			continue
		}
		w, err := export.NewWriter(f)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
	}
	return sinks, nil
}
