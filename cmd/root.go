package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"scholarmap/bibnet/internal/config"
	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/db"
	"scholarmap/bibnet/internal/observability"
)

// dbFileName is the database file looked up from the working directory upwards.
const dbFileName = ".bibnet.db"

var (
	dbPath     string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "bibnet",
	Short:         "Bibliographic coupling networks and cluster analytics",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .bibnet.db database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to bibnet.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
}

// loadConfig loads the configuration and builds the logger it describes.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	})
	return cfg, logger, nil
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > config.
// With create set, the flag or config path is returned even if the file does
// not exist yet.
func DiscoverDB(cfg *config.Config, create bool) (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("BIBNET_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil || create {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil || create {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, dbFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. Configured path
	if p := cfg.Store.DBPath; p != "" {
		if _, err := os.Stat(p); err == nil || create {
			return p, nil
		}
	}

	return "", fmt.Errorf("no %s found (set BIBNET_DB, use --db, or run bibnet import first)", dbFileName)
}

// OpenDatabase discovers and opens the database
func OpenDatabase(cfg *config.Config, create bool) (*db.DB, error) {
	path, err := DiscoverDB(cfg, create)
	if err != nil {
		return nil, err
	}
	return db.OpenDB(path)
}

// ResolvePublication finds a publication by full id, id prefix, or title search.
func ResolvePublication(ctx context.Context, d *db.DB, reference string) (*corpus.Publication, error) {
	// 1. Exact ID match
	p, err := d.GetPublication(ctx, reference)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// 2. ID prefix match
	matches, err := d.SearchByIDPrefix(ctx, reference, 10)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		// fall through to title search
	case 1:
		return &matches[0], nil
	default:
		return nil, ambiguous(reference, matches, "Use a full publication id instead.")
	}

	// 3. Title search
	matches, err = d.SearchByTitle(ctx, reference, 10)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("publication not found: %s", reference)
	case 1:
		return &matches[0], nil
	default:
		return nil, ambiguous(reference, matches, "Use a publication id instead.")
	}
}

func ambiguous(reference string, matches []corpus.Publication, hint string) error {
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("  %s %s", truncID(m.ID), truncTitle(m.Title, 60))
	}
	return fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\n%s",
		reference, len(matches), strings.Join(lines, "\n"), hint)
}

func truncID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
