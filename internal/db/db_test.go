package db

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"scholarmap/bibnet/internal/corpus"
	"scholarmap/bibnet/internal/export"
	"scholarmap/bibnet/internal/indices"
)

// setupTestDB opens an in-memory database with the full schema.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func sampleRecords() []corpus.Publication {
	return []corpus.Publication{
		{ID: "r1", Title: "Graph clustering of citation data", Abstract: "Coupling networks", Year: 2018,
			Authors: []string{"Ada", "Grace"}, Kind: corpus.KindRoot, CitingIDs: []string{"c1", "c2"},
			Topic: corpus.Topic{Number: 2, Label: "graphs", Probability: 0.75}},
		{ID: "c1", Title: "Bibliographic coupling revisited", Year: 2020, CitationCount: 12, Kind: corpus.KindCiting,
			Topic: corpus.Topic{Number: corpus.NoTopic}},
		{ID: "c2", Title: "Emerging research fronts", Year: 2021, Kind: corpus.KindCiting,
			Topic: corpus.Topic{Number: corpus.NoTopic}},
		{ID: "r1", Title: "ignored duplicate", Kind: corpus.KindRoot, CitingIDs: []string{"c2"}},
	}
}

func TestImportAndLoadStore(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	n, err := d.ImportPublications(ctx, sampleRecords())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("imported %d publications, want 3", n)
	}

	store, err := d.LoadStore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := corpus.NewStore(sampleRecords())
	if !reflect.DeepEqual(store.IDs(), want.IDs()) {
		t.Errorf("ids = %v, want %v", store.IDs(), want.IDs())
	}
	if !reflect.DeepEqual(store.Roots(), want.Roots()) {
		t.Errorf("roots = %+v, want %+v", store.Roots(), want.Roots())
	}
	got, _ := store.Get("r1")
	if got.Title != "Graph clustering of citation data" {
		t.Errorf("first record should win, got title %q", got.Title)
	}
	if !reflect.DeepEqual(got.Authors, []string{"Ada", "Grace"}) {
		t.Errorf("authors = %v", got.Authors)
	}
	if got.Topic.Probability != 0.75 || got.Topic.Label != "graphs" {
		t.Errorf("topic = %+v", got.Topic)
	}
}

func TestImportReplacesCorpus(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	if _, err := d.ImportPublications(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ImportPublications(ctx, []corpus.Publication{{ID: "x", Kind: corpus.KindCiting}}); err != nil {
		t.Fatal(err)
	}
	n, err := d.CountPublications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d after replace, want 1", n)
	}
	store, err := d.LoadStore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(store.Roots()) != 0 {
		t.Errorf("stale root listings survived: %+v", store.Roots())
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	if _, err := d.ImportPublications(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	_, err := d.ImportPublications(ctx, []corpus.Publication{{ID: "", Kind: corpus.KindCiting}})
	if !errors.Is(err, corpus.ErrInvalidPublication) {
		t.Fatalf("err = %v, want ErrInvalidPublication", err)
	}
	n, _ := d.CountPublications(ctx)
	if n != 3 {
		t.Errorf("failed import must leave the corpus untouched, count = %d", n)
	}
}

func TestGetPublication(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	if _, err := d.ImportPublications(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	p, err := d.GetPublication(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if p.CitationCount != 12 || p.Kind != corpus.KindCiting {
		t.Errorf("got %+v", p)
	}

	_, err = d.GetPublication(ctx, "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}

	roots, err := d.CitedBy(ctx, "c2")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(roots, []string{"r1"}) {
		t.Errorf("CitedBy = %v", roots)
	}
}

func TestSearch(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	recs := append(sampleRecords(), corpus.Publication{ID: "c10", Title: "Another", Kind: corpus.KindCiting})
	if _, err := d.ImportPublications(ctx, recs); err != nil {
		t.Fatal(err)
	}

	byPrefix, err := d.SearchByIDPrefix(ctx, "c1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byPrefix) != 2 || byPrefix[0].ID != "c1" || byPrefix[1].ID != "c10" {
		t.Errorf("prefix search = %v", byPrefix)
	}

	byTitle, err := d.SearchByTitle(ctx, "coupling", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byTitle) == 0 {
		t.Fatal("title search found nothing")
	}
	for _, p := range byTitle {
		if p.ID != "c1" && p.ID != "r1" {
			t.Errorf("unexpected match %s", p.ID)
		}
	}
}

func TestBuildFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Add the flag to a function for parsing", "add OR flag OR function OR parsing"},
		{"go do run fast", "run OR fast"},
		{"the a an in on at", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BuildFTSQuery(tt.in); got != tt.want {
			t.Errorf("BuildFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveRun(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	gi := 0.5
	report := &export.Report{
		RunID:     "run-a",
		CreatedAt: time.UnixMilli(1_700_000_000_000),
		Params: export.Params{
			MinStrength: 2, Window: indices.Window{MinYear: 2010, MaxYear: 2020},
			Oracle: "louvain", Resolution: 1, Seed: 1 << 63,
		},
		Publications:   4,
		Modularity:     0.3,
		Members:        []export.PublicationRow{{Cluster: 1, ID: "a"}, {Cluster: 1, ID: "b"}},
		Outliers:       []export.PublicationRow{{ID: "c"}},
		RecentOutliers: []export.PublicationRow{{ID: "d"}},
		Summary: []export.ClusterSummary{
			{ID: 1, Name: "graph cluster", Type: indices.Neutral, Size: 2, GrowthIndex: &gi, Error: "impact: empty cluster"},
		},
	}
	if err := d.SaveRun(ctx, report); err != nil {
		t.Fatal(err)
	}
	// Saving again replaces rather than duplicates.
	if err := d.SaveRun(ctx, report); err != nil {
		t.Fatal(err)
	}

	runs, err := d.ListRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.Seed != 1<<63 || r.Clusters != 1 || r.MinStrength != 2 || r.Oracle != "louvain" {
		t.Errorf("run = %+v", r)
	}

	sums, err := d.RunSummaries(ctx, "run-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 {
		t.Fatalf("got %d summaries", len(sums))
	}
	if sums[0].GrowthIndex == nil || *sums[0].GrowthIndex != 0.5 {
		t.Errorf("growth index = %v", sums[0].GrowthIndex)
	}
	if sums[0].ImpactIndex != nil {
		t.Errorf("impact index should be NULL, got %v", *sums[0].ImpactIndex)
	}
	if sums[0].Type != indices.Neutral {
		t.Errorf("type = %q", sums[0].Type)
	}

	assign, err := d.RunAssignments(ctx, "run-a")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"a": 1, "b": 1, "c": 0, "d": 0}
	if !reflect.DeepEqual(assign, want) {
		t.Errorf("assignments = %v, want %v", assign, want)
	}
}

func TestSaveRunRequiresID(t *testing.T) {
	d := setupTestDB(t)
	if err := d.SaveRun(context.Background(), &export.Report{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}
