package db

// position and seq are indexes into the imported record sequence, so that
// LoadStore can replay the records in their original order.
const schema = `
CREATE TABLE IF NOT EXISTS publications (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	abstract TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0,
	authors TEXT NOT NULL DEFAULT '[]',
	citation_count INTEGER NOT NULL DEFAULT 0,
	hyperlink TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	citing_ids TEXT NOT NULL DEFAULT '[]',
	topic_number INTEGER NOT NULL DEFAULT -1,
	topic_label TEXT NOT NULL DEFAULT '',
	topic_probability REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_publications_position ON publications(position);

CREATE TABLE IF NOT EXISTS root_listings (
	seq INTEGER PRIMARY KEY,
	root_id TEXT NOT NULL REFERENCES publications(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS citing_links (
	seq INTEGER NOT NULL REFERENCES root_listings(seq) ON DELETE CASCADE,
	root_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	citing_id TEXT NOT NULL,
	PRIMARY KEY (seq, position)
);
CREATE INDEX IF NOT EXISTS idx_citing_links_citing ON citing_links(citing_id);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	oracle TEXT NOT NULL,
	min_strength INTEGER NOT NULL,
	min_year INTEGER NOT NULL,
	max_year INTEGER NOT NULL,
	current_year INTEGER NOT NULL,
	resolution REAL NOT NULL,
	seed TEXT NOT NULL,
	publications INTEGER NOT NULL,
	modularity REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS run_clusters (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	cluster_id INTEGER NOT NULL,
	size INTEGER NOT NULL,
	PRIMARY KEY (run_id, cluster_id)
);

CREATE TABLE IF NOT EXISTS run_members (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	pub_id TEXT NOT NULL,
	cluster_id INTEGER,
	bucket TEXT NOT NULL,
	PRIMARY KEY (run_id, pub_id)
);

CREATE TABLE IF NOT EXISTS run_summaries (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	cluster_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	size INTEGER NOT NULL,
	growth_index REAL,
	impact_index REAL,
	error TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, cluster_id)
);
`

const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS publications_fts USING fts5(id UNINDEXED, title, abstract);
`

// Member buckets of run_members.
const (
	BucketCluster       = "cluster"
	BucketOutlier       = "outlier"
	BucketRecentOutlier = "recent_outlier"
)
