package store

const Schema = `
CREATE TABLE IF NOT EXISTS labels (
	owner_id TEXT NOT NULL,
	id TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT 1,
	status TEXT NOT NULL,
	current_page INTEGER NOT NULL DEFAULT 1,
	total_pages INTEGER NOT NULL DEFAULT 1,
	retry_count INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (owner_id, id)
);

CREATE INDEX IF NOT EXISTS idx_labels_crawl ON labels(active, status, updated_at);

CREATE TABLE IF NOT EXISTS releases (
	owner_id TEXT NOT NULL,
	id TEXT NOT NULL,
	label_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	artist TEXT NOT NULL DEFAULT '',
	catalog_number TEXT NOT NULL DEFAULT '',
	artwork_url TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	genres TEXT,        -- JSON array
	styles TEXT,        -- JSON array
	contributors TEXT,  -- JSON array
	release_order INTEGER NOT NULL DEFAULT 0,
	match_confidence REAL NOT NULL DEFAULT 0,
	youtube_matched BOOLEAN NOT NULL DEFAULT 0,
	processing_error TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (owner_id, id)
);

CREATE INDEX IF NOT EXISTS idx_releases_label_order ON releases(owner_id, label_id, status, release_order);

CREATE TABLE IF NOT EXISTS tracks (
	owner_id TEXT NOT NULL,
	id TEXT NOT NULL,
	release_id TEXT NOT NULL,
	track_index INTEGER NOT NULL,
	position TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	duration TEXT NOT NULL DEFAULT '',
	artist TEXT NOT NULL DEFAULT '',
	listened BOOLEAN NOT NULL DEFAULT 0,
	saved BOOLEAN NOT NULL DEFAULT 0,
	PRIMARY KEY (owner_id, id)
);

CREATE INDEX IF NOT EXISTS idx_tracks_release ON tracks(owner_id, release_id, track_index);

CREATE TABLE IF NOT EXISTS video_matches (
	owner_id TEXT NOT NULL,
	id TEXT PRIMARY KEY,
	track_id TEXT NOT NULL,
	video_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	channel TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	score INTEGER NOT NULL DEFAULT 0,
	match_rank INTEGER NOT NULL DEFAULT 0,
	embeddable BOOLEAN NOT NULL DEFAULT 1,
	chosen BOOLEAN NOT NULL DEFAULT 0,
	fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_track_video ON video_matches(owner_id, track_id, video_id);

-- At most one chosen match per track
CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_chosen ON video_matches(owner_id, track_id)
WHERE chosen = 1;

CREATE TABLE IF NOT EXISTS queue_items (
	owner_id TEXT NOT NULL,
	id TEXT PRIMARY KEY,
	video_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	track_id TEXT,
	release_id TEXT,
	label_id TEXT,
	source TEXT NOT NULL,
	priority INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	added_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_queue_status ON queue_items(owner_id, status, priority DESC, added_at);

-- Prevent duplicate pending items for the same track and video
CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_pending_track ON queue_items(owner_id, track_id, video_id)
WHERE status = 'pending' AND track_id IS NOT NULL;

-- One pending release-level item per release
CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_pending_release ON queue_items(owner_id, release_id)
WHERE status = 'pending' AND track_id IS NULL;

CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	data BLOB,
	expires_at DATETIME
);
`
