package database

// postgresSchema creates the tables used by the engine.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS settled_bets (
	id UUID PRIMARY KEY,
	stake DOUBLE PRECISION NOT NULL,
	actual_gain DOUBLE PRECISION NOT NULL DEFAULT 0,
	outcome TEXT NOT NULL,
	selection_text TEXT NOT NULL DEFAULT '',
	match_name TEXT NOT NULL DEFAULT '',
	bet_type TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	settled_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_settled_bets_settled_at ON settled_bets (settled_at);

CREATE TABLE IF NOT EXISTS learning_metrics (
	dimension_kind TEXT NOT NULL,
	dimension_key TEXT NOT NULL,
	wins INTEGER NOT NULL,
	total INTEGER NOT NULL,
	cumulative_roi_percent DOUBLE PRECISION NOT NULL,
	confidence_adjustment INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (dimension_kind, dimension_key)
);
`

// sqliteSchema mirrors postgresSchema for the embedded store.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS settled_bets (
	id TEXT PRIMARY KEY,
	stake REAL NOT NULL,
	actual_gain REAL NOT NULL DEFAULT 0,
	outcome TEXT NOT NULL,
	selection_text TEXT NOT NULL DEFAULT '',
	match_name TEXT NOT NULL DEFAULT '',
	bet_type TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	settled_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_settled_bets_settled_at ON settled_bets (settled_at);

CREATE TABLE IF NOT EXISTS learning_metrics (
	dimension_kind TEXT NOT NULL,
	dimension_key TEXT NOT NULL,
	wins INTEGER NOT NULL,
	total INTEGER NOT NULL,
	cumulative_roi_percent REAL NOT NULL,
	confidence_adjustment INTEGER NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (dimension_kind, dimension_key)
);
`
