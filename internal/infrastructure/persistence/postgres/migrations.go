package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// Schema for the behaviour event log and goal state. Dates are stored as
// the client-submitted strings; derived values are never persisted.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_smoke_logs",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_events",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_goal_states",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS smoke_logs (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	date TEXT NOT NULL,
	cigarettes INTEGER NOT NULL DEFAULT 0 CHECK (cigarettes >= 0),
	triggers TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	CONSTRAINT smoke_logs_user_date_unique UNIQUE (user_id, date)
);

CREATE INDEX IF NOT EXISTS idx_smoke_logs_user_date ON smoke_logs (user_id, date);
`

const migration001Down = `
DROP TABLE IF EXISTS smoke_logs;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS urge_events (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	trigger TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_urge_events_user_ts ON urge_events (user_id, timestamp);

CREATE TABLE IF NOT EXISTS game_sessions (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	seconds_focused INTEGER NOT NULL DEFAULT 0 CHECK (seconds_focused >= 0),
	points_earned INTEGER NOT NULL DEFAULT 0 CHECK (points_earned >= 0),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_game_sessions_user_ts ON game_sessions (user_id, timestamp);
`

const migration002Down = `
DROP TABLE IF EXISTS game_sessions;
DROP TABLE IF EXISTS urge_events;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS goal_states (
	user_id TEXT PRIMARY KEY,
	smoke_free_goal INTEGER NOT NULL CHECK (smoke_free_goal > 0),
	goal_start_date TEXT,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migration003Down = `
DROP TABLE IF EXISTS goal_states;
`
