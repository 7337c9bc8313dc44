package sqlite

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		platform TEXT NOT NULL DEFAULT '',
		meeting_url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'recording',
		duration INTEGER NOT NULL DEFAULT 0,
		participants_count INTEGER NOT NULL DEFAULT 0,
		audio_path TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		key_points TEXT NOT NULL DEFAULT '[]',
		action_items TEXT NOT NULL DEFAULT '[]',
		started_at TEXT NOT NULL,
		ended_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_user ON meetings (user_id, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transcript_segments (
		id TEXT PRIMARY KEY,
		meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		start_time REAL NOT NULL,
		end_time REAL NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		speaker TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_segments_meeting ON transcript_segments (meeting_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS highlights (
		id TEXT PRIMARY KEY,
		meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time REAL NOT NULL,
		end_time REAL NOT NULL,
		transcript_text TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]'
	)`,
}
