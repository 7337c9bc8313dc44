package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		platform TEXT NOT NULL DEFAULT '',
		meeting_url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'recording',
		duration INTEGER NOT NULL DEFAULT 0,
		participants_count INTEGER NOT NULL DEFAULT 0,
		audio_path TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		key_points JSONB NOT NULL DEFAULT '[]',
		action_items JSONB NOT NULL DEFAULT '[]',
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ended_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_user ON meetings (user_id, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transcript_segments (
		id UUID PRIMARY KEY,
		meeting_id UUID NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		start_time DOUBLE PRECISION NOT NULL,
		end_time DOUBLE PRECISION NOT NULL,
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		speaker TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_segments_meeting ON transcript_segments (meeting_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS highlights (
		id UUID PRIMARY KEY,
		meeting_id UUID NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time DOUBLE PRECISION NOT NULL,
		end_time DOUBLE PRECISION NOT NULL,
		transcript_text TEXT NOT NULL DEFAULT '',
		tags JSONB NOT NULL DEFAULT '[]'
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrationStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
