package database

import (
	"context"
	"fmt"
)

// schemaStatements are applied in order at startup. Every statement is
// idempotent, so InitSchema is safe to run on every boot.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'member',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		tags TEXT[] NOT NULL DEFAULT '{}',
		deadline TIMESTAMPTZ,
		type TEXT NOT NULL DEFAULT 'daily task',
		project_id UUID,
		assigned_to TEXT[] NOT NULL DEFAULT '{}',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		in_trash BOOLEAN NOT NULL DEFAULT FALSE,
		source TEXT NOT NULL DEFAULT 'manual',
		comments JSONB NOT NULL DEFAULT '[]',
		versions JSONB NOT NULL DEFAULT '[]',
		history JSONB NOT NULL DEFAULT '[]',
		created_by TEXT NOT NULL,
		created_by_name TEXT NOT NULL DEFAULT '',
		last_editor TEXT NOT NULL DEFAULT '',
		last_editor_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_created_by ON notes (created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_project_id ON notes (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes (created_at)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		priority TEXT NOT NULL DEFAULT 'medium',
		start_date TIMESTAMPTZ,
		end_date TIMESTAMPTZ,
		assigned_users TEXT[] NOT NULL DEFAULT '{}',
		created_by TEXT NOT NULL,
		created_by_name TEXT NOT NULL DEFAULT '',
		in_trash BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS people (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		email TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_rooms (
		id UUID PRIMARY KEY,
		type TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		participants TEXT[] NOT NULL DEFAULT '{}',
		created_by TEXT NOT NULL,
		last_message JSONB,
		last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_rooms_participants ON chat_rooms USING GIN (participants)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		chat_id UUID NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
		sender TEXT NOT NULL,
		sender_name TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'text',
		read_by TEXT[] NOT NULL DEFAULT '{}',
		edited BOOLEAN NOT NULL DEFAULT FALSE,
		edited_at TIMESTAMPTZ,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMPTZ,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages (chat_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS cors_config (
		config_key TEXT PRIMARY KEY,
		allowed_origins TEXT NOT NULL,
		allow_credentials BOOLEAN NOT NULL DEFAULT FALSE,
		max_age INTEGER NOT NULL DEFAULT 300,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ratelimit_config (
		config_key TEXT PRIMARY KEY,
		rate TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// InitSchema creates all tables and indexes if they do not already exist.
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
