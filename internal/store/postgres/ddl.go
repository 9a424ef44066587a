package postgres

import "database/sql"

// EnsureSchema creates core tables if they do not exist. Schema evolution
// beyond this bootstrap lives in deployment tooling, not here.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            creation_time TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS growth_areas (
            user_id TEXT NOT NULL,
            area_id TEXT NOT NULL,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            creation_time TIMESTAMPTZ NOT NULL,
            PRIMARY KEY (user_id, area_id),
            UNIQUE (user_id, name)
        )`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
            user_id TEXT NOT NULL,
            entry_id TEXT NOT NULL,
            raw_text TEXT NOT NULL,
            image_url TEXT,
            growth_note JSONB,
            processing_time_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
            ai_model TEXT NOT NULL DEFAULT '',
            api_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
            creation_time TIMESTAMPTZ NOT NULL,
            PRIMARY KEY (user_id, entry_id)
        )`,
		`CREATE INDEX IF NOT EXISTS journal_entries_by_user_time
            ON journal_entries (user_id, creation_time)`,
		`CREATE TABLE IF NOT EXISTS memory_summaries (
            user_id TEXT PRIMARY KEY,
            last_updated TIMESTAMPTZ NOT NULL,
            growth_timelines JSONB NOT NULL DEFAULT '[]'
        )`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
