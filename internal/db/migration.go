package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Migrate makes sure the dispatch_log table and its indexes exist.
func (c *Client) Migrate(ctx context.Context, log zerolog.Logger) error {
	// Summary bodies are deliberately absent: only delivery metadata is kept.
	const createDispatchLogSQL = `
    CREATE TABLE IF NOT EXISTS dispatch_log (
        id SERIAL PRIMARY KEY,
        request_id TEXT NOT NULL,
        meeting_id TEXT NOT NULL,
        recipients TEXT[] NOT NULL DEFAULT '{}',
        subject TEXT NOT NULL DEFAULT '',
        outcome TEXT NOT NULL,
        preview_url TEXT,
        error_message TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`

	if _, err := c.db.ExecContext(ctx, createDispatchLogSQL); err != nil {
		return fmt.Errorf("failed to create 'dispatch_log' table: %w", err)
	}
	log.Info().Msg("table 'dispatch_log' is ready")

	const createIndexSQL = `CREATE INDEX IF NOT EXISTS idx_dispatch_log_meeting_id ON dispatch_log(meeting_id);`
	if _, err := c.db.ExecContext(ctx, createIndexSQL); err != nil {
		log.Warn().Err(err).Msg("failed to create index on 'dispatch_log'")
	}

	log.Info().Msg("database migration checked/completed")
	return nil
}
