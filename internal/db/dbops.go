package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"meeting-notifier/internal/models"

	"github.com/lib/pq" // registers the postgres driver
)

// Client handles database operations.
type Client struct {
	db *sql.DB
}

// NewClient initializes a new database client.
func NewClient(driverName, dataSourceName string) (*Client, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection with driver '%s': %w", driverName, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Client{db: db}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Record appends one dispatch record to the audit log.
func (c *Client) Record(ctx context.Context, rec models.DispatchRecord) error {
	const query = `
    INSERT INTO dispatch_log (request_id, meeting_id, recipients, subject, outcome, preview_url, error_message)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id`

	var id int64
	err := c.db.QueryRowContext(ctx, query,
		rec.RequestID,
		rec.MeetingID,
		recipientsArg(rec.Recipients),
		rec.Subject,
		string(rec.Outcome),
		nullString(rec.PreviewURL),
		nullString(rec.ErrorMessage),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert dispatch record for meeting '%s': %w", rec.MeetingID, err)
	}
	return nil
}

// List returns the most recent dispatch records, newest first.
func (c *Client) List(ctx context.Context, limit int) ([]models.DispatchRecord, error) {
	const query = `
    SELECT id, request_id, meeting_id, recipients, subject, outcome,
           COALESCE(preview_url, ''), COALESCE(error_message, ''), created_at
    FROM dispatch_log
    ORDER BY created_at DESC, id DESC
    LIMIT $1`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatch log: %w", err)
	}
	defer rows.Close()

	var records []models.DispatchRecord
	for rows.Next() {
		var rec models.DispatchRecord
		var outcome string
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.MeetingID, pq.Array(&rec.Recipients),
			&rec.Subject, &outcome, &rec.PreviewURL, &rec.ErrorMessage, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch record: %w", err)
		}
		rec.Outcome = models.Outcome(outcome)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dispatch log: %w", err)
	}
	return records, nil
}

// recipientsArg encodes a nil list as an empty array; pq sends nil slices as NULL.
func recipientsArg(recipients []string) driver.Valuer {
	if recipients == nil {
		recipients = []string{}
	}
	return pq.StringArray(recipients)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
