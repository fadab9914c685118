package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/gemshot/internal/errors"
)

// Event is one row of the activity journal.
type Event struct {
	ID        int64          `json:"id"`
	Kind      string         `json:"kind"`
	Message   string         `json:"message"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt int64          `json:"created_at"`
}

// InsertEvent appends an event and returns its row ID.
func InsertEvent(ctx context.Context, db *sql.DB, e *Event) (int64, error) {
	var metaJSON sql.NullString
	if len(e.Meta) > 0 {
		data, err := json.Marshal(e.Meta)
		if err != nil {
			return 0, errors.NewInternal(err)
		}
		metaJSON = sql.NullString{String: string(data), Valid: true}
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO events (kind, message, meta_json, created_at) VALUES (?, ?, ?, ?)`,
		e.Kind, e.Message, metaJSON, e.CreatedAt,
	)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return id, nil
}

// ListEvents returns the most recent events, newest first.
// An empty kind matches every event.
func ListEvents(ctx context.Context, db *sql.DB, kind string, limit int) ([]Event, error) {
	query := `SELECT id, kind, message, meta_json, created_at FROM events`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var e Event
		var metaJSON sql.NullString
		if err := rows.Scan(&e.ID, &e.Kind, &e.Message, &metaJSON, &e.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &e.Meta); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return events, nil
}
