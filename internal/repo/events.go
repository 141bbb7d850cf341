package repo

import (
	"context"
	"database/sql"

	"glasswork/internal/domain"
)

// LatestEvents returns the newest audit events first, optionally filtered by
// type, with an id cursor for paging backwards.
func (r Repo) LatestEvents(ctx context.Context, limit int, cursor int64, evtType string) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id,ts,type,entity_kind,entity_id,actor_id,payload_json FROM events`
	clauses := ""
	var args []any
	if evtType != "" {
		clauses = ` WHERE type=?`
		args = append(args, evtType)
	}
	if cursor > 0 {
		if clauses == "" {
			clauses = ` WHERE id<?`
		} else {
			clauses += ` AND id<?`
		}
		args = append(args, cursor)
	}
	args = append(args, limit)
	rows, err := r.DB.QueryContext(ctx, query+clauses+` ORDER BY id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, wrapErr("latest events", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// EventsAfter returns events with IDs greater than the cursor in ascending
// order. The webhook dispatcher walks the log with this.
func (r Repo) EventsAfter(ctx context.Context, limit int, cursor int64) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT id,ts,type,entity_kind,entity_id,actor_id,payload_json FROM events WHERE id>? ORDER BY id ASC LIMIT ?`, cursor, limit)
	if err != nil {
		return nil, wrapErr("events after", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// LatestEventID returns the most recent event ID, 0 when empty.
func (r Repo) LatestEventID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COALESCE(MAX(id),0) FROM events`).Scan(&id); err != nil {
		return 0, wrapErr("latest event id", err)
	}
	return id, nil
}

func collectEvents(rows *sql.Rows) ([]domain.Event, error) {
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		var entityID, payload sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &entityID, &e.ActorID, &payload); err != nil {
			return nil, wrapErr("scan event", err)
		}
		e.EntityID = entityID.String
		e.Payload = payload.String
		res = append(res, e)
	}
	return res, wrapErr("collect events", rows.Err())
}
