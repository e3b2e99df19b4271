package repository

import (
	"context"
	"database/sql"

	"attendance.service/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// InsertEvent appends a punch. Events are never updated afterwards.
func (r *PostgresRepository) InsertEvent(ctx context.Context, ev model.PunchEvent) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", ev.UserID))

	query := `INSERT INTO attendance_events (id, user_id, type, happened_at, work_date, location)
              VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.q.ExecContext(ctx, query, ev.ID, ev.UserID, string(ev.Type), ev.HappenedAt, ev.WorkDate, ev.Location)
	return err
}

// ListEvents returns the latest events of a user, newest first.
func (r *PostgresRepository) ListEvents(ctx context.Context, userID string, limit int) ([]model.PunchEvent, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", userID))

	query := `SELECT id, user_id, type, happened_at, work_date::text, location
              FROM attendance_events
              WHERE user_id = $1
              ORDER BY happened_at DESC
              LIMIT $2`

	rows, err := r.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PunchEvent
	for rows.Next() {
		var ev model.PunchEvent
		var loc sql.NullString
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Type, &ev.HappenedAt, &ev.WorkDate, &loc); err != nil {
			return nil, err
		}
		ev.Location = stringPtr(loc)
		out = append(out, ev)
	}
	return out, rows.Err()
}
