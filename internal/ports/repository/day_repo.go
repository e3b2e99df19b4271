package repository

import (
	"context"
	"database/sql"
	"fmt"

	"attendance.service/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const dayColumns = `user_id, work_date::text, in_at, out_at, break_minutes, location, updated_at`

func scanDay(row rowScanner) (*model.AttendanceDay, error) {
	var d model.AttendanceDay
	var in, out sql.NullTime
	var loc sql.NullString
	if err := row.Scan(&d.UserID, &d.WorkDate, &in, &out, &d.BreakMinutes, &loc, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.InAt = timePtr(in)
	d.OutAt = timePtr(out)
	d.Location = stringPtr(loc)
	return &d, nil
}

// GetDay fetches the stored day of a user, or nil when none exists yet.
func (r *PostgresRepository) GetDay(ctx context.Context, userID, workDate string) (*model.AttendanceDay, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", userID))

	row := r.q.QueryRowContext(ctx,
		`SELECT `+dayColumns+` FROM attendance_days WHERE user_id = $1 AND work_date = $2`, userID, workDate)
	d, err := scanDay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDays returns the stored days of a user within [from, to], newest first.
func (r *PostgresRepository) ListDays(ctx context.Context, userID, from, to string) ([]model.AttendanceDay, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", userID))

	query := `SELECT ` + dayColumns + `
              FROM attendance_days
              WHERE user_id = $1 AND work_date BETWEEN $2 AND $3
              ORDER BY work_date DESC`

	rows, err := r.q.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AttendanceDay
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpsertDay writes the full day keyed by (user_id, work_date).
func (r *PostgresRepository) UpsertDay(ctx context.Context, day model.AttendanceDay) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", day.UserID))

	query := `INSERT INTO attendance_days (user_id, work_date, in_at, out_at, break_minutes, location, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, now())
              ON CONFLICT (user_id, work_date) DO UPDATE
              SET in_at = EXCLUDED.in_at,
                  out_at = EXCLUDED.out_at,
                  break_minutes = EXCLUDED.break_minutes,
                  location = EXCLUDED.location,
                  updated_at = now()`

	_, err := r.q.ExecContext(ctx, query, day.UserID, day.WorkDate, day.InAt, day.OutAt, day.BreakMinutes, day.Location)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance day: %w", err)
	}
	return nil
}

// ListExportRows reads the days-with-identity view for a date range, ordered by
// employee number then date.
func (r *PostgresRepository) ListExportRows(ctx context.Context, from, to string, limit int) ([]model.ExportRow, error) {
	query := `SELECT ` + dayColumns + `, employee_no, full_name
              FROM attendance_days_v
              WHERE work_date BETWEEN $1 AND $2
              ORDER BY employee_no ASC NULLS LAST, work_date ASC
              LIMIT $3`

	rows, err := r.q.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ExportRow
	for rows.Next() {
		var x model.ExportRow
		var in, outAt sql.NullTime
		var loc, no, name sql.NullString
		if err := rows.Scan(&x.UserID, &x.WorkDate, &in, &outAt, &x.BreakMinutes, &loc, &x.UpdatedAt, &no, &name); err != nil {
			return nil, err
		}
		x.InAt = timePtr(in)
		x.OutAt = timePtr(outAt)
		x.Location = stringPtr(loc)
		x.EmployeeNo = stringPtr(no)
		x.FullName = stringPtr(name)
		out = append(out, x)
	}
	return out, rows.Err()
}
