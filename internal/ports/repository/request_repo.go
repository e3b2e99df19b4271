package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const requestColumns = `id, user_id, work_date::text, payload, reason, status, admin_note, created_at, decided_at, notified_at`

func scanRequest(row rowScanner) (*correction.Request, error) {
	var req correction.Request
	var payload []byte
	var note sql.NullString
	var decided, notified sql.NullTime
	err := row.Scan(&req.ID, &req.UserID, &req.WorkDate, &payload, &req.Reason, &req.Status,
		&note, &req.CreatedAt, &decided, &notified)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &req.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload of request %s: %w", req.ID, err)
	}
	req.AdminNote = stringPtr(note)
	req.DecidedAt = timePtr(decided)
	req.NotifiedAt = timePtr(notified)
	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]correction.Request, error) {
	var out []correction.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// CreateRequest stores a new pending correction request.
func (r *PostgresRepository) CreateRequest(ctx context.Context, req correction.Request) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", req.UserID))

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `INSERT INTO attendance_requests (id, user_id, work_date, request_type, payload, reason, status, created_at)
              VALUES ($1, $2, $3, 'edit_day', $4::jsonb, $5, $6, $7)`

	_, err = r.q.ExecContext(ctx, query, req.ID, req.UserID, req.WorkDate, string(payload),
		string(req.Reason), string(req.Status), req.CreatedAt)
	return err
}

// GetRequest fetches one request, or nil when it does not exist.
func (r *PostgresRepository) GetRequest(ctx context.Context, id string) (*correction.Request, error) {
	req, err := scanRequest(r.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM attendance_requests WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListRequests returns all requests, newest first.
func (r *PostgresRepository) ListRequests(ctx context.Context, limit int) ([]correction.Request, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM attendance_requests ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListRequestsByUser returns the requests of one employee, newest first.
func (r *PostgresRepository) ListRequestsByUser(ctx context.Context, userID string, limit int) ([]correction.Request, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", userID))

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM attendance_requests WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// DecideRequest records a decision on a request that is still pending. When no
// pending row matches, it reports ErrRequestNotFound or ErrAlreadyDecided so a
// request is never decided twice.
func (r *PostgresRepository) DecideRequest(ctx context.Context, id string, status model.RequestStatus, note *string, decidedAt time.Time) (*correction.Request, error) {
	query := `UPDATE attendance_requests
              SET status = $1, admin_note = $2, decided_at = $3
              WHERE id = $4 AND status = 'pending'
              RETURNING ` + requestColumns

	req, err := scanRequest(r.q.QueryRowContext(ctx, query, string(status), note, decidedAt, id))
	if err == nil {
		return req, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	existing, err := r.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, correction.ErrRequestNotFound
	}
	if !existing.Status.Terminal() {
		return nil, fmt.Errorf("request %s in unexpected status %q", id, existing.Status)
	}
	return nil, correction.ErrAlreadyDecided
}

// MarkRequestNotified stamps the time the decision e-mail went out.
func (r *PostgresRepository) MarkRequestNotified(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE attendance_requests SET notified_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
