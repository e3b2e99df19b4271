package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/model"
)

// ErrNotFound is returned by updates that matched no row.
var ErrNotFound = errors.New("row not found")

// Repository contract. Lookups of a single row return nil, nil when the row
// does not exist: a missing employee or day is an empty state, not an error.
type Repository interface {
	GetEmployee(ctx context.Context, userID string) (*model.Employee, error)
	ListEmployees(ctx context.Context, search string, limit int) ([]model.Employee, error)
	ListEmployeesByIDs(ctx context.Context, userIDs []string) ([]model.Employee, error)
	UpsertEmployeeApplication(ctx context.Context, userID, employeeNo, fullName string, email *string) (*model.Employee, error)
	SetEmployeeApproved(ctx context.Context, userID string, approved bool) error
	UpdateEmployeeName(ctx context.Context, userID, fullName string) error

	InsertEvent(ctx context.Context, ev model.PunchEvent) error
	ListEvents(ctx context.Context, userID string, limit int) ([]model.PunchEvent, error)

	GetDay(ctx context.Context, userID, workDate string) (*model.AttendanceDay, error)
	ListDays(ctx context.Context, userID, from, to string) ([]model.AttendanceDay, error)
	UpsertDay(ctx context.Context, day model.AttendanceDay) error
	ListExportRows(ctx context.Context, from, to string, limit int) ([]model.ExportRow, error)

	CreateRequest(ctx context.Context, r correction.Request) error
	GetRequest(ctx context.Context, id string) (*correction.Request, error)
	ListRequests(ctx context.Context, limit int) ([]correction.Request, error)
	ListRequestsByUser(ctx context.Context, userID string, limit int) ([]correction.Request, error)
	DecideRequest(ctx context.Context, id string, status model.RequestStatus, note *string, decidedAt time.Time) (*correction.Request, error)
	MarkRequestNotified(ctx context.Context, id string, at time.Time) error

	// RunInTx runs fn against a repository bound to one transaction.
	RunInTx(ctx context.Context, fn func(Repository) error) error
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresRepository is the concrete implementation for a PostgreSQL database.
type PostgresRepository struct {
	db *sql.DB
	q  DBTX
}

// NewPostgresRepository create new instance
func NewPostgresRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db, q: db}
}

// RunInTx begins a transaction, commits when fn succeeds and rolls back otherwise.
// Calls nested inside a transaction reuse it.
func (r *PostgresRepository) RunInTx(ctx context.Context, fn func(Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&PostgresRepository{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
