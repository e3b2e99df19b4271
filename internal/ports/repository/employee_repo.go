package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"attendance.service/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const employeeColumns = `user_id, employee_no, full_name, email, approved, is_admin, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*model.Employee, error) {
	var e model.Employee
	var no, name, email sql.NullString
	if err := row.Scan(&e.UserID, &no, &name, &email, &e.Approved, &e.IsAdmin, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.EmployeeNo = stringPtr(no)
	e.FullName = stringPtr(name)
	e.Email = stringPtr(email)
	return &e, nil
}

// GetEmployee fetches the employee row of a user, or nil when none exists.
func (r *PostgresRepository) GetEmployee(ctx context.Context, userID string) (*model.Employee, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", userID))

	row := r.q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE user_id = $1`, userID)
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEmployees returns employees ordered by employee number. A non-empty
// search keeps rows whose number, name or user id contains it, ignoring case.
func (r *PostgresRepository) ListEmployees(ctx context.Context, search string, limit int) ([]model.Employee, error) {
	query := `SELECT ` + employeeColumns + `
              FROM employees
              WHERE $1 = '' OR employee_no ILIKE $2 OR full_name ILIKE $2 OR user_id::text ILIKE $2
              ORDER BY employee_no ASC NULLS LAST
              LIMIT $3`

	rows, err := r.q.QueryContext(ctx, query, search, containsPattern(search), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

// ListEmployeesByIDs fetches the employees for a set of user ids.
func (r *PostgresRepository) ListEmployeesByIDs(ctx context.Context, userIDs []string) ([]model.Employee, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func collectEmployees(rows *sql.Rows) ([]model.Employee, error) {
	var out []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpsertEmployeeApplication registers a user as an employee. New rows start
// unapproved and without admin rights; re-applying only updates number and name.
func (r *PostgresRepository) UpsertEmployeeApplication(ctx context.Context, userID, employeeNo, fullName string, email *string) (*model.Employee, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", userID))

	query := `INSERT INTO employees (user_id, employee_no, full_name, email, approved, is_admin, updated_at)
              VALUES ($1, $2, $3, $4, false, false, now())
              ON CONFLICT (user_id) DO UPDATE
              SET employee_no = EXCLUDED.employee_no,
                  full_name = EXCLUDED.full_name,
                  email = COALESCE(EXCLUDED.email, employees.email),
                  updated_at = now()
              RETURNING ` + employeeColumns

	e, err := scanEmployee(r.q.QueryRowContext(ctx, query, userID, employeeNo, fullName, email))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert employee: %w", err)
	}
	return e, nil
}

// SetEmployeeApproved flips the approval flag that gates punching.
func (r *PostgresRepository) SetEmployeeApproved(ctx context.Context, userID string, approved bool) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE employees SET approved = $1, updated_at = now() WHERE user_id = $2`, approved, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// UpdateEmployeeName sets the display name of an employee.
func (r *PostgresRepository) UpdateEmployeeName(ctx context.Context, userID, fullName string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE employees SET full_name = $1, updated_at = now() WHERE user_id = $2`, fullName, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
