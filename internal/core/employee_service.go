package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
	"attendance.service/internal/ports/repository"
	"github.com/rs/zerolog/log"
)

// DayRow is a stored attendance day with its derived minutes.
type DayRow struct {
	model.AttendanceDay
	GrossMinutes    float64 `json:"grossMinutes"`
	NetMinutes      float64 `json:"netMinutes"`
	OvertimeMinutes float64 `json:"overtimeMinutes"`
}

// EmployeeMonth is the administrator's view of one employee's stored days.
type EmployeeMonth struct {
	Employee        model.Employee `json:"employee"`
	Month           string         `json:"month"`
	Days            []DayRow       `json:"days"`
	NetMinutes      float64        `json:"netMinutes"`
	OvertimeMinutes float64        `json:"overtimeMinutes"`
}

type EmployeeService struct {
	repo repository.Repository
}

func NewEmployeeService(repo repository.Repository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

// Me returns the caller's employee row, or nil when the user never applied.
func (s *EmployeeService) Me(ctx context.Context, userID string) (*model.Employee, error) {
	return s.repo.GetEmployee(ctx, userID)
}

// Apply registers the caller as an employee awaiting approval.
func (s *EmployeeService) Apply(ctx context.Context, userID, employeeNo, fullName string, email *string) (*model.Employee, error) {
	employeeNo, fullName = strings.TrimSpace(employeeNo), strings.TrimSpace(fullName)
	if employeeNo == "" {
		return nil, fmt.Errorf("%w: employee number is required", ErrInvalidInput)
	}
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}

	emp, err := s.repo.UpsertEmployeeApplication(ctx, userID, employeeNo, fullName, trimmed(email))
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("userId", userID).Str("employeeNo", employeeNo).Msg("Employee application received")
	return emp, nil
}

// RequireAdmin fails with ErrNotAdmin unless the user is an administrator.
func (s *EmployeeService) RequireAdmin(ctx context.Context, userID string) error {
	emp, err := s.repo.GetEmployee(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load employee: %w", err)
	}
	if emp == nil || !emp.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}

// List returns employees whose number, name or user id contains query,
// ignoring case. An empty query returns everyone.
func (s *EmployeeService) List(ctx context.Context, query string) ([]model.Employee, error) {
	out, err := s.repo.ListEmployees(ctx, strings.TrimSpace(query), employeeListLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Employee{}
	}
	return out, nil
}

// Approve lets the employee punch and submit corrections.
func (s *EmployeeService) Approve(ctx context.Context, userID string) error {
	if err := s.repo.SetEmployeeApproved(ctx, userID, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}
	log.Ctx(ctx).Info().Str("userId", userID).Msg("Employee approved")
	return nil
}

// Rename replaces the employee's full name.
func (s *EmployeeService) Rename(ctx context.Context, userID, fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if err := s.repo.UpdateEmployeeName(ctx, userID, fullName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}
	return nil
}

// MonthDays reads the stored days of one employee for a calendar month.
// Totals come from the stored rows, which are authoritative over events.
func (s *EmployeeService) MonthDays(ctx context.Context, userID, month string) (*EmployeeMonth, error) {
	from, to, err := worktime.MonthRange(month)
	if err != nil {
		return nil, err
	}

	emp, err := s.repo.GetEmployee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}

	days, err := s.repo.ListDays(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance days: %w", err)
	}

	res := &EmployeeMonth{Employee: *emp, Month: strings.TrimSpace(month), Days: make([]DayRow, 0, len(days))}
	for _, d := range days {
		gross, net, overtime := worktime.StoredDayMinutes(d)
		res.Days = append(res.Days, DayRow{AttendanceDay: d, GrossMinutes: gross, NetMinutes: net, OvertimeMinutes: overtime})
		res.NetMinutes += net
		res.OvertimeMinutes += overtime
	}
	return res, nil
}
