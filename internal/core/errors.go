package core

import (
	"errors"
	"strings"
)

var (
	ErrNotApproved      = errors.New("employee is not approved")
	ErrNotAdmin         = errors.New("administrator rights required")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidPunch     = errors.New("invalid punch")
	ErrInvalidInput     = errors.New("invalid input")
)

// listLimit caps every list read, matching the event fetch default.
const listLimit = 800

// employeeListLimit caps the administrator's employee directory.
const employeeListLimit = 2000

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
