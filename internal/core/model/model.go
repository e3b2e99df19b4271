package model

import (
	"fmt"
	"strings"
	"time"
)

// PunchType is the closed set of clock events an employee can record.
type PunchType string

const (
	PunchIn       PunchType = "in"
	PunchOut      PunchType = "out"
	PunchBreakIn  PunchType = "break_in"
	PunchBreakOut PunchType = "break_out"
)

// ParsePunchType rejects anything outside the four known punch types.
func ParsePunchType(s string) (PunchType, error) {
	switch t := PunchType(s); t {
	case PunchIn, PunchOut, PunchBreakIn, PunchBreakOut:
		return t, nil
	}
	return "", fmt.Errorf("unknown punch type %q", s)
}

// DayStatus is the derived state of a single work day.
type DayStatus string

const (
	DayNotStarted DayStatus = "not_started"
	DayInProgress DayStatus = "in_progress"
	DayOutMissing DayStatus = "out_missing"
	DayFinished   DayStatus = "finished"
)

// RequestStatus defines the state of a correction request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// PunchEvent is an append-only clock record. WorkDate is assigned when the
// event is written and is never derived from HappenedAt afterwards.
type PunchEvent struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Type       PunchType `json:"type"`
	HappenedAt time.Time `json:"happenedAt"`
	WorkDate   string    `json:"workDate"`
	Location   *string   `json:"location,omitempty"`
}

// DaySummary is recomputed from events on every read and never persisted.
type DaySummary struct {
	Date            string     `json:"date"`
	Status          DayStatus  `json:"status"`
	InAt            *time.Time `json:"inAt,omitempty"`
	OutAt           *time.Time `json:"outAt,omitempty"`
	GrossMinutes    float64    `json:"grossMinutes"`
	BreakMinutes    float64    `json:"breakMinutes"`
	NetMinutes      float64    `json:"netMinutes"`
	OvertimeMinutes float64    `json:"overtimeMinutes"`
	Location        *string    `json:"location,omitempty"`
}

// AttendanceDay is the stored, authoritative record for one (user, date).
type AttendanceDay struct {
	UserID       string     `json:"userId"`
	WorkDate     string     `json:"workDate"`
	InAt         *time.Time `json:"inAt,omitempty"`
	OutAt        *time.Time `json:"outAt,omitempty"`
	BreakMinutes int        `json:"breakMinutes"`
	Location     *string    `json:"location,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ExportRow is an attendance day joined with the employee identity.
type ExportRow struct {
	AttendanceDay
	EmployeeNo *string `json:"employeeNo,omitempty"`
	FullName   *string `json:"fullName,omitempty"`
}

type Employee struct {
	UserID     string    `json:"userId"`
	EmployeeNo *string   `json:"employeeNo,omitempty"`
	FullName   *string   `json:"fullName,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Approved   bool      `json:"approved"`
	IsAdmin    bool      `json:"isAdmin"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DisplayName renders "<no> <name>", falling back to whichever part is set
// and finally to the user id.
func (e Employee) DisplayName() string {
	no, name := deref(e.EmployeeNo), deref(e.FullName)
	switch {
	case no != "" && name != "":
		return no + " " + name
	case name != "":
		return name
	case no != "":
		return no
	}
	return e.UserID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
