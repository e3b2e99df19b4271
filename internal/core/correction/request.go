package correction

import (
	"errors"
	"strings"
	"time"

	"attendance.service/internal/core/model"
)

var (
	ErrAlreadyDecided  = errors.New("request has already been decided")
	ErrRequestNotFound = errors.New("request not found")
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)

// ReasonCode is the employee's stated cause for a correction ("1".."5").
// Unknown codes are kept verbatim.
type ReasonCode string

const (
	ReasonForgotPunch   ReasonCode = "1"
	ReasonMisoperation  ReasonCode = "2"
	ReasonDeviceError   ReasonCode = "3"
	ReasonDirectCommute ReasonCode = "4"
	ReasonOther         ReasonCode = "5"
)

func (c ReasonCode) Label() string {
	switch ReasonCode(strings.TrimSpace(string(c))) {
	case ReasonForgotPunch:
		return "forgot to punch"
	case ReasonMisoperation:
		return "mis-operation"
	case ReasonDeviceError:
		return "device or network error"
	case ReasonDirectCommute:
		return "direct commute"
	case ReasonOther:
		return "other"
	}
	if s := strings.TrimSpace(string(c)); s != "" {
		return s
	}
	return "-"
}

// Request is an employee's proposed edit of one day, decided once by an administrator.
type Request struct {
	ID         string              `json:"id"`
	UserID     string              `json:"userId"`
	WorkDate   string              `json:"workDate"`
	Payload    Payload             `json:"payload"`
	Reason     ReasonCode          `json:"reason"`
	Status     model.RequestStatus `json:"status"`
	AdminNote  *string             `json:"adminNote,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	DecidedAt  *time.Time          `json:"decidedAt,omitempty"`
	NotifiedAt *time.Time          `json:"notifiedAt,omitempty"`
}

// Decide moves a pending request to approved or rejected. A request that is
// already decided is refused with ErrAlreadyDecided and left unchanged, so an
// approval can never be merged twice.
func Decide(r *Request, to model.RequestStatus, note string, now time.Time) error {
	if to != model.RequestApproved && to != model.RequestRejected {
		return ErrInvalidDecision
	}
	if r.Status.Terminal() {
		return ErrAlreadyDecided
	}

	r.Status = to
	r.AdminNote = nil
	if n := strings.TrimSpace(note); n != "" {
		r.AdminNote = &n
	}
	decided := now
	r.DecidedAt = &decided
	return nil
}
