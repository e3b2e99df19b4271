// Package correction holds the correction request workflow: the partial
// payload an employee submits, how it merges into a stored day, and the
// pending -> approved/rejected lifecycle.
package correction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
)

// MaxBreakMinutes bounds a proposed break to one full day.
const MaxBreakMinutes = 24 * 60

var localLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05"}

// ValidationError is a rejected payload field. Its message is shown to the user as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a payload validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ParseLocal reads "YYYY-MM-DDTHH:MM" at the fixed +09:00 offset and returns the instant in UTC.
func ParseLocal(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, worktime.Local); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid local time %q, expected YYYY-MM-DDTHH:MM", s)
}

// Apply merges the payload into base. Only present fields change; everything
// else keeps the base value. Applying the same payload to its own result yields
// the same day. An empty payload returns base untouched.
func Apply(p Payload, base model.AttendanceDay) (model.AttendanceDay, error) {
	if err := p.Validate(); err != nil {
		return base, err
	}

	out := base
	if p.InAtLocal.Present {
		t, _ := ParseLocal(p.InAtLocal.Value)
		out.InAt = &t
	}
	if p.OutAtLocal.Present {
		t, _ := ParseLocal(p.OutAtLocal.Value)
		out.OutAt = &t
	}
	if p.BreakMinutes.Present {
		out.BreakMinutes = p.BreakMinutes.Value
	}
	if p.Location.Present {
		if p.Location.Value == nil {
			out.Location = nil
		} else {
			loc := *p.Location.Value
			out.Location = &loc
		}
	}
	return out, nil
}

// NewDay is the base used when no stored row exists yet for (user, date).
func NewDay(userID, workDate string) model.AttendanceDay {
	return model.AttendanceDay{UserID: userID, WorkDate: workDate}
}
