package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"attendance.service/internal/core"
	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/worktime"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: reason is required", core.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: already clocked in today", core.ErrInvalidPunch), http.StatusBadRequest},
		{worktime.ErrInvalidMonth, http.StatusBadRequest},
		{&correction.ValidationError{Field: "break_minutes", Reason: "must be between 0 and 1440"}, http.StatusBadRequest},
		{core.ErrNotApproved, http.StatusForbidden},
		{core.ErrNotAdmin, http.StatusForbidden},
		{correction.ErrRequestNotFound, http.StatusNotFound},
		{core.ErrEmployeeNotFound, http.StatusNotFound},
		{correction.ErrAlreadyDecided, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
