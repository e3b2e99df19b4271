package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"attendance.service/internal/api/middleware"
	"attendance.service/internal/core"
	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type PunchService interface {
	Punch(ctx context.Context, userID string, typ model.PunchType, location *string) (*model.PunchEvent, error)
}

type OverviewService interface {
	Overview(ctx context.Context, userID string) (*core.Overview, error)
	OverviewCSV(ctx context.Context, userID string) (string, []byte, error)
}

type EmployeeService interface {
	Me(ctx context.Context, userID string) (*model.Employee, error)
	Apply(ctx context.Context, userID, employeeNo, fullName string, email *string) (*model.Employee, error)
	List(ctx context.Context, query string) ([]model.Employee, error)
	Approve(ctx context.Context, userID string) error
	Rename(ctx context.Context, userID, fullName string) error
	MonthDays(ctx context.Context, userID, month string) (*core.EmployeeMonth, error)
}

type RequestService interface {
	Submit(ctx context.Context, userID, workDate string, payload correction.Payload, reason string) (*correction.Request, error)
	ListMine(ctx context.Context, userID string) ([]core.RequestView, error)
	ListAll(ctx context.Context) ([]core.RequestView, error)
	Approve(ctx context.Context, id, note string) (*correction.Request, error)
	Reject(ctx context.Context, id, note string) (*correction.Request, error)
}

type ExportService interface {
	Payroll(ctx context.Context, month, format string) (*core.Export, error)
}

// Handler serves every /api/v1 route.
type Handler struct {
	Punches   PunchService
	Overview  OverviewService
	Employees EmployeeService
	Requests  RequestService
	Exports   ExportService

	validate *validator.Validate
}

func New(punches PunchService, overview OverviewService, employees EmployeeService, requests RequestService, exports ExportService) *Handler {
	return &Handler{
		Punches:   punches,
		Overview:  overview,
		Employees: employees,
		Requests:  requests,
		Exports:   exports,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Service is operational."))
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted when allowEmpty is set.
func (h *Handler) decode(r *http.Request, dst any, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: invalid request body: %v", core.ErrInvalidInput, err)
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", core.ErrInvalidInput, strings.Join(msgs, ", "))
		}
		return err
	}
	return nil
}

func caller(r *http.Request) middleware.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeFile(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeError maps domain errors to a status and always returns the error
// message verbatim.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	writeJSON(w, status, map[string]any{"message": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrInvalidPunch),
		errors.Is(err, worktime.ErrInvalidMonth),
		errors.Is(err, correction.ErrInvalidDecision),
		correction.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotApproved), errors.Is(err, core.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, correction.ErrRequestNotFound), errors.Is(err, core.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, correction.ErrAlreadyDecided):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
