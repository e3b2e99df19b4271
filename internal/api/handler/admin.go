package handler

import (
	"context"
	"net/http"

	"attendance.service/internal/core/correction"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type RenameRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
}

type DecisionRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Employees.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": emps})
}

func (h *Handler) ApproveEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Employees.Approve(r.Context(), mux.Vars(r)["userId"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Employee approved."})
}

func (h *Handler) RenameEmployee(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Employees.Rename(r.Context(), mux.Vars(r)["userId"], req.FullName); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Employee renamed."})
}

func (h *Handler) EmployeeDays(w http.ResponseWriter, r *http.Request) {
	month, err := h.Employees.MonthDays(r.Context(), mux.Vars(r)["userId"], r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, month)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	views, err := h.Requests.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": views})
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decideRequest(w, r, h.Requests.Approve)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decideRequest(w, r, h.Requests.Reject)
}

func (h *Handler) decideRequest(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, id, note string) (*correction.Request, error)) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, r, correction.ErrRequestNotFound)
		return
	}

	var req DecisionRequest
	if err := h.decode(r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}

	decided, err := decide(r.Context(), id, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request": decided})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exp, err := h.Exports.Payroll(r.Context(), q.Get("month"), q.Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, exp.Filename, exp.ContentType, exp.Data)
}
