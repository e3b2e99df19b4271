package handler

import (
	"fmt"
	"net/http"

	"attendance.service/internal/core"
	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/model"
)

type ApplyRequest struct {
	EmployeeNo string `json:"employee_no" validate:"required,max=32"`
	FullName   string `json:"full_name" validate:"required,max=100"`
}

type PunchRequest struct {
	Type     string  `json:"type" validate:"required,oneof=in out break_in break_out"`
	Location *string `json:"location" validate:"omitempty,max=200"`
}

type SubmitRequest struct {
	WorkDate string             `json:"work_date" validate:"required,datetime=2006-01-02"`
	Payload  correction.Payload `json:"payload"`
	Reason   string             `json:"reason" validate:"required,max=200"`
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Employees.Me(r.Context(), caller(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee": emp})
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	id := caller(r)
	var email *string
	if id.Email != "" {
		email = &id.Email
	}
	emp, err := h.Employees.Apply(r.Context(), id.UserID, req.EmployeeNo, req.FullName, email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee": emp})
}

func (h *Handler) Punch(w http.ResponseWriter, r *http.Request) {
	var req PunchRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	typ, err := model.ParsePunchType(req.Type)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
		return
	}
	ev, err := h.Punches.Punch(r.Context(), caller(r).UserID, typ, req.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"event": ev})
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	view, err := h.Overview.Overview(r.Context(), caller(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) GetOverviewCSV(w http.ResponseWriter, r *http.Request) {
	name, data, err := h.Overview.OverviewCSV(r.Context(), caller(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, name, "text/csv; charset=utf-8", data)
}

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := h.decode(r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.Requests.Submit(r.Context(), caller(r).UserID, req.WorkDate, req.Payload, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"request": created})
}

func (h *Handler) MyRequests(w http.ResponseWriter, r *http.Request) {
	views, err := h.Requests.ListMine(r.Context(), caller(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": views})
}
