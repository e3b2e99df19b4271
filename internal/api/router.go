package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"attendance.service/internal/api/handler"
	"attendance.service/internal/api/middleware"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
// Everything except /health requires a bearer token; /admin also requires
// administrator rights.
func NewRouter(h *handler.Handler, auth *middleware.Auth) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	self := api.NewRoute().Subrouter()
	self.Use(auth.Authenticate)
	self.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	self.HandleFunc("/employees/apply", h.Apply).Methods(http.MethodPost)
	self.HandleFunc("/punches", h.Punch).Methods(http.MethodPost)
	self.HandleFunc("/overview", h.GetOverview).Methods(http.MethodGet)
	self.HandleFunc("/overview.csv", h.GetOverviewCSV).Methods(http.MethodGet)
	self.HandleFunc("/requests", h.SubmitRequest).Methods(http.MethodPost)
	self.HandleFunc("/requests/mine", h.MyRequests).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Authenticate, auth.RequireAdmin)
	admin.HandleFunc("/employees", h.ListEmployees).Methods(http.MethodGet)
	admin.HandleFunc("/employees/{userId}/approve", h.ApproveEmployee).Methods(http.MethodPost)
	admin.HandleFunc("/employees/{userId}/name", h.RenameEmployee).Methods(http.MethodPut)
	admin.HandleFunc("/employees/{userId}/days", h.EmployeeDays).Methods(http.MethodGet)
	admin.HandleFunc("/requests", h.ListRequests).Methods(http.MethodGet)
	admin.HandleFunc("/requests/{id}/approve", h.ApproveRequest).Methods(http.MethodPost)
	admin.HandleFunc("/requests/{id}/reject", h.RejectRequest).Methods(http.MethodPost)
	admin.HandleFunc("/export", h.Export).Methods(http.MethodGet)

	return r
}
