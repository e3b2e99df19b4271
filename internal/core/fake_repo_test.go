package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
)

// memRepo is an in-memory Repository. RunInTx restores the previous state
// when fn fails.
type memRepo struct {
	mu        sync.Mutex
	employees map[string]model.Employee
	events    []model.PunchEvent
	days      map[string]model.AttendanceDay
	requests  map[string]correction.Request
	failWith  error
	upserts   int
}

func newMemRepo() *memRepo {
	return &memRepo{
		employees: map[string]model.Employee{},
		days:      map[string]model.AttendanceDay{},
		requests:  map[string]correction.Request{},
	}
}

func dayKey(userID, date string) string { return userID + "/" + date }

func (m *memRepo) addEmployee(e model.Employee) { m.employees[e.UserID] = e }

func (m *memRepo) GetEmployee(_ context.Context, userID string) (*model.Employee, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	e, ok := m.employees[userID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memRepo) ListEmployees(_ context.Context, search string, limit int) ([]model.Employee, error) {
	q := strings.ToLower(search)
	var out []model.Employee
	for _, e := range m.employees {
		if q == "" || containsFold(e, q) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return deref(out[i].EmployeeNo) < deref(out[j].EmployeeNo) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func containsFold(e model.Employee, q string) bool {
	for _, field := range []*string{e.EmployeeNo, e.FullName, &e.UserID} {
		if field != nil && strings.Contains(strings.ToLower(*field), q) {
			return true
		}
	}
	return false
}

func (m *memRepo) ListEmployeesByIDs(_ context.Context, userIDs []string) ([]model.Employee, error) {
	var out []model.Employee
	for _, id := range userIDs {
		if e, ok := m.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRepo) UpsertEmployeeApplication(_ context.Context, userID, employeeNo, fullName string, email *string) (*model.Employee, error) {
	e, ok := m.employees[userID]
	if !ok {
		e = model.Employee{UserID: userID}
	}
	e.EmployeeNo, e.FullName = &employeeNo, &fullName
	if email != nil {
		e.Email = email
	}
	m.employees[userID] = e
	return &e, nil
}

func (m *memRepo) SetEmployeeApproved(_ context.Context, userID string, approved bool) error {
	e, ok := m.employees[userID]
	if !ok {
		return repository.ErrNotFound
	}
	e.Approved = approved
	m.employees[userID] = e
	return nil
}

func (m *memRepo) UpdateEmployeeName(_ context.Context, userID, fullName string) error {
	e, ok := m.employees[userID]
	if !ok {
		return repository.ErrNotFound
	}
	e.FullName = &fullName
	m.employees[userID] = e
	return nil
}

func (m *memRepo) InsertEvent(_ context.Context, ev model.PunchEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *memRepo) ListEvents(_ context.Context, userID string, limit int) ([]model.PunchEvent, error) {
	var out []model.PunchEvent
	for _, ev := range m.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HappenedAt.After(out[j].HappenedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) GetDay(_ context.Context, userID, workDate string) (*model.AttendanceDay, error) {
	d, ok := m.days[dayKey(userID, workDate)]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *memRepo) ListDays(_ context.Context, userID, from, to string) ([]model.AttendanceDay, error) {
	var out []model.AttendanceDay
	for _, d := range m.days {
		if d.UserID == userID && d.WorkDate >= from && d.WorkDate <= to {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate > out[j].WorkDate })
	return out, nil
}

func (m *memRepo) UpsertDay(_ context.Context, day model.AttendanceDay) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.upserts++
	m.days[dayKey(day.UserID, day.WorkDate)] = day
	return nil
}

func (m *memRepo) ListExportRows(_ context.Context, from, to string, limit int) ([]model.ExportRow, error) {
	var out []model.ExportRow
	for _, d := range m.days {
		if d.WorkDate < from || d.WorkDate > to {
			continue
		}
		row := model.ExportRow{AttendanceDay: d}
		if e, ok := m.employees[d.UserID]; ok {
			row.EmployeeNo, row.FullName = e.EmployeeNo, e.FullName
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if a, b := deref(out[i].EmployeeNo), deref(out[j].EmployeeNo); a != b {
			return a < b
		}
		return out[i].WorkDate < out[j].WorkDate
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) CreateRequest(_ context.Context, r correction.Request) error {
	m.requests[r.ID] = r
	return nil
}

func (m *memRepo) GetRequest(_ context.Context, id string) (*correction.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memRepo) ListRequests(_ context.Context, limit int) ([]correction.Request, error) {
	return m.sortedRequests(func(correction.Request) bool { return true }, limit), nil
}

func (m *memRepo) ListRequestsByUser(_ context.Context, userID string, limit int) ([]correction.Request, error) {
	return m.sortedRequests(func(r correction.Request) bool { return r.UserID == userID }, limit), nil
}

func (m *memRepo) sortedRequests(keep func(correction.Request) bool, limit int) []correction.Request {
	var out []correction.Request
	for _, r := range m.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memRepo) DecideRequest(_ context.Context, id string, status model.RequestStatus, note *string, decidedAt time.Time) (*correction.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, correction.ErrRequestNotFound
	}
	if r.Status != model.RequestPending {
		return nil, correction.ErrAlreadyDecided
	}
	r.Status, r.AdminNote, r.DecidedAt = status, note, &decidedAt
	m.requests[id] = r
	return &r, nil
}

func (m *memRepo) MarkRequestNotified(_ context.Context, id string, at time.Time) error {
	r, ok := m.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.NotifiedAt = &at
	m.requests[id] = r
	return nil
}

func (m *memRepo) RunInTx(_ context.Context, fn func(repository.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	days := make(map[string]model.AttendanceDay, len(m.days))
	for k, v := range m.days {
		days[k] = v
	}
	requests := make(map[string]correction.Request, len(m.requests))
	for k, v := range m.requests {
		requests[k] = v
	}
	events := append([]model.PunchEvent(nil), m.events...)

	if err := fn(m); err != nil {
		m.days, m.requests, m.events = days, requests, events
		return err
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type recordingPublisher struct {
	events []messaging.RequestDecidedEvent
	err    error
}

func (p *recordingPublisher) PublishRequestDecided(_ context.Context, event messaging.RequestDecidedEvent) error {
	p.events = append(p.events, event)
	return p.err
}

var errStore = errors.New("connection refused")
