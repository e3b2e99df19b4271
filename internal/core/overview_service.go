package core

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
	"attendance.service/internal/ports/repository"
	"attendance.service/internal/report"
)

// Overview is the self-service view: today plus every worked day of the
// current month, newest first.
type Overview struct {
	Employee *model.Employee     `json:"employee,omitempty"`
	Today    model.DaySummary    `json:"today"`
	Month    string              `json:"month"`
	Days     []model.DaySummary  `json:"days"`
	Totals   worktime.MonthTotal `json:"totals"`
}

type OverviewService struct {
	repo       repository.Repository
	fetchLimit int
	now        func() time.Time
}

func NewOverviewService(repo repository.Repository, fetchLimit int) *OverviewService {
	if fetchLimit <= 0 {
		fetchLimit = listLimit
	}
	return &OverviewService{repo: repo, fetchLimit: fetchLimit, now: time.Now}
}

// Overview computes the caller's summaries from raw events. Unapproved or
// unknown employees get an empty view rather than an error.
func (s *OverviewService) Overview(ctx context.Context, userID string) (*Overview, error) {
	now := s.now().UTC()
	today := worktime.WorkDate(now)
	month := today[:7]

	view := &Overview{
		Today:  worktime.Summarize(nil, today, true, now),
		Month:  month,
		Days:   []model.DaySummary{},
		Totals: worktime.MonthTotal{Month: month},
	}

	emp, err := s.repo.GetEmployee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	view.Employee = emp
	if emp == nil || !emp.Approved {
		return view, nil
	}

	events, err := s.repo.ListEvents(ctx, userID, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	view.Today = worktime.Summarize(events, today, true, now)
	for _, date := range monthDates(events, month) {
		view.Days = append(view.Days, worktime.Summarize(events, date, date == today, now))
	}
	for _, total := range worktime.RollupMonths(view.Days) {
		if total.Month == month {
			view.Totals = total
		}
	}
	return view, nil
}

// OverviewCSV renders the month of the overview as the self-service CSV,
// oldest day first.
func (s *OverviewService) OverviewCSV(ctx context.Context, userID string) (string, []byte, error) {
	view, err := s.Overview(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	days := make([]model.DaySummary, len(view.Days))
	copy(days, view.Days)
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	var buf bytes.Buffer
	if err := report.WriteSelfCSV(&buf, days); err != nil {
		return "", nil, err
	}
	return report.SelfFilename(view.Month), buf.Bytes(), nil
}

// monthDates lists the distinct work dates of a month present in events, newest first.
func monthDates(events []model.PunchEvent, month string) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, ev := range events {
		if !strings.HasPrefix(ev.WorkDate, month+"-") || seen[ev.WorkDate] {
			continue
		}
		seen[ev.WorkDate] = true
		dates = append(dates, ev.WorkDate)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}
