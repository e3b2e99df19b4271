package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(typ model.PunchType, at time.Time) model.PunchEvent {
	return model.PunchEvent{ID: at.String(), UserID: "u1", Type: typ, HappenedAt: at, WorkDate: worktime.WorkDate(at)}
}

func seededOverview() (*OverviewService, *memRepo) {
	repo := approvedRepo()
	repo.events = []model.PunchEvent{
		event(model.PunchIn, local("2025-11-30", "09:00")),
		event(model.PunchOut, local("2025-11-30", "18:00")),
		event(model.PunchIn, local("2025-12-01", "09:00")),
		event(model.PunchBreakIn, local("2025-12-01", "12:00")),
		event(model.PunchBreakOut, local("2025-12-01", "13:00")),
		event(model.PunchOut, local("2025-12-01", "18:00")),
		event(model.PunchIn, local("2025-12-02", "09:00")),
		event(model.PunchIn, local("2025-12-03", "09:00")),
	}
	svc := NewOverviewService(repo, 800)
	svc.now = func() time.Time { return local("2025-12-03", "11:00") }
	return svc, repo
}

func TestOverviewForApprovedEmployee(t *testing.T) {
	svc, _ := seededOverview()

	view, err := svc.Overview(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "2025-12", view.Month)
	assert.Equal(t, model.DayInProgress, view.Today.Status)
	assert.Equal(t, float64(120), view.Today.GrossMinutes)

	require.Len(t, view.Days, 3)
	assert.Equal(t, "2025-12-03", view.Days[0].Date)
	assert.Equal(t, model.DayOutMissing, view.Days[1].Status)
	assert.Equal(t, model.DayFinished, view.Days[2].Status)
	assert.Equal(t, float64(480), view.Days[2].NetMinutes)

	assert.Equal(t, 3, view.Totals.Days)
	assert.Equal(t, float64(600), view.Totals.NetMinutes)
	assert.Zero(t, view.Totals.OvertimeMinutes)
}

func TestOverviewForUnapprovedEmployeeIsEmpty(t *testing.T) {
	svc, repo := seededOverview()
	e := repo.employees["u1"]
	e.Approved = false
	repo.employees["u1"] = e

	view, err := svc.Overview(context.Background(), "u1")

	require.NoError(t, err)
	assert.Empty(t, view.Days)
	assert.Equal(t, model.DayNotStarted, view.Today.Status)
	assert.False(t, view.Employee.Approved)
}

func TestOverviewForUnknownUserIsEmpty(t *testing.T) {
	svc, _ := seededOverview()

	view, err := svc.Overview(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, view.Employee)
	assert.Empty(t, view.Days)
}

func TestOverviewCSV(t *testing.T) {
	svc, _ := seededOverview()

	name, data, err := svc.OverviewCSV(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "attendance_2025-12.csv", name)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "2025-12-01,finished,09:00,18:00,540,60,480,0", lines[1])
	assert.Equal(t, "2025-12-02,out_missing,09:00,,0,0,0,0", lines[2])
	assert.Equal(t, "2025-12-03,in_progress,09:00,,120,0,120,0", lines[3])
}
