package worktime

import (
	"testing"
	"time"

	"attendance.service/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollPeriod(t *testing.T) {
	tests := []struct {
		month string
		start string
		end   string
	}{
		{month: "2025-12", start: "2025-12-16", end: "2026-01-15"},
		{month: "2025-01", start: "2025-01-16", end: "2025-02-15"},
		{month: " 2024-02 ", start: "2024-02-16", end: "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			p, err := PayrollPeriod(tt.month)
			require.NoError(t, err)
			assert.Equal(t, tt.start, p.Start)
			assert.Equal(t, tt.end, p.End)
			assert.Equal(t, tt.start+"~"+tt.end, p.Label)
		})
	}
}

func TestPayrollPeriodRejectsMalformedMonth(t *testing.T) {
	for _, month := range []string{"", "2025-1", "2025/12", "202512", "2025-13", "2025-00"} {
		_, err := PayrollPeriod(month)
		assert.ErrorIs(t, err, ErrInvalidMonth, month)
	}
}

func TestPeriodContains(t *testing.T) {
	p, err := PayrollPeriod("2025-12")
	require.NoError(t, err)

	assert.True(t, p.Contains("2025-12-16"))
	assert.True(t, p.Contains("2026-01-15"))
	assert.False(t, p.Contains("2025-12-15"))
	assert.False(t, p.Contains("2026-01-16"))
}

func TestRollupMonths(t *testing.T) {
	summaries := []model.DaySummary{
		{Date: "2025-12-02", NetMinutes: 500, OvertimeMinutes: 20},
		{Date: "2025-11-28", NetMinutes: 480},
		{Date: "2025-12-01", NetMinutes: 300},
	}

	totals := RollupMonths(summaries)

	require.Len(t, totals, 2)
	assert.Equal(t, MonthTotal{Month: "2025-11", Days: 1, NetMinutes: 480}, totals[0])
	assert.Equal(t, MonthTotal{Month: "2025-12", Days: 2, NetMinutes: 800, OvertimeMinutes: 20}, totals[1])
}

func TestFormatHHMM(t *testing.T) {
	assert.Equal(t, "0:00", FormatHHMM(-5))
	assert.Equal(t, "0:59", FormatHHMM(59.9))
	assert.Equal(t, "8:00", FormatHHMM(480))
	assert.Equal(t, "12:05", FormatHHMM(725))
}

func TestWorkDateUsesFixedOffset(t *testing.T) {
	// 15:30 UTC is already the next day at +09:00.
	instant := time.Date(2025, 12, 31, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-01", WorkDate(instant))
	assert.Equal(t, "00:30", FormatHM(&instant))
	assert.Equal(t, "", FormatHM(nil))
}

func TestStoredDayMinutes(t *testing.T) {
	in := time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)
	out := in.Add(10 * time.Hour)

	gross, net, ot := StoredDayMinutes(model.AttendanceDay{InAt: &in, OutAt: &out, BreakMinutes: 60})
	assert.Equal(t, float64(600), gross)
	assert.Equal(t, float64(540), net)
	assert.Equal(t, float64(60), ot)

	gross, net, ot = StoredDayMinutes(model.AttendanceDay{InAt: &in, BreakMinutes: 60})
	assert.Zero(t, gross)
	assert.Zero(t, net)
	assert.Zero(t, ot)
}

func TestMonthRange(t *testing.T) {
	from, to, err := MonthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", from)
	assert.Equal(t, "2024-02-29", to)

	from, to, err = MonthRange("2025-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", from)
	assert.Equal(t, "2025-12-31", to)

	_, _, err = MonthRange("2025-13")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}
