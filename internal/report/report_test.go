package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }

func exportRows() []model.ExportRow {
	in := time.Date(2025, 12, 17, 0, 0, 0, 0, time.UTC) // 09:00 local
	out := in.Add(10 * time.Hour)
	return []model.ExportRow{
		{
			AttendanceDay: model.AttendanceDay{
				UserID: "u1", WorkDate: "2025-12-17", InAt: &in, OutAt: &out,
				BreakMinutes: 60, Location: strPtr("Tokyo, HQ"),
			},
			EmployeeNo: strPtr("E001"),
			FullName:   strPtr("Sato \"Ken\""),
		},
		{
			AttendanceDay: model.AttendanceDay{UserID: "u2", WorkDate: "2025-12-18", InAt: &in},
		},
	}
}

func TestPayrollRecords(t *testing.T) {
	period, err := worktime.PayrollPeriod("2025-12")
	require.NoError(t, err)

	recs := PayrollRecords(exportRows(), period)

	require.Len(t, recs, 2)
	assert.Equal(t, []string{
		"E001", "Sato \"Ken\"", "2025-12-17", "09:00", "19:00", "60", "9:00", "1:00",
		"Tokyo, HQ", "2025-12-16~2026-01-15", "u1",
	}, recs[0])
	assert.Equal(t, []string{
		"", "", "2025-12-18", "09:00", "", "0", "0:00", "0:00", "", "2025-12-16~2026-01-15", "u2",
	}, recs[1])
}

func TestWritePayrollCSV(t *testing.T) {
	period, _ := worktime.PayrollPeriod("2025-12")
	var buf bytes.Buffer

	require.NoError(t, WritePayrollCSV(&buf, exportRows(), period))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\uFEFFemployee_no,full_name,work_date,"))
	assert.Contains(t, out, `E001,"Sato ""Ken""",2025-12-17,09:00,19:00,60,9:00,1:00,"Tokyo, HQ",2025-12-16~2026-01-15,u1`)
}

func TestWriteSelfCSV(t *testing.T) {
	in := time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC)
	out := in.Add(9*time.Hour + 30*time.Second)
	days := []model.DaySummary{{
		Date: "2025-12-03", Status: model.DayFinished, InAt: &in, OutAt: &out,
		GrossMinutes: 540.5, BreakMinutes: 59.6, NetMinutes: 480.9, OvertimeMinutes: 0.9,
	}}
	var buf bytes.Buffer

	require.NoError(t, WriteSelfCSV(&buf, days))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,status,in,out,gross_minutes,break_minutes,net_minutes,overtime_minutes", lines[0])
	assert.Equal(t, "2025-12-03,finished,09:00,18:00,541,60,481,1", lines[1])
}

func TestWritePayrollXLSX(t *testing.T) {
	period, _ := worktime.PayrollPeriod("2025-12")
	var buf bytes.Buffer

	require.NoError(t, WritePayrollXLSX(&buf, exportRows(), period))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(payrollSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, PayrollHeader, rows[0])
	assert.Equal(t, "E001", rows[1][0])
	assert.Equal(t, "60", rows[1][5])
	assert.Equal(t, "u2", rows[2][10])
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "attendance_2025-12.csv", SelfFilename("2025-12"))
	assert.Equal(t, "attendance_all_2025-12_cutoff16-15.xlsx", PayrollFilename("2025-12", "xlsx"))
}
