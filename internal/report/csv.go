// Package report renders attendance data as CSV and XLSX documents.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
)

// utf8BOM lets spreadsheet applications detect the encoding of payroll files.
const utf8BOM = "\uFEFF"

var (
	SelfHeader    = []string{"date", "status", "in", "out", "gross_minutes", "break_minutes", "net_minutes", "overtime_minutes"}
	PayrollHeader = []string{"employee_no", "full_name", "work_date", "in", "out", "break_minutes", "net", "overtime", "location", "period", "user_id"}
)

// SelfFilename names the self-service export of a month.
func SelfFilename(month string) string {
	return fmt.Sprintf("attendance_%s.csv", month)
}

// PayrollFilename names the payroll export of a month in the given extension.
func PayrollFilename(month, ext string) string {
	return fmt.Sprintf("attendance_all_%s_cutoff16-15.%s", month, ext)
}

// SelfRecords turns day summaries into the 8-column self-service rows.
func SelfRecords(days []model.DaySummary) [][]string {
	records := make([][]string, 0, len(days))
	for _, d := range days {
		records = append(records, []string{
			d.Date,
			string(d.Status),
			worktime.FormatHM(d.InAt),
			worktime.FormatHM(d.OutAt),
			roundMinutes(d.GrossMinutes),
			roundMinutes(d.BreakMinutes),
			roundMinutes(d.NetMinutes),
			roundMinutes(d.OvertimeMinutes),
		})
	}
	return records
}

// PayrollRecords turns stored days joined with identity into the 11-column
// payroll rows. Net and overtime come from the stored values, never from events.
func PayrollRecords(rows []model.ExportRow, period worktime.Period) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		_, net, overtime := worktime.StoredDayMinutes(r.AttendanceDay)
		records = append(records, []string{
			value(r.EmployeeNo),
			value(r.FullName),
			r.WorkDate,
			worktime.FormatHM(r.InAt),
			worktime.FormatHM(r.OutAt),
			strconv.Itoa(r.BreakMinutes),
			worktime.FormatHHMM(net),
			worktime.FormatHHMM(overtime),
			value(r.Location),
			period.Label,
			r.UserID,
		})
	}
	return records
}

// WriteSelfCSV writes the self-service export.
func WriteSelfCSV(w io.Writer, days []model.DaySummary) error {
	return writeCSV(w, SelfHeader, SelfRecords(days))
}

// WritePayrollCSV writes the payroll export prefixed with a UTF-8 BOM.
func WritePayrollCSV(w io.Writer, rows []model.ExportRow, period worktime.Period) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	return writeCSV(w, PayrollHeader, PayrollRecords(rows, period))
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

func roundMinutes(m float64) string {
	return strconv.Itoa(int(math.Round(m)))
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
