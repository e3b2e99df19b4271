package report

import (
	"fmt"
	"io"
	"strconv"

	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
	"github.com/xuri/excelize/v2"
)

const payrollSheet = "payroll"

// breakColumn holds break minutes, which are written as numbers in XLSX.
const breakColumn = 5

// WritePayrollXLSX writes the payroll export as a single-sheet workbook with
// the same columns as the CSV variant.
func WritePayrollXLSX(w io.Writer, rows []model.ExportRow, period worktime.Period) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), payrollSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(payrollSheet, "A1", toCells(PayrollHeader, -1)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range PayrollRecords(rows, period) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(payrollSheet, cell, toCells(rec, breakColumn)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(payrollSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func toCells(rec []string, numericCol int) *[]interface{} {
	cells := make([]interface{}, len(rec))
	for i, v := range rec {
		cells[i] = v
		if i == numericCol {
			if n, err := strconv.Atoi(v); err == nil {
				cells[i] = n
			}
		}
	}
	return &cells
}
