/*
Package report renders payroll results as an Excel workbook.

SHEETS:
  Summary:    one row per worker (code, name, work days, bonus days, basic,
              bonuses, deductions, net)
  Attendance: one row per worker, one column per pay-period day, "N" for
              present and "F" for absent (the form's grid letters)

Money cells are written as numbers so the sheet can be summed further.

SEE ALSO:
  - api/handlers.go: ExportPayroll streams the workbook
*/
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/shift-payroll/payroll"
)

const (
	SummarySheet    = "Summary"
	AttendanceSheet = "Attendance"
)

var summaryHeader = []any{
	"Code", "Name", "Work Days", "Bonus Days", "Basic Pay", "Bonuses", "Deductions", "Net Pay",
}

// Build creates the workbook for one pay period. The caller must Close it.
func Build(slips []payroll.Payslip) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(AttendanceSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeSummary(f, slips); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeAttendance(f, slips); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, slips []payroll.Payslip) error {
	f, err := Build(slips)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeSummary(f *excelize.File, slips []payroll.Payslip) error {
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	for i, slip := range slips {
		b := slip.Breakdown
		row := []any{
			slip.Worker.EmployeeCode,
			slip.Worker.FullName(),
			b.WorkDays,
			b.BonusDayCount,
			b.BasicPay.InexactFloat64(),
			b.TotalBonuses.InexactFloat64(),
			b.TotalDeductions.InexactFloat64(),
			b.NetPay.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("summary row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeAttendance(f *excelize.File, slips []payroll.Payslip) error {
	if len(slips) == 0 {
		return f.SetCellValue(AttendanceSheet, "A1", "Code")
	}

	header := []any{"Code"}
	for _, day := range slips[0].Days {
		header = append(header, day.Date.String())
	}
	if err := f.SetSheetRow(AttendanceSheet, "A1", &header); err != nil {
		return err
	}

	for i, slip := range slips {
		row := []any{slip.Worker.EmployeeCode}
		for _, day := range slip.Days {
			row = append(row, gridLetter(day.Status))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(AttendanceSheet, cell, &row); err != nil {
			return fmt.Errorf("attendance row %d: %w", i+2, err)
		}
	}
	return nil
}

func gridLetter(s payroll.Status) string {
	if s == payroll.Present {
		return "N"
	}
	return "F"
}
