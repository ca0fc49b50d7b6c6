package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/shift-payroll/payroll"
	"github.com/warp/shift-payroll/report"
)

func testSlips(t *testing.T) []payroll.Payslip {
	t.Helper()
	dates, err := payroll.ComputePeriod(time.October, 2025)
	require.NoError(t, err)

	days := make([]payroll.DayStatus, len(dates))
	for i, d := range dates {
		days[i] = payroll.DayStatus{Date: d}
	}
	days[0].Status = payroll.Present

	return []payroll.Payslip{
		{
			Worker: payroll.Worker{ID: 1, GivenName: "Somchai", FamilyName: "Jaidee", EmployeeCode: "G001"},
			Days:   days,
			Breakdown: payroll.SalaryBreakdown{
				WorkDays:        20,
				BonusDayCount:   2,
				BasicPay:        decimal.NewFromInt(13200),
				TotalBonuses:    decimal.NewFromInt(500),
				TotalDeductions: decimal.NewFromInt(200),
				NetPay:          decimal.NewFromInt(13500),
			},
		},
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	// GIVEN: one payslip
	slips := testSlips(t)

	// WHEN: writing the workbook
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, slips))

	// THEN: both sheets read back
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.SummarySheet, report.AttendanceSheet}, f.GetSheetList())

	rows, err := f.GetRows(report.SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, "Net Pay", rows[0][7])
	assert.Equal(t, []string{"G001", "Somchai Jaidee", "20", "2", "13200", "500", "200", "13500"}, rows[1])

	grid, err := f.GetRows(report.AttendanceSheet)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Len(t, grid[0], 31)
	assert.Equal(t, "2025-09-16", grid[0][1])
	assert.Equal(t, "G001", grid[1][0])
	assert.Equal(t, "N", grid[1][1])
	assert.Equal(t, "F", grid[1][2])
}

func TestBuild_Empty(t *testing.T) {
	f, err := report.Build(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	v, err := f.GetCellValue(report.AttendanceSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Code", v)
}
