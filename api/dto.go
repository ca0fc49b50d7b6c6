/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Small response wrappers

MONEY:
  Amounts are computed with decimal.Decimal inside the engine and exposed
  as JSON numbers here. Line item amounts keep the operator's raw text in
  "amount" next to the parsed "value".

DATES:
  Always YYYY-MM-DD. Months in query strings are 1-12.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: Domain types
*/
package api

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/warp/shift-payroll/payroll"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// WorkerDTO represents a worker in API responses.
type WorkerDTO struct {
	ID           int64  `json:"id"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	EmployeeCode string `json:"employee_code"`
}

// WorkerRequest is the body for creating or editing a worker.
type WorkerRequest struct {
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	EmployeeCode string `json:"employee_code"`
}

// LoginRequest unlocks edit mode.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the edit token to send as X-Edit-Token.
type LoginResponse struct {
	Token string `json:"token"`
}

// PeriodDTO lists the dates of one pay period.
type PeriodDTO struct {
	Month int      `json:"month"`
	Year  int      `json:"year"`
	Start string   `json:"start"`
	End   string   `json:"end"`
	Dates []string `json:"dates"`
}

// DayStatusDTO is one cell of the attendance grid.
type DayStatusDTO struct {
	Date    string `json:"date"`
	Status  string `json:"status"`
	Present bool   `json:"present"`
}

// AttendanceDTO is a worker's grid for one period.
type AttendanceDTO struct {
	WorkerID int64          `json:"worker_id"`
	Month    int            `json:"month"`
	Year     int            `json:"year"`
	Days     []DayStatusDTO `json:"days"`
}

// ToggleResponse reports the status after a toggle.
type ToggleResponse struct {
	WorkerID int64  `json:"worker_id"`
	Date     string `json:"date"`
	Status   string `json:"status"`
	Present  bool   `json:"present"`
}

// LineItemDTO is one bonus or deduction entry.
type LineItemDTO struct {
	Category string  `json:"category"`
	Kind     string  `json:"kind"`
	Label    string  `json:"label"`
	Enabled  bool    `json:"enabled"`
	Amount   string  `json:"amount"`
	Value    float64 `json:"value"`
}

// LineItemsDTO groups a worker's entries by kind, in form order.
type LineItemsDTO struct {
	WorkerID   int64         `json:"worker_id"`
	Bonuses    []LineItemDTO `json:"bonuses"`
	Deductions []LineItemDTO `json:"deductions"`
}

// LineItemRequest sets one entry. Amount may be a JSON string or number.
type LineItemRequest struct {
	Enabled bool        `json:"enabled"`
	Amount  amountInput `json:"amount"`
}

// SalaryDTO is the computed breakdown.
type SalaryDTO struct {
	WorkDays        int     `json:"work_days"`
	BonusDayCount   int     `json:"bonus_day_count"`
	BasicPay        float64 `json:"basic_pay"`
	TotalBonuses    float64 `json:"total_bonuses"`
	TotalDeductions float64 `json:"total_deductions"`
	NetPay          float64 `json:"net_pay"`
}

// PayslipDTO is one worker card of the payroll view.
type PayslipDTO struct {
	Worker     WorkerDTO      `json:"worker"`
	Attendance []DayStatusDTO `json:"attendance"`
	Bonuses    []LineItemDTO  `json:"bonuses"`
	Deductions []LineItemDTO  `json:"deductions"`
	Salary     SalaryDTO      `json:"salary"`
}

// PayrollDTO is the whole roster for one period.
type PayrollDTO struct {
	Month    int          `json:"month"`
	Year     int          `json:"year"`
	Payslips []PayslipDTO `json:"payslips"`
}

// CategoryDTO describes one fixed category.
type CategoryDTO struct {
	Category string `json:"category"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

// amountInput accepts "500", 500 or null. Anything else is kept verbatim and
// later counts as zero.
type amountInput string

func (a *amountInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountInput(s)
	default:
		*a = amountInput(data)
	}
	return nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toWorkerDTO(w payroll.Worker) WorkerDTO {
	return WorkerDTO{
		ID:           int64(w.ID),
		GivenName:    w.GivenName,
		FamilyName:   w.FamilyName,
		EmployeeCode: w.EmployeeCode,
	}
}

func toDayStatusDTOs(days []payroll.DayStatus) []DayStatusDTO {
	dtos := make([]DayStatusDTO, len(days))
	for i, d := range days {
		dtos[i] = DayStatusDTO{
			Date:    d.Date.String(),
			Status:  d.Status.String(),
			Present: d.Status == payroll.Present,
		}
	}
	return dtos
}

// toLineItemDTOs lists every category of the given order, filling untouched
// ones with a disabled empty entry. Stored entries outside order are appended
// sorted by name so nothing is hidden.
func toLineItemDTOs(items map[payroll.Category]payroll.LineItem, order []payroll.Category) []LineItemDTO {
	dtos := make([]LineItemDTO, 0, len(order))
	seen := make(map[payroll.Category]bool, len(order))
	for _, c := range order {
		seen[c] = true
		dtos = append(dtos, toLineItemDTO(c, items[c]))
	}

	var extra []payroll.Category
	for c := range items {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, c := range extra {
		dtos = append(dtos, toLineItemDTO(c, items[c]))
	}
	return dtos
}

func toLineItemDTO(c payroll.Category, item payroll.LineItem) LineItemDTO {
	return LineItemDTO{
		Category: string(c),
		Kind:     string(c.Kind()),
		Label:    c.Label(),
		Enabled:  item.Enabled,
		Amount:   item.Amount,
		Value:    item.Value().InexactFloat64(),
	}
}

func toSalaryDTO(b payroll.SalaryBreakdown) SalaryDTO {
	return SalaryDTO{
		WorkDays:        b.WorkDays,
		BonusDayCount:   b.BonusDayCount,
		BasicPay:        b.BasicPay.InexactFloat64(),
		TotalBonuses:    b.TotalBonuses.InexactFloat64(),
		TotalDeductions: b.TotalDeductions.InexactFloat64(),
		NetPay:          b.NetPay.InexactFloat64(),
	}
}

func toPayslipDTO(slip payroll.Payslip) PayslipDTO {
	return PayslipDTO{
		Worker:     toWorkerDTO(slip.Worker),
		Attendance: toDayStatusDTOs(slip.Days),
		Bonuses:    toLineItemDTOs(slip.Bonuses, payroll.BonusCategories),
		Deductions: toLineItemDTOs(slip.Deductions, payroll.DeductionCategories),
		Salary:     toSalaryDTO(slip.Breakdown),
	}
}
