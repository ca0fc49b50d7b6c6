/*
Package payroll provides the shift payroll engine.

PURPOSE:
  Tracks daily attendance for a small roster of shift workers, applies
  per-worker bonus and deduction line items, and computes a net-salary
  breakdown for a semi-monthly pay period (16th of one month through the
  15th of the next).

KEY CONCEPTS IN THIS FILE (types.go):
  - Worker: a roster entry (name, family name, employee code)
  - Status: Present/Absent for one worker on one day
  - Category / LineItem: toggleable bonus or deduction amounts
  - SalaryBreakdown: the derived result shown to the operator
  - PayRules: daily rate and streak length

DESIGN PRINCIPLES:
  1. Precision: money uses decimal.Decimal, never float64
  2. Value keys: attendance and line items are keyed by comparable structs,
     not concatenated strings
  3. Derived results: breakdowns are recomputed on demand, never stored

USAGE:
  svc := payroll.NewService(store.NewMemory(), payroll.DefaultPayRules(), logger)
  slip, err := svc.Salary(ctx, workerID, time.October, 2025)

SEE ALSO:
  - calendar.go: Pay-period date window
  - bonus.go: Consecutive-work bonus rule
  - salary.go: Salary calculator
  - service.go: Session handle used by the API
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// WORKER
// =============================================================================

type WorkerID int64

// Worker is a roster entry. EmployeeCode is the display/search identifier.
type Worker struct {
	ID           WorkerID `json:"id"`
	GivenName    string   `json:"given_name" validate:"required"`
	FamilyName   string   `json:"family_name" validate:"required"`
	EmployeeCode string   `json:"employee_code" validate:"required"`
}

// FullName joins given and family name the way the roster card shows it.
func (w Worker) FullName() string {
	return w.GivenName + " " + w.FamilyName
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// Status is the attendance flag for one worker on one day.
// The zero value is Absent, which is also the default for unset days.
type Status int

const (
	Absent Status = iota
	Present
)

func (s Status) String() string {
	if s == Present {
		return "present"
	}
	return "absent"
}

// Flip returns the opposite status.
func (s Status) Flip() Status {
	if s == Present {
		return Absent
	}
	return Present
}

// AttendanceKey identifies one attendance entry.
type AttendanceKey struct {
	WorkerID WorkerID
	Date     CalendarDate
}

// =============================================================================
// LINE ITEMS
// =============================================================================

// Kind separates bonus categories from deduction categories.
type Kind string

const (
	KindBonus     Kind = "bonus"
	KindDeduction Kind = "deduction"
)

// Category is one of the fixed bonus/deduction categories.
type Category string

const (
	CategoryHoliday   Category = "holiday"
	CategoryAllowance Category = "allowance"
	CategoryDiligence Category = "diligence"
	CategoryTransport Category = "transport"

	CategorySocial    Category = "social"
	CategoryLife      Category = "life"
	CategoryAdvance   Category = "advance"
	CategoryEquipment Category = "equipment"
)

type categoryInfo struct {
	kind  Kind
	label string
}

// The set is closed; adding a category means adding it here.
var categories = map[Category]categoryInfo{
	CategoryHoliday:   {KindBonus, "วันหยุดนักขัตฤกษ์"},
	CategoryAllowance: {KindBonus, "เบี้ยเลี้ยง"},
	CategoryDiligence: {KindBonus, "เบี้ยขยัน"},
	CategoryTransport: {KindBonus, "ค่าจราจร"},
	CategorySocial:    {KindDeduction, "ประกันสังคม"},
	CategoryLife:      {KindDeduction, "ประกันชีวิต"},
	CategoryAdvance:   {KindDeduction, "เบิกล่วงหน้า"},
	CategoryEquipment: {KindDeduction, "เบิกอุปกรณ์"},
}

// BonusCategories and DeductionCategories list the categories in form order.
var (
	BonusCategories     = []Category{CategoryHoliday, CategoryAllowance, CategoryDiligence, CategoryTransport}
	DeductionCategories = []Category{CategorySocial, CategoryLife, CategoryAdvance, CategoryEquipment}
)

// Known reports whether c belongs to the closed category set.
func (c Category) Known() bool {
	_, ok := categories[c]
	return ok
}

// Kind returns the category's kind, or "" for unknown categories.
func (c Category) Kind() Kind { return categories[c].kind }

// Label returns the display label, or the raw name for unknown categories.
func (c Category) Label() string {
	if info, ok := categories[c]; ok {
		return info.label
	}
	return string(c)
}

// LineItem is a toggleable amount. Amount keeps the raw operator input;
// it is only parsed when totals are computed.
type LineItem struct {
	Enabled bool   `json:"enabled"`
	Amount  string `json:"amount"`
}

// Value returns the parsed amount, zero when the input is not a number.
func (li LineItem) Value() decimal.Decimal {
	return parseAmount(li.Amount)
}

// Normalized drops the amount of a disabled item, so re-enabling it starts
// from an empty field.
func (li LineItem) Normalized() LineItem {
	if !li.Enabled {
		li.Amount = ""
	}
	return li
}

// LineItemKey identifies one line item.
type LineItemKey struct {
	WorkerID WorkerID
	Category Category
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// SALARY
// =============================================================================

// WorkSummary is the output of the consecutive-work bonus rule.
type WorkSummary struct {
	WorkDays      int
	BonusDayCount int
}

// SalaryBreakdown is the derived net-salary result.
type SalaryBreakdown struct {
	WorkDays        int
	BonusDayCount   int
	BasicPay        decimal.Decimal
	TotalBonuses    decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
}

// PayRules holds the two numbers the calculation depends on.
type PayRules struct {
	DailyRate    decimal.Decimal
	StreakLength int
}

const (
	DefaultDailyRate    = 600
	DefaultStreakLength = 7
)

func DefaultPayRules() PayRules {
	return PayRules{
		DailyRate:    decimal.NewFromInt(DefaultDailyRate),
		StreakLength: DefaultStreakLength,
	}
}
