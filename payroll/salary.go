package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SALARY CALCULATOR
// =============================================================================

// Calculator composes the bonus rule and the line-item aggregator:
//
//	BasicPay = (WorkDays + BonusDayCount) * DailyRate
//	NetPay   = BasicPay + TotalBonuses - TotalDeductions
type Calculator struct {
	Rules PayRules
	rule  BonusRule
}

func NewCalculator(rules PayRules) *Calculator {
	return &Calculator{Rules: rules, rule: NewBonusRule(rules)}
}

// Calculate evaluates attendance over dates and combines it with the line
// items. The only possible error is a store read failure.
func (c *Calculator) Calculate(ctx context.Context, workerID WorkerID, dates []CalendarDate, ledger *Ledger, bonuses, deductions map[Category]LineItem) (SalaryBreakdown, error) {
	summary, err := c.rule.Evaluate(ctx, ledger, workerID, dates)
	if err != nil {
		return SalaryBreakdown{}, err
	}
	return c.Breakdown(summary, bonuses, deductions), nil
}

// Breakdown is the pure part of Calculate.
func (c *Calculator) Breakdown(summary WorkSummary, bonuses, deductions map[Category]LineItem) SalaryBreakdown {
	paidDays := decimal.NewFromInt(int64(summary.WorkDays + summary.BonusDayCount))
	basic := paidDays.Mul(c.Rules.DailyRate)
	totalBonuses := SumEnabled(bonuses)
	totalDeductions := SumEnabled(deductions)

	return SalaryBreakdown{
		WorkDays:        summary.WorkDays,
		BonusDayCount:   summary.BonusDayCount,
		BasicPay:        basic,
		TotalBonuses:    totalBonuses,
		TotalDeductions: totalDeductions,
		NetPay:          basic.Add(totalBonuses).Sub(totalDeductions),
	}
}
