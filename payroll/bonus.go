package payroll

import "context"

// =============================================================================
// CONSECUTIVE-WORK BONUS RULE
// =============================================================================

// BonusRule awards one bonus day per unbroken run of StreakLength present
// days. The run counter resets both when a bonus is awarded and on any
// absence, so 6 present + 1 absent + 7 present earns exactly one bonus.
type BonusRule struct {
	StreakLength int
}

func NewBonusRule(rules PayRules) BonusRule {
	return BonusRule{StreakLength: rules.StreakLength}
}

// Apply reduces an ordered status sequence to work and bonus-day counts.
func (r BonusRule) Apply(statuses []Status) WorkSummary {
	var summary WorkSummary
	streak := 0
	for _, s := range statuses {
		if s != Present {
			streak = 0
			continue
		}
		summary.WorkDays++
		streak++
		if r.StreakLength > 0 && streak == r.StreakLength {
			summary.BonusDayCount++
			streak = 0
		}
	}
	return summary
}

// Evaluate reads the worker's statuses for dates from the ledger and applies
// the rule. dates must be in calendar order for the streak to be meaningful.
func (r BonusRule) Evaluate(ctx context.Context, ledger *Ledger, workerID WorkerID, dates []CalendarDate) (WorkSummary, error) {
	statuses, err := ledger.Statuses(ctx, workerID, dates)
	if err != nil {
		return WorkSummary{}, err
	}
	return r.Apply(statuses), nil
}
