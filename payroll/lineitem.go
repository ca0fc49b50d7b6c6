package payroll

import "github.com/shopspring/decimal"

// SumEnabled totals the amounts of enabled items. Disabled items, items whose
// amount does not parse, and categories outside the fixed set contribute
// nothing. Negative amounts are summed as entered.
func SumEnabled(items map[Category]LineItem) decimal.Decimal {
	total := decimal.Zero
	for category, item := range items {
		if !item.Enabled || !category.Known() {
			continue
		}
		total = total.Add(item.Value())
	}
	return total
}

// SplitLineItems partitions a worker's items into bonuses and deductions.
// Unknown categories are dropped.
func SplitLineItems(items map[Category]LineItem) (bonuses, deductions map[Category]LineItem) {
	bonuses = make(map[Category]LineItem)
	deductions = make(map[Category]LineItem)
	for category, item := range items {
		switch category.Kind() {
		case KindBonus:
			bonuses[category] = item
		case KindDeduction:
			deductions[category] = item
		}
	}
	return bonuses, deductions
}
