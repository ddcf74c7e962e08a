package pipeline

import "github.com/theirongolddev/cashpulse/internal/model"

// AnnualAmount is how much a recurring budget item costs per year.
// Once-off items return their amount unchanged.
func AnnualAmount(item model.BudgetItem) int64 {
	switch item.Frequency {
	case model.FrequencyWeekly:
		return item.Amount * 52
	case model.FrequencyBiweekly:
		return item.Amount * 26
	case model.FrequencyDaily:
		days := int64(item.DaysPerWeek)
		if days <= 0 || days > 7 {
			days = 7
		}
		return item.Amount * days * 52
	case model.FrequencyOnceOff:
		return item.Amount
	default:
		return item.Amount * 12
	}
}

// MonthlyEquivalent normalises a budget item to a monthly amount, rounded to
// the nearest minor unit. Once-off items count at face value.
func MonthlyEquivalent(item model.BudgetItem) int64 {
	if item.Frequency == model.FrequencyOnceOff {
		return item.Amount
	}
	return divRound(AnnualAmount(item), 12)
}

// CyclesPerYear returns how many pay cycles a cadence has in a year.
func CyclesPerYear(cadence model.Cadence) int64 {
	switch cadence {
	case model.CadenceWeekly:
		return 52
	case model.CadenceBiweekly:
		return 26
	default:
		return 12
	}
}

// CycleObligations sums what the budget items commit the user to within one
// pay cycle of the given cadence. Once-off items are counted in full.
func CycleObligations(items []model.BudgetItem, cadence model.Cadence) int64 {
	var onceOff, annual int64
	for _, item := range items {
		if item.Amount <= 0 {
			continue
		}
		if item.Frequency == model.FrequencyOnceOff {
			onceOff += item.Amount
			continue
		}
		annual += AnnualAmount(item)
	}
	return onceOff + divRound(annual, CyclesPerYear(cadence))
}

// MonthlyBudgetTotal is the monthly equivalent of every budget item combined.
func MonthlyBudgetTotal(items []model.BudgetItem) int64 {
	var total int64
	for _, item := range items {
		if item.Amount > 0 {
			total += MonthlyEquivalent(item)
		}
	}
	return total
}

// PlannedByGroup totals the monthly equivalents per needs/wants/savings group.
// Items without a group are reported under model.GroupNone.
func PlannedByGroup(items []model.BudgetItem) map[model.BudgetGroup]int64 {
	totals := make(map[model.BudgetGroup]int64)
	for _, item := range items {
		if item.Amount > 0 {
			totals[item.Group] += MonthlyEquivalent(item)
		}
	}
	return totals
}

// divRound divides non-negative n by d, rounding half up.
func divRound(n, d int64) int64 {
	if d <= 0 {
		return 0
	}
	return (n + d/2) / d
}
