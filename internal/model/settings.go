package model

// Cadence is how often income arrives.
type Cadence string

const (
	CadenceMonthly  Cadence = "monthly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceWeekly   Cadence = "weekly"
)

// Valid reports whether c is a known cadence.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceMonthly, CadenceBiweekly, CadenceWeekly:
		return true
	}
	return false
}

// BudgetMethod selects how the spending limit is derived.
type BudgetMethod string

const (
	MethodZeroBased       BudgetMethod = "zero_based"
	MethodPercentageBased BudgetMethod = "percentage_based"
)

// Strategy selects how a savings shortfall is spread across goals.
type Strategy string

const (
	StrategyInversePriority  Strategy = "inverse_priority"
	StrategyProportional     Strategy = "proportional"
	StrategyEvenDistribution Strategy = "even_distribution"
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{StrategyInversePriority, StrategyProportional, StrategyEvenDistribution}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyInversePriority, StrategyProportional, StrategyEvenDistribution:
		return true
	}
	return false
}

// UserSettings holds the per-user budgeting preferences.
type UserSettings struct {
	PaydayOfMonth int          `json:"payday_of_month" toml:"payday_of_month" validate:"min=1,max=31"`
	Cadence       Cadence      `json:"cadence" toml:"cadence" validate:"oneof=monthly biweekly weekly"`
	BudgetMethod  BudgetMethod `json:"budget_method" toml:"budget_method" validate:"oneof=zero_based percentage_based"`
	NeedsPct      int          `json:"needs_pct" toml:"needs_pct" validate:"gte=0,lte=100"`
	WantsPct      int          `json:"wants_pct" toml:"wants_pct" validate:"gte=0,lte=100"`
	SavingsPct    int          `json:"savings_pct" toml:"savings_pct" validate:"gte=0,lte=100"`
	Strategy      Strategy     `json:"strategy" toml:"strategy" validate:"oneof=inverse_priority proportional even_distribution"`
}

// DefaultSettings returns the settings used before the user configures anything.
func DefaultSettings() UserSettings {
	return UserSettings{
		PaydayOfMonth: 25,
		Cadence:       CadenceMonthly,
		BudgetMethod:  MethodZeroBased,
		NeedsPct:      50,
		WantsPct:      30,
		SavingsPct:    20,
		Strategy:      StrategyInversePriority,
	}
}
