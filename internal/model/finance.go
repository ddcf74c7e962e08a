// Package model defines domain types for cashpulse accounts, budgets and goals.
package model

import "time"

// AccountStatus reports whether an account still feeds the available balance.
type AccountStatus string

const (
	AccountActive       AccountStatus = "active"
	AccountDisconnected AccountStatus = "disconnected"
)

// Account is a linked bank account. Balances are in minor currency units.
type Account struct {
	ID               string        `json:"id" validate:"required"`
	Name             string        `json:"name"`
	AvailableBalance int64         `json:"available_balance"`
	Status           AccountStatus `json:"status" validate:"oneof=active disconnected"`
}

// IsActive reports whether the account counts toward the available balance.
func (a Account) IsActive() bool {
	return a.Status == AccountActive
}

// Transaction is a single posted movement on an account.
// A negative Amount is an outflow.
type Transaction struct {
	ID          string    `json:"id" validate:"required"`
	AccountID   string    `json:"account_id"`
	Amount      int64     `json:"amount"`
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
}

// Frequency is how often a budget item recurs.
type Frequency string

const (
	FrequencyMonthly  Frequency = "monthly"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyDaily    Frequency = "daily"
	FrequencyOnceOff  Frequency = "once_off"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyWeekly, FrequencyBiweekly, FrequencyDaily, FrequencyOnceOff:
		return true
	}
	return false
}

// BudgetGroup is the needs/wants/savings bucket a budget item rolls up into.
type BudgetGroup string

const (
	GroupNone    BudgetGroup = ""
	GroupNeeds   BudgetGroup = "needs"
	GroupWants   BudgetGroup = "wants"
	GroupSavings BudgetGroup = "savings"
)

// BudgetItem is a planned recurring (or one-off) outflow.
type BudgetItem struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name"`
	Frequency Frequency `json:"frequency" validate:"oneof=monthly weekly biweekly daily once_off"`
	Amount    int64     `json:"amount" validate:"gte=0"`
	// DaysPerWeek only applies to daily items; 0 means every day.
	DaysPerWeek    int         `json:"days_per_week,omitempty" validate:"gte=0,lte=7"`
	Group          BudgetGroup `json:"group,omitempty" validate:"omitempty,oneof=needs wants savings"`
	ParentCategory string      `json:"parent_category,omitempty"`
}

// Goal is a savings target the user contributes to every pay cycle.
type Goal struct {
	ID                string    `json:"id" validate:"required"`
	Name              string    `json:"name"`
	Target            int64     `json:"target" validate:"gt=0"`
	Saved             int64     `json:"saved" validate:"gte=0"`
	MonthlyAllocation int64     `json:"monthly_allocation" validate:"gte=0"`
	DueDate           time.Time `json:"due_date"`
	// Priority orders goals; lower values are more important.
	Priority int `json:"priority"`
}

// Remaining is the amount still needed to reach the target, never negative.
func (g Goal) Remaining() int64 {
	if g.Saved >= g.Target {
		return 0
	}
	return g.Target - g.Saved
}
