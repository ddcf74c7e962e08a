package source

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashpulse/internal/model"
)

// Record types recognised in an import file.
const (
	TypeAccount     = "account"
	TypeTransaction = "transaction"
	TypeGoal        = "goal"
	TypeBudgetItem  = "budget_item"
	TypeSettings    = "settings"
)

// RawAccount is an "account" line.
type RawAccount struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Status           string          `json:"status"`
}

// RawTransaction is a "transaction" line. Amount is in major units.
type RawTransaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
}

// RawGoal is a "goal" line.
type RawGoal struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Target            decimal.Decimal `json:"target"`
	Saved             decimal.Decimal `json:"saved"`
	MonthlyAllocation decimal.Decimal `json:"monthly_allocation"`
	DueDate           string          `json:"due_date"`
	Priority          *int            `json:"priority,omitempty"`
}

// RawBudgetItem is a "budget_item" line.
type RawBudgetItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Frequency      string          `json:"frequency"`
	Amount         decimal.Decimal `json:"amount"`
	DaysPerWeek    int             `json:"days_per_week,omitempty"`
	Group          string          `json:"group,omitempty"`
	ParentCategory string          `json:"parent_category,omitempty"`
}

// RawSettings is a "settings" line. Zero fields keep the current value.
type RawSettings struct {
	PaydayOfMonth int    `json:"payday_of_month"`
	Cadence       string `json:"cadence"`
	BudgetMethod  string `json:"budget_method"`
	NeedsPct      *int   `json:"needs_pct,omitempty"`
	WantsPct      *int   `json:"wants_pct,omitempty"`
	SavingsPct    *int   `json:"savings_pct,omitempty"`
	Strategy      string `json:"strategy"`
}

// Batch is everything decoded from one import file.
type Batch struct {
	Accounts     []model.Account
	Transactions []model.Transaction
	Goals        []model.Goal
	BudgetItems  []model.BudgetItem
	// Settings is the last settings line in the file, merged over defaults.
	Settings *model.UserSettings
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	n := len(b.Accounts) + len(b.Transactions) + len(b.Goals) + len(b.BudgetItems)
	if b.Settings != nil {
		n++
	}
	return n
}

// DiscoveredFile represents a JSONL file found during directory scanning.
type DiscoveredFile struct {
	Path      string
	Name      string // file name without extension
	MtimeNs   int64
	SizeBytes int64
}
