package model

// AccountBalance is one row of the per-account balance breakdown.
type AccountBalance struct {
	AccountID string        `json:"account_id"`
	Name      string        `json:"name"`
	Balance   int64         `json:"balance"`
	Status    AccountStatus `json:"status"`
}

// FinancialSnapshot is the monthly reduction of transactions and accounts.
type FinancialSnapshot struct {
	Year                    int              `json:"year"`
	Month                   int              `json:"month"`
	TransactionCount        int              `json:"transaction_count"`
	MonthlyIncome           int64            `json:"monthly_income"`
	MonthlyExpenses         int64            `json:"monthly_expenses"`
	MonthlySavingsTransfers int64            `json:"monthly_savings_transfers"`
	NetBalance              int64            `json:"net_balance"`
	AvailableBalance        int64            `json:"available_balance"`
	AccountBalances         []AccountBalance `json:"account_balances"`
}

// RiskLevel classifies the projected cash position before the next payday.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskWarning RiskLevel = "warning"
	RiskDanger  RiskLevel = "danger"
)

// Pillars holds the four independently scored dimensions, each 0-100.
type Pillars struct {
	BudgetCompliance    float64 `json:"budget_compliance"`
	SpendingConsistency float64 `json:"spending_consistency"`
	SavingsHealth       float64 `json:"savings_health"`
	CashSurvivalRisk    float64 `json:"cash_survival_risk"`
}

// ScoreMetrics are the raw figures the pillars are derived from.
type ScoreMetrics struct {
	RemainingBalance      int64   `json:"remaining_balance"`
	DaysUntilPayday       int     `json:"days_until_payday"`
	AvgDailySpend         float64 `json:"avg_daily_spend"`
	ExpectedSpendToPayday int64   `json:"expected_spend_to_payday"`
	RiskRatio             float64 `json:"risk_ratio"`
	SafeToSpendPerDay     int64   `json:"safe_to_spend_per_day"`
	CycleObligations      int64   `json:"cycle_obligations"`
	GoalAllocations       int64   `json:"goal_allocations"`
}

// BudgetScoreResult is the composite budget health score.
type BudgetScoreResult struct {
	TotalScore float64      `json:"total_score"`
	Pillars    Pillars      `json:"pillars"`
	Metrics    ScoreMetrics `json:"metrics"`
	RiskLevel  RiskLevel    `json:"risk_level"`
}
