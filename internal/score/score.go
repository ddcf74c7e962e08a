// Package score computes the composite budget health score.
//
// Four pillars are scored independently on [0, 100] and combined as a
// weighted mean. Every pillar degrades to NeutralScore when the data it
// needs is missing, so a new user with no history still gets a score.
package score

import (
	"math"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/paycycle"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
)

// Scoring constants.
const (
	// NeutralScore is used for a pillar with nothing to measure.
	NeutralScore = 50.0
	// MaxRiskRatio caps the risk ratio, including when nothing remains to spend.
	MaxRiskRatio = 999.0
	// SafeMaxRatio is the highest risk ratio still classed as safe.
	SafeMaxRatio = 0.7
	// WarningMaxRatio is the highest risk ratio classed as warning.
	WarningMaxRatio = 1.0
	// TrailingDays is the window for average and volatility of daily spend.
	TrailingDays = 30
	// DefaultSavingsTargetPct applies when the budget method sets no savings share.
	DefaultSavingsTargetPct = 20
	// GoalProgressShare is the weight of goal progress inside savings health.
	GoalProgressShare = 0.6
)

// Weights are the relative pillar weights. They need not sum to 100.
type Weights struct {
	BudgetCompliance    float64
	SpendingConsistency float64
	SavingsHealth       float64
	CashSurvivalRisk    float64
}

// DefaultWeights is 30/25/25/20.
var DefaultWeights = Weights{
	BudgetCompliance:    30,
	SpendingConsistency: 25,
	SavingsHealth:       25,
	CashSurvivalRisk:    20,
}

func (w Weights) sum() float64 {
	return w.BudgetCompliance + w.SpendingConsistency + w.SavingsHealth + w.CashSurvivalRisk
}

// Validate rejects negative weights and an all-zero set.
func (w Weights) Validate() error {
	for _, v := range []float64{w.BudgetCompliance, w.SpendingConsistency, w.SavingsHealth, w.CashSurvivalRisk} {
		if v < 0 || math.IsNaN(v) {
			return model.Invalid("weights", "Weights", "gte=0")
		}
	}
	if w.sum() <= 0 {
		return model.Invalid("weights", "Weights", "sum>0")
	}
	return nil
}

// Input is a consistent snapshot of everything the score depends on.
type Input struct {
	Snapshot model.FinancialSnapshot
	// Transactions must cover the TrailingDays ending on Today.
	Transactions []model.Transaction
	Goals        []model.Goal
	BudgetItems  []model.BudgetItem
	Settings     model.UserSettings
	Today        time.Time
}

// Calculator scores inputs with a fixed set of weights. The zero value uses
// DefaultWeights.
type Calculator struct {
	Weights Weights
}

// New returns a Calculator after validating w.
func New(w Weights) (*Calculator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{Weights: w}, nil
}

// Calculate scores in with DefaultWeights.
func Calculate(in Input) (model.BudgetScoreResult, error) {
	return Calculator{Weights: DefaultWeights}.Calculate(in)
}

// Calculate produces the composite score. It fails only on structurally
// invalid input; missing goals, budget items or history yield neutral values.
func (c Calculator) Calculate(in Input) (model.BudgetScoreResult, error) {
	if err := validateInput(in); err != nil {
		return model.BudgetScoreResult{}, err
	}
	w := c.Weights
	if w == (Weights{}) {
		w = DefaultWeights
	}
	if err := w.Validate(); err != nil {
		return model.BudgetScoreResult{}, err
	}

	metrics := Metrics(in)
	series := pipeline.DailySpend(in.Transactions, in.Today, TrailingDays)

	budget := BudgetCompliance(in.Snapshot.MonthlyExpenses, SpendingLimit(in.Snapshot, in.BudgetItems, in.Settings))
	consistency := SpendingConsistency(series)
	savings := SavingsHealth(in.Goals, in.Snapshot, in.Settings)
	survival := CashSurvival(metrics.RiskRatio)

	total := (w.BudgetCompliance*budget +
		w.SpendingConsistency*consistency +
		w.SavingsHealth*savings +
		w.CashSurvivalRisk*survival) / w.sum()

	return model.BudgetScoreResult{
		TotalScore: round1(clamp(total, 0, 100)),
		Pillars: model.Pillars{
			BudgetCompliance:    round1(budget),
			SpendingConsistency: round1(consistency),
			SavingsHealth:       round1(savings),
			CashSurvivalRisk:    round1(survival),
		},
		Metrics:   metrics,
		RiskLevel: Level(metrics.RiskRatio),
	}, nil
}

func validateInput(in Input) error {
	if in.Today.IsZero() {
		return model.Invalid("score input", "Today", "required")
	}
	if p := in.Settings.PaydayOfMonth; p < 1 || p > 31 {
		return model.Invalid("settings", "PaydayOfMonth", "min=1,max=31")
	}
	if err := model.ValidateSettings(in.Settings); err != nil {
		return err
	}
	if err := model.ValidateGoals(in.Goals); err != nil {
		return err
	}
	return model.ValidateBudgetItems(in.BudgetItems)
}

// Metrics derives the cash-position figures behind the cash survival pillar.
func Metrics(in Input) model.ScoreMetrics {
	var allocations int64
	for _, g := range in.Goals {
		allocations += g.MonthlyAllocation
	}
	obligations := pipeline.CycleObligations(in.BudgetItems, in.Settings.Cadence)
	remaining := in.Snapshot.AvailableBalance - allocations - obligations

	days := paycycle.DaysUntilPayday(in.Today, in.Settings.PaydayOfMonth)
	avg := pipeline.AvgDailySpend(in.Transactions, in.Today, TrailingDays)
	expected := int64(math.Round(avg * float64(days)))

	safe := int64(0)
	if remaining > 0 {
		safe = remaining / int64(days)
	}

	return model.ScoreMetrics{
		RemainingBalance:      remaining,
		DaysUntilPayday:       days,
		AvgDailySpend:         avg,
		ExpectedSpendToPayday: expected,
		RiskRatio:             RiskRatio(expected, remaining),
		SafeToSpendPerDay:     safe,
		CycleObligations:      obligations,
		GoalAllocations:       allocations,
	}
}

// RiskRatio is expected spend over what remains, with a floor of one minor
// unit on the denominator, capped at MaxRiskRatio. No expected spend is 0
// whatever remains.
func RiskRatio(expected, remaining int64) float64 {
	if expected <= 0 {
		return 0
	}
	return math.Min(float64(expected)/float64(max(remaining, 1)), MaxRiskRatio)
}

// Level classifies a risk ratio.
func Level(ratio float64) model.RiskLevel {
	switch {
	case ratio <= SafeMaxRatio:
		return model.RiskSafe
	case ratio <= WarningMaxRatio:
		return model.RiskWarning
	default:
		return model.RiskDanger
	}
}

// SpendingLimit is the monthly amount expenses are measured against.
// Zero-based budgets use the budgeted total; percentage-based budgets use the
// needs and wants share of income, or the budgeted total before any income.
func SpendingLimit(snap model.FinancialSnapshot, items []model.BudgetItem, s model.UserSettings) int64 {
	if s.BudgetMethod == model.MethodPercentageBased && snap.MonthlyIncome > 0 {
		return snap.MonthlyIncome * int64(s.NeedsPct+s.WantsPct) / 100
	}
	return pipeline.MonthlyBudgetTotal(items)
}

// BudgetCompliance is 100 within the limit and falls linearly to 0 at double
// the limit. With no limit it is neutral when nothing was spent and 0 otherwise.
func BudgetCompliance(expenses, limit int64) float64 {
	if limit <= 0 {
		if expenses <= 0 {
			return NeutralScore
		}
		return 0
	}
	if expenses <= limit {
		return 100
	}
	over := float64(expenses-limit) / float64(limit)
	return clamp(100*(1-over), 0, 100)
}

// SpendingConsistency is 100/(1+cv) for the coefficient of variation of
// daily spend. No spending at all is neutral.
func SpendingConsistency(daily []int64) float64 {
	if len(daily) == 0 {
		return NeutralScore
	}
	var total int64
	for _, v := range daily {
		total += v
	}
	if total <= 0 {
		return NeutralScore
	}
	mean := float64(total) / float64(len(daily))

	var sq float64
	for _, v := range daily {
		d := float64(v) - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(daily))) / mean
	return clamp(100/(1+cv), 0, 100)
}

// SavingsHealth blends progress toward goal targets with the savings rate
// relative to the savings target share of income.
func SavingsHealth(goals []model.Goal, snap model.FinancialSnapshot, s model.UserSettings) float64 {
	var saved, target int64
	for _, g := range goals {
		if g.Target <= 0 {
			continue
		}
		target += g.Target
		saved += min(g.Saved, g.Target)
	}

	hasProgress := target > 0
	hasRate := snap.MonthlyIncome > 0

	var progress, rate float64
	if hasProgress {
		progress = 100 * float64(saved) / float64(target)
	}
	if hasRate {
		want := float64(DefaultSavingsTargetPct)
		if s.BudgetMethod == model.MethodPercentageBased && s.SavingsPct > 0 {
			want = float64(s.SavingsPct)
		}
		transfers := snap.MonthlySavingsTransfers
		if transfers < 0 {
			transfers = -transfers
		}
		actual := 100 * float64(transfers) / float64(snap.MonthlyIncome)
		rate = clamp(100*actual/want, 0, 100)
	}

	switch {
	case hasProgress && hasRate:
		return clamp(GoalProgressShare*progress+(1-GoalProgressShare)*rate, 0, 100)
	case hasProgress:
		return clamp(progress, 0, 100)
	case hasRate:
		return rate
	default:
		return NeutralScore
	}
}

// CashSurvival maps a risk ratio onto [0, 100]: 100 at 0, 50 at 1, 0 at 2 and above.
func CashSurvival(ratio float64) float64 {
	return 100 * clamp(1-ratio/2, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
