// Package report loads one consistent set of inputs and runs the scoring and
// savings engines over it.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/paycycle"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
	"github.com/theirongolddev/cashpulse/internal/savings"
	"github.com/theirongolddev/cashpulse/internal/score"
)

// Options configures Build.
type Options struct {
	Load       pipeline.LoadOptions
	Calculator score.Calculator
	Classifier pipeline.Classifier
	// Strategy overrides the stored shortfall strategy when set.
	Strategy model.Strategy
}

// Report is the result of one recompute.
type Report struct {
	At          time.Time               `json:"at"`
	Inputs      *pipeline.Inputs        `json:"-"`
	Snapshot    model.FinancialSnapshot `json:"snapshot"`
	Score       model.BudgetScoreResult `json:"score"`
	Savings     model.SavingsStatus     `json:"savings"`
	NextPayday  time.Time               `json:"next_payday"`
	CycleLength int                     `json:"cycle_length_days"`
}

// Build loads inputs from src and evaluates them.
func Build(ctx context.Context, src pipeline.Source, opts Options) (Report, error) {
	in, err := pipeline.LoadSnapshot(ctx, src, opts.Load)
	if err != nil {
		return Report{}, err
	}
	if opts.Strategy != "" {
		if !opts.Strategy.Valid() {
			return Report{}, model.Invalid("report options", "Strategy", "oneof")
		}
		in.Settings.Strategy = opts.Strategy
	}
	return Evaluate(in, opts)
}

// Evaluate runs both engines over already loaded inputs.
func Evaluate(in *pipeline.Inputs, opts Options) (Report, error) {
	c := opts.Classifier
	if c == nil {
		c = pipeline.DefaultClassifier()
	}
	snap := in.Snapshot(c)

	result, err := opts.Calculator.Calculate(score.Input{
		Snapshot:     snap,
		Transactions: in.Transactions,
		Goals:        in.Goals,
		BudgetItems:  in.BudgetItems,
		Settings:     in.Settings,
		Today:        in.Today,
	})
	if err != nil {
		return Report{}, fmt.Errorf("scoring: %w", err)
	}

	status, err := savings.Evaluate(savings.Input{
		Goals:       in.Goals,
		BudgetItems: in.BudgetItems,
		Snapshot:    snap,
		Settings:    in.Settings,
		Today:       in.Today,
	})
	if err != nil {
		return Report{}, fmt.Errorf("savings: %w", err)
	}

	return Report{
		At:          in.Today,
		Inputs:      in,
		Snapshot:    snap,
		Score:       result,
		Savings:     status,
		NextPayday:  paycycle.NextPayday(in.Today, in.Settings.PaydayOfMonth),
		CycleLength: paycycle.CycleLengthDays(in.Today, in.Settings.PaydayOfMonth, in.Settings.Cadence),
	}, nil
}
