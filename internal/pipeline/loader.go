package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/paycycle"
)

// DefaultTrailingDays is the trailing window used for daily-spend figures.
const DefaultTrailingDays = 30

// DefaultReadTimeout bounds each read when LoadOptions.Timeout is unset.
const DefaultReadTimeout = 5 * time.Second

// Source is the read side of the data store.
type Source interface {
	Accounts(ctx context.Context) ([]model.Account, error)
	TransactionsBetween(ctx context.Context, since, until time.Time) ([]model.Transaction, error)
	Goals(ctx context.Context) ([]model.Goal, error)
	BudgetItems(ctx context.Context) ([]model.BudgetItem, error)
	Settings(ctx context.Context) (model.UserSettings, error)
}

// LoadOptions selects the month to aggregate and the reference day.
type LoadOptions struct {
	Year  int
	Month time.Month
	Today time.Time
	// TrailingDays widens the transaction read to cover daily-spend history.
	TrailingDays int
	// Timeout applies to each read separately.
	Timeout time.Duration
}

// Inputs is a consistent set of inputs for the scoring and savings engines.
type Inputs struct {
	Accounts     []model.Account
	Transactions []model.Transaction
	Goals        []model.Goal
	BudgetItems  []model.BudgetItem
	Settings     model.UserSettings
	Today        time.Time
	Year         int
	Month        time.Month
}

// Snapshot aggregates the loaded inputs for their month.
func (in Inputs) Snapshot(c Classifier) model.FinancialSnapshot {
	return Aggregate(in.Transactions, in.Accounts, in.Year, in.Month, c)
}

// TransactionWindow returns the [since, until) range LoadSnapshot reads:
// the selected month joined with the trailing window ending today.
func TransactionWindow(opts LoadOptions) (since, until time.Time) {
	days := opts.TrailingDays
	if days <= 0 {
		days = DefaultTrailingDays
	}
	monthStart := time.Date(opts.Year, opts.Month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	trailStart := TrailingWindowStart(opts.Today, days)
	trailEnd := paycycle.Date(opts.Today).AddDate(0, 0, 1)

	since, until = monthStart, monthEnd
	if trailStart.Before(since) {
		since = trailStart
	}
	if trailEnd.After(until) {
		until = trailEnd
	}
	return since, until
}

// LoadSnapshot reads every input concurrently, one goroutine per read, each
// bounded by its own timeout. The first failing read is returned by name.
func LoadSnapshot(ctx context.Context, src Source, opts LoadOptions) (*Inputs, error) {
	if opts.Today.IsZero() {
		return nil, model.Invalid("load options", "Today", "required")
	}
	if opts.Year == 0 || opts.Month == 0 {
		opts.Year, opts.Month = opts.Today.Year(), opts.Today.Month()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	since, until := TransactionWindow(opts)

	in := &Inputs{
		Today: paycycle.Date(opts.Today),
		Year:  opts.Year,
		Month: opts.Month,
	}

	reads := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"accounts", func(ctx context.Context) (err error) {
			in.Accounts, err = src.Accounts(ctx)
			return err
		}},
		{"transactions", func(ctx context.Context) (err error) {
			in.Transactions, err = src.TransactionsBetween(ctx, since, until)
			return err
		}},
		{"goals", func(ctx context.Context) (err error) {
			in.Goals, err = src.Goals(ctx)
			return err
		}},
		{"budget items", func(ctx context.Context) (err error) {
			in.BudgetItems, err = src.BudgetItems(ctx)
			return err
		}},
		{"settings", func(ctx context.Context) (err error) {
			in.Settings, err = src.Settings(ctx)
			return err
		}},
	}

	errs := make([]error, len(reads))
	var wg sync.WaitGroup
	wg.Add(len(reads))
	for i, r := range reads {
		go func() {
			defer wg.Done()
			rctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := r.fn(rctx); err != nil {
				errs[i] = fmt.Errorf("loading %s: %w", r.name, err)
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return in, nil
}
