package savings

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/cashpulse/internal/model"
)

// GoalWriter persists a goal's new allocation and due date.
type GoalWriter interface {
	UpdateGoalAllocation(ctx context.Context, id string, allocation int64, due time.Time) error
}

// ApplyOptions controls Apply.
type ApplyOptions struct {
	// PerGoalTimeout bounds each write; zero means no per-goal deadline.
	PerGoalTimeout time.Duration
	// SkipReplan leaves goals whose new allocation is zero untouched.
	SkipReplan bool
	Logger     logrus.FieldLogger
}

// GoalFailure is one goal that could not be written.
type GoalFailure struct {
	GoalID string
	Err    error
}

// ApplyResult reports the outcome of every adjustment.
type ApplyResult struct {
	Applied []string
	Skipped []string
	Failed  []GoalFailure
}

// PartialWriteError lists the goals whose writes failed. Goals written
// before or after a failure keep their new values.
type PartialWriteError struct {
	Failures []GoalFailure
	Total    int
}

func (e *PartialWriteError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.GoalID, f.Err))
	}
	return fmt.Sprintf("%d of %d goal updates failed: %s", len(e.Failures), e.Total, strings.Join(parts, "; "))
}

// Unwrap exposes every per-goal error to errors.Is and errors.As.
func (e *PartialWriteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Apply writes each adjustment of status sequentially. A failed write does
// not stop the batch; failures are returned as a *PartialWriteError. When ctx
// is cancelled the remaining goals are reported as failed with ctx's error.
func Apply(ctx context.Context, w GoalWriter, status model.SavingsStatus, opts ApplyOptions) (ApplyResult, error) {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	var res ApplyResult
	for _, adj := range status.Adjustments {
		entry := log.WithFields(logrus.Fields{
			"goal_id":        adj.GoalID,
			"new_allocation": adj.NewAllocation,
		})

		if opts.SkipReplan && adj.NeedsReplan {
			res.Skipped = append(res.Skipped, adj.GoalID)
			entry.Info("skipped goal needing re-plan")
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, GoalFailure{GoalID: adj.GoalID, Err: err})
			continue
		}

		if err := writeOne(ctx, w, adj, opts.PerGoalTimeout); err != nil {
			res.Failed = append(res.Failed, GoalFailure{GoalID: adj.GoalID, Err: err})
			entry.WithError(err).Warn("goal update failed")
			continue
		}
		res.Applied = append(res.Applied, adj.GoalID)
		entry.WithField("due_date", adj.ProposedDueDate.Format("2006-01-02")).Info("goal updated")
	}

	if len(res.Failed) > 0 {
		return res, &PartialWriteError{Failures: res.Failed, Total: len(status.Adjustments)}
	}
	return res, nil
}

func writeOne(ctx context.Context, w GoalWriter, adj model.Adjustment, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return w.UpdateGoalAllocation(ctx, adj.GoalID, adj.NewAllocation, adj.ProposedDueDate)
}
