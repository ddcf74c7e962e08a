package savings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/theirongolddev/cashpulse/internal/model"
)

var errStale = errors.New("stale write")

type fakeWriter struct {
	fail    map[string]error
	block   bool
	written map[string]int64
	order   []string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{fail: map[string]error{}, written: map[string]int64{}}
}

func (w *fakeWriter) UpdateGoalAllocation(ctx context.Context, id string, allocation int64, due time.Time) error {
	w.order = append(w.order, id)
	if w.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := w.fail[id]; err != nil {
		return err
	}
	w.written[id] = allocation
	return nil
}

func threeAdjustments() model.SavingsStatus {
	return model.SavingsStatus{
		HasShortfall: true,
		Adjustments: []model.Adjustment{
			{GoalID: "a", NewAllocation: 100},
			{GoalID: "b", NewAllocation: 0, NeedsReplan: true, TimelineExtensionMonths: model.UnboundedExtension},
			{GoalID: "c", NewAllocation: 300},
		},
	}
}

func TestApply_AllSucceed(t *testing.T) {
	w := newFakeWriter()
	logger, hook := logtest.NewNullLogger()

	res, err := Apply(context.Background(), w, threeAdjustments(), ApplyOptions{Logger: logger})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 3 || len(res.Failed) != 0 {
		t.Errorf("result = %+v, want 3 applied", res)
	}
	if w.written["c"] != 300 || w.written["b"] != 0 {
		t.Errorf("written = %v", w.written)
	}
	if got := w.order; len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("write order = %v, want sequential a,b,c", got)
	}
	if n := len(hook.AllEntries()); n != 3 {
		t.Errorf("log entries = %d, want 3", n)
	}
}

func TestApply_PartialFailureKeepsOthers(t *testing.T) {
	w := newFakeWriter()
	w.fail["b"] = errStale
	logger, hook := logtest.NewNullLogger()

	res, err := Apply(context.Background(), w, threeAdjustments(), ApplyOptions{Logger: logger})

	var pwe *PartialWriteError
	if !errors.As(err, &pwe) {
		t.Fatalf("err = %v, want *PartialWriteError", err)
	}
	if len(pwe.Failures) != 1 || pwe.Failures[0].GoalID != "b" || pwe.Total != 3 {
		t.Errorf("failures = %+v total=%d", pwe.Failures, pwe.Total)
	}
	if !errors.Is(err, errStale) {
		t.Error("errors.Is should reach the per-goal error")
	}
	if len(res.Applied) != 2 || w.written["a"] != 100 || w.written["c"] != 300 {
		t.Errorf("goals around the failure should be written: %+v %v", res, w.written)
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["goal_id"] == "b" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warn entry for goal b")
	}
}

func TestApply_SkipReplan(t *testing.T) {
	w := newFakeWriter()
	res, err := Apply(context.Background(), w, threeAdjustments(), ApplyOptions{SkipReplan: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "b" {
		t.Errorf("Skipped = %v, want [b]", res.Skipped)
	}
	if _, ok := w.written["b"]; ok {
		t.Error("goal b should not be written")
	}
}

func TestApply_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newFakeWriter()
	res, err := Apply(ctx, w, threeAdjustments(), ApplyOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(res.Failed) != 3 || len(w.order) != 0 {
		t.Errorf("result = %+v writes=%v, want all failed without writing", res, w.order)
	}
}

func TestApply_PerGoalTimeout(t *testing.T) {
	w := newFakeWriter()
	w.block = true

	res, err := Apply(context.Background(), w, threeAdjustments(), ApplyOptions{PerGoalTimeout: 10 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if len(res.Failed) != 3 || len(w.order) != 3 {
		t.Errorf("each goal should time out on its own: %+v", res)
	}
}

func TestApply_NoAdjustments(t *testing.T) {
	res, err := Apply(context.Background(), newFakeWriter(), model.SavingsStatus{Adjustments: []model.Adjustment{}}, ApplyOptions{})
	if err != nil || len(res.Applied) != 0 {
		t.Errorf("Apply(empty) = %+v, %v", res, err)
	}
}
