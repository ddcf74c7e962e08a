package savings

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// scenario has 5,000 available against goals of 2,000 and 1,000 plus a
// 2,500 monthly budget item, a shortfall of 500.
func scenario(t *testing.T, strategy model.Strategy) Input {
	t.Helper()
	s := model.DefaultSettings()
	s.Strategy = strategy
	return Input{
		Goals: []model.Goal{
			{ID: "house", Name: "House", Target: 20000, Saved: 2000, MonthlyAllocation: 2000, Priority: 0, DueDate: mustDate(t, "2026-11-25")},
			{ID: "trip", Name: "Trip", Target: 5000, MonthlyAllocation: 1000, Priority: 1},
		},
		BudgetItems: []model.BudgetItem{
			{ID: "rent", Name: "Rent", Frequency: model.FrequencyMonthly, Amount: 2500},
		},
		Snapshot: model.FinancialSnapshot{AvailableBalance: 5000},
		Settings: s,
		Today:    mustDate(t, "2026-03-10"),
	}
}

func byID(adjs []model.Adjustment) map[string]model.Adjustment {
	m := make(map[string]model.Adjustment, len(adjs))
	for _, a := range adjs {
		m[a.GoalID] = a
	}
	return m
}

func TestEvaluate_ShortfallTotals(t *testing.T) {
	st, err := Evaluate(scenario(t, model.StrategyEvenDistribution))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !st.HasShortfall {
		t.Fatal("HasShortfall = false, want true")
	}
	if st.ExpectedBalance != 5500 || st.AvailableBalance != 5000 || st.Shortfall != 500 {
		t.Errorf("expected=%d available=%d shortfall=%d, want 5500/5000/500",
			st.ExpectedBalance, st.AvailableBalance, st.Shortfall)
	}
	if st.Absorbed != 500 || st.Unabsorbed != 0 {
		t.Errorf("absorbed=%d unabsorbed=%d, want 500/0", st.Absorbed, st.Unabsorbed)
	}
	if st.Strategy != model.StrategyEvenDistribution {
		t.Errorf("Strategy = %q", st.Strategy)
	}
}

func TestEvaluate_EvenDistribution(t *testing.T) {
	st, err := Evaluate(scenario(t, model.StrategyEvenDistribution))
	if err != nil {
		t.Fatal(err)
	}
	adj := byID(st.Adjustments)

	house := adj["house"]
	if house.Reduction != 250 || house.NewAllocation != 1750 {
		t.Errorf("house = %+v, want reduction 250", house)
	}
	// 18,000 left: 9 cycles at 2,000, 11 at 1,750.
	if house.TimelineExtensionMonths != 2 {
		t.Errorf("house extension = %d, want 2", house.TimelineExtensionMonths)
	}
	if want := mustDate(t, "2027-01-25"); !house.ProposedDueDate.Equal(want) {
		t.Errorf("house ProposedDueDate = %v, want %v", house.ProposedDueDate, want)
	}

	trip := adj["trip"]
	if trip.Reduction != 250 || trip.NewAllocation != 750 {
		t.Errorf("trip = %+v, want reduction 250", trip)
	}
	// 5 cycles at 1,000, 7 at 750; no due date so the reach date is proposed.
	if trip.TimelineExtensionMonths != 2 {
		t.Errorf("trip extension = %d, want 2", trip.TimelineExtensionMonths)
	}
	if want := mustDate(t, "2026-09-25"); !trip.ProposedDueDate.Equal(want) {
		t.Errorf("trip ProposedDueDate = %v, want %v", trip.ProposedDueDate, want)
	}
}

func TestEvaluate_InversePriority(t *testing.T) {
	st, err := Evaluate(scenario(t, model.StrategyInversePriority))
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Adjustments) != 1 {
		t.Fatalf("len(Adjustments) = %d, want 1 (house untouched)", len(st.Adjustments))
	}
	trip := st.Adjustments[0]
	if trip.GoalID != "trip" || trip.CurrentAllocation != 1000 || trip.NewAllocation != 500 {
		t.Errorf("trip = %+v, want 1000 -> 500", trip)
	}
	if trip.TimelineExtensionMonths != 5 {
		t.Errorf("extension = %d, want 5", trip.TimelineExtensionMonths)
	}
}

func TestEvaluate_Proportional(t *testing.T) {
	st, err := Evaluate(scenario(t, model.StrategyProportional))
	if err != nil {
		t.Fatal(err)
	}
	adj := byID(st.Adjustments)
	// 500 split 2:1 is 333.33/166.67; the larger remainder gets the extra unit.
	if adj["house"].Reduction != 333 || adj["trip"].Reduction != 167 {
		t.Errorf("reductions = %d/%d, want 333/167", adj["house"].Reduction, adj["trip"].Reduction)
	}
}

func TestEvaluate_EvenClampsAndRedistributes(t *testing.T) {
	in := scenario(t, model.StrategyEvenDistribution)
	in.BudgetItems = nil
	in.Goals = []model.Goal{
		{ID: "a", Target: 10000, MonthlyAllocation: 100, Priority: 0},
		{ID: "b", Target: 10000, MonthlyAllocation: 1000, Priority: 1},
		{ID: "c", Target: 10000, MonthlyAllocation: 1000, Priority: 2},
	}
	in.Snapshot.AvailableBalance = 1200

	st, err := Evaluate(in)
	if err != nil {
		t.Fatal(err)
	}
	if st.Shortfall != 900 {
		t.Fatalf("Shortfall = %d, want 900", st.Shortfall)
	}
	adj := byID(st.Adjustments)
	if adj["a"].Reduction != 100 || adj["b"].Reduction != 400 || adj["c"].Reduction != 400 {
		t.Errorf("reductions = %d/%d/%d, want 100/400/400", adj["a"].Reduction, adj["b"].Reduction, adj["c"].Reduction)
	}
	a := adj["a"]
	if !a.NeedsReplan || a.TimelineExtensionMonths != model.UnboundedExtension {
		t.Errorf("zeroed goal = %+v, want NeedsReplan with unbounded extension", a)
	}
	if !a.ProposedDueDate.IsZero() {
		t.Errorf("zeroed goal ProposedDueDate = %v, want current (zero) due date", a.ProposedDueDate)
	}
}

func TestEvaluate_EvenLeftoverUnitsGoToLeastImportant(t *testing.T) {
	in := scenario(t, model.StrategyEvenDistribution)
	in.BudgetItems = nil
	in.Goals = []model.Goal{
		{ID: "a", Target: 10000, MonthlyAllocation: 1000, Priority: 0},
		{ID: "b", Target: 10000, MonthlyAllocation: 1000, Priority: 1},
		{ID: "c", Target: 10000, MonthlyAllocation: 1000, Priority: 1},
	}
	in.Snapshot.AvailableBalance = 2899

	st, err := Evaluate(in)
	if err != nil {
		t.Fatal(err)
	}
	adj := byID(st.Adjustments)
	// 101 over 3 goals: 33 each plus 2 spare units for c then b.
	if adj["a"].Reduction != 33 || adj["b"].Reduction != 34 || adj["c"].Reduction != 34 {
		t.Errorf("reductions = %d/%d/%d, want 33/34/34", adj["a"].Reduction, adj["b"].Reduction, adj["c"].Reduction)
	}
}

func TestEvaluate_UnabsorbableShortfall(t *testing.T) {
	in := scenario(t, model.StrategyInversePriority)
	in.Goals = []model.Goal{{ID: "only", Target: 1000, MonthlyAllocation: 300}}
	in.BudgetItems[0].Amount = 5000
	in.Snapshot.AvailableBalance = 1000

	st, err := Evaluate(in)
	if err != nil {
		t.Fatal(err)
	}
	if st.Shortfall != 4300 || st.Absorbed != 300 || st.Unabsorbed != 4000 {
		t.Errorf("shortfall=%d absorbed=%d unabsorbed=%d, want 4300/300/4000", st.Shortfall, st.Absorbed, st.Unabsorbed)
	}
	if len(st.Adjustments) != 1 || st.Adjustments[0].NewAllocation != 0 {
		t.Errorf("Adjustments = %+v, want the only goal zeroed", st.Adjustments)
	}
}

func TestEvaluate_NoShortfall(t *testing.T) {
	in := scenario(t, model.StrategyProportional)
	in.Snapshot.AvailableBalance = 5500

	st, err := Evaluate(in)
	if err != nil {
		t.Fatal(err)
	}
	if st.HasShortfall || st.Shortfall != 0 {
		t.Errorf("status = %+v, want no shortfall", st)
	}
	if st.Adjustments == nil || len(st.Adjustments) != 0 {
		t.Errorf("Adjustments = %#v, want empty slice", st.Adjustments)
	}
	if st.ExpectedBalance > st.AvailableBalance {
		t.Errorf("expected %d > available %d", st.ExpectedBalance, st.AvailableBalance)
	}
	data, _ := json.Marshal(st)
	if !bytes.Contains(data, []byte(`"adjustments":[]`)) {
		t.Errorf("JSON %s should encode adjustments as []", data)
	}
}

func TestEvaluate_OverdueAndFundedGoals(t *testing.T) {
	in := scenario(t, model.StrategyInversePriority)
	in.Goals = []model.Goal{
		{ID: "late", Target: 3000, Saved: 1000, MonthlyAllocation: 1000, Priority: 0, DueDate: mustDate(t, "2026-01-31")},
		{ID: "done", Target: 500, Saved: 500, MonthlyAllocation: 2000, Priority: 1, DueDate: mustDate(t, "2026-06-01")},
	}
	in.BudgetItems = nil
	in.Snapshot.AvailableBalance = 500

	st, err := Evaluate(in)
	if err != nil {
		t.Fatal(err)
	}
	adj := byID(st.Adjustments)

	done := adj["done"]
	if done.NewAllocation != 0 || done.NeedsReplan || done.TimelineExtensionMonths != 0 {
		t.Errorf("funded goal = %+v, want zeroed without re-plan", done)
	}

	late := adj["late"]
	if !late.Overdue {
		t.Error("late goal should be flagged overdue")
	}
	if late.NewAllocation != 500 || late.TimelineExtensionMonths != 2 {
		t.Errorf("late = %+v, want 500 with extension 2", late)
	}
	// 2,000 left at 500 is 4 cycles: the 4th payday from Mar 10 is Jun 25.
	if want := mustDate(t, "2026-06-25"); !late.ProposedDueDate.Equal(want) {
		t.Errorf("ProposedDueDate = %v, want %v", late.ProposedDueDate, want)
	}
}

func TestEvaluate_ExactAbsorptionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 300; iter++ {
		n := 1 + rng.Intn(6)
		goals := make([]model.Goal, n)
		var total int64
		for i := range goals {
			alloc := int64(rng.Intn(5000))
			goals[i] = model.Goal{
				ID:                string(rune('a' + i)),
				Target:            1 + int64(rng.Intn(100000)),
				Saved:             int64(rng.Intn(50000)),
				MonthlyAllocation: alloc,
				Priority:          rng.Intn(3),
			}
			total += alloc
		}
		available := int64(rng.Intn(int(total) + 1000))

		for _, strategy := range model.Strategies {
			s := model.DefaultSettings()
			s.Strategy = strategy
			in := Input{Goals: goals, Snapshot: model.FinancialSnapshot{AvailableBalance: available}, Settings: s, Today: mustDate(t, "2026-03-10")}

			st, err := Evaluate(in)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			var sum int64
			for _, a := range st.Adjustments {
				if a.NewAllocation < 0 || a.Reduction <= 0 {
					t.Fatalf("%s: bad adjustment %+v", strategy, a)
				}
				sum += a.Reduction
			}
			if sum != st.Absorbed {
				t.Fatalf("%s: sum(reductions) = %d, want absorbed %d", strategy, sum, st.Absorbed)
			}
			if st.Shortfall <= total && sum != st.Shortfall {
				t.Fatalf("%s: sum(reductions) = %d, want shortfall %d", strategy, sum, st.Shortfall)
			}
			if !st.HasShortfall && (len(st.Adjustments) != 0 || st.ExpectedBalance > st.AvailableBalance) {
				t.Fatalf("%s: no-shortfall status = %+v", strategy, st)
			}

			again, _ := Evaluate(in)
			a, _ := json.Marshal(st)
			b, _ := json.Marshal(again)
			if !bytes.Equal(a, b) {
				t.Fatalf("%s: Evaluate not idempotent", strategy)
			}
		}
	}
}

func TestEvaluate_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero today", func(in *Input) { in.Today = time.Time{} }},
		{"unknown strategy", func(in *Input) { in.Settings.Strategy = "random" }},
		{"zero target", func(in *Input) { in.Goals[0].Target = 0 }},
		{"negative allocation", func(in *Input) { in.Goals[1].MonthlyAllocation = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenario(t, model.StrategyProportional)
			tt.mutate(&in)
			if _, err := Evaluate(in); !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("Evaluate() = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := distribute("random", nil, nil, 0); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("distribute(unknown) = %v, want ErrInvalidInput", err)
	}
}

func TestCyclesToTarget(t *testing.T) {
	g := model.Goal{Target: 1000, Saved: 250}
	if got := CyclesToTarget(g, 100); got != 8 {
		t.Errorf("CyclesToTarget = %d, want 8", got)
	}
	if got := CyclesToTarget(g, 0); got != model.UnboundedExtension {
		t.Errorf("CyclesToTarget(0) = %d, want %d", got, model.UnboundedExtension)
	}
	if got := CyclesToTarget(model.Goal{Target: 1 << 50}, 1); got != model.UnboundedExtension {
		t.Errorf("CyclesToTarget(huge) = %d, want %d", got, model.UnboundedExtension)
	}
	g.Saved = 1000
	if got := CyclesToTarget(g, 0); got != 0 {
		t.Errorf("funded CyclesToTarget = %d, want 0", got)
	}
}

func TestEvaluate_TinyAllocationIsNotProjected(t *testing.T) {
	in := scenario(t, model.StrategyInversePriority)
	in.BudgetItems = nil
	due := mustDate(t, "2030-01-25")
	in.Goals = []model.Goal{
		{ID: "big", Target: 1 << 50, MonthlyAllocation: 1_000_000, Priority: 0, DueDate: due},
	}
	in.Snapshot.AvailableBalance = 1

	st, err := Evaluate(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Adjustments) != 1 {
		t.Fatalf("Adjustments = %+v, want one", st.Adjustments)
	}
	a := st.Adjustments[0]
	if a.NewAllocation != 1 {
		t.Fatalf("NewAllocation = %d, want 1", a.NewAllocation)
	}
	if !a.NeedsReplan || a.TimelineExtensionMonths != model.UnboundedExtension {
		t.Errorf("adjustment = %+v, want NeedsReplan with unbounded extension", a)
	}
	if !a.ProposedDueDate.Equal(due) {
		t.Errorf("ProposedDueDate = %v, want unchanged %v", a.ProposedDueDate, due)
	}
	if a.ProposedDueDate.Year() > 9999 {
		t.Errorf("ProposedDueDate year %d out of range", a.ProposedDueDate.Year())
	}

	edge := model.Goal{ID: "edge", Target: MaxProjectedCycles * 10, MonthlyAllocation: 20}
	if got := adjustment(edge, 10, in.Today, in.Settings); got.NeedsReplan || got.TimelineExtensionMonths != MaxProjectedCycles/2 {
		t.Errorf("adjustment at the cap = %+v, want a projected date", got)
	}
}
