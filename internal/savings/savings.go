// Package savings detects when committed goal contributions exceed the cash
// on hand and proposes reduced allocations under a chosen strategy.
package savings

import (
	"math/bits"
	"sort"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/paycycle"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
)

// Input is a consistent snapshot of everything Evaluate depends on.
type Input struct {
	// Goals in priority order; Priority breaks ties and input order breaks those.
	Goals       []model.Goal
	BudgetItems []model.BudgetItem
	Snapshot    model.FinancialSnapshot
	Settings    model.UserSettings
	Today       time.Time
}

// Evaluate compares committed outflows with the available balance and, when
// they exceed it, spreads the shortfall across goal allocations using the
// strategy in Settings.
func Evaluate(in Input) (model.SavingsStatus, error) {
	if in.Today.IsZero() {
		return model.SavingsStatus{}, model.Invalid("savings input", "Today", "required")
	}
	if err := model.ValidateSettings(in.Settings); err != nil {
		return model.SavingsStatus{}, err
	}
	if err := model.ValidateGoals(in.Goals); err != nil {
		return model.SavingsStatus{}, err
	}
	if err := model.ValidateBudgetItems(in.BudgetItems); err != nil {
		return model.SavingsStatus{}, err
	}

	var allocations int64
	for _, g := range in.Goals {
		allocations += g.MonthlyAllocation
	}
	expected := allocations + pipeline.CycleObligations(in.BudgetItems, in.Settings.Cadence)
	available := in.Snapshot.AvailableBalance

	status := model.SavingsStatus{
		Strategy:         in.Settings.Strategy,
		ExpectedBalance:  expected,
		AvailableBalance: available,
		Adjustments:      []model.Adjustment{},
	}
	if expected <= available {
		return status, nil
	}

	status.HasShortfall = true
	status.Shortfall = expected - available
	status.Absorbed = min(status.Shortfall, allocations)
	status.Unabsorbed = status.Shortfall - status.Absorbed

	current := make([]int64, len(in.Goals))
	for i, g := range in.Goals {
		current[i] = g.MonthlyAllocation
	}

	reductions, err := distribute(in.Settings.Strategy, in.Goals, current, status.Absorbed)
	if err != nil {
		return model.SavingsStatus{}, err
	}

	today := paycycle.Date(in.Today)
	for i, g := range in.Goals {
		if reductions[i] <= 0 {
			continue
		}
		status.Adjustments = append(status.Adjustments,
			adjustment(g, g.MonthlyAllocation-reductions[i], today, in.Settings))
	}
	return status, nil
}

// distribute returns a reduction per goal summing to amount, which must not
// exceed the sum of current.
func distribute(strategy model.Strategy, goals []model.Goal, current []int64, amount int64) ([]int64, error) {
	switch strategy {
	case model.StrategyEvenDistribution:
		return evenDistribution(goals, current, amount), nil
	case model.StrategyProportional:
		return proportional(goals, current, amount), nil
	case model.StrategyInversePriority:
		return inversePriority(goals, current, amount), nil
	default:
		return nil, model.Invalid("settings", "Strategy", "oneof=inverse_priority proportional even_distribution")
	}
}

// leastImportantFirst returns goal indexes ordered from the goal to cut first:
// highest Priority value, then later input position.
func leastImportantFirst(goals []model.Goal) []int {
	order := make([]int, len(goals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ga, gb := goals[order[a]], goals[order[b]]
		if ga.Priority != gb.Priority {
			return ga.Priority > gb.Priority
		}
		return order[a] > order[b]
	})
	return order
}

// funded filters order down to goals that still have an allocation left.
func funded(order []int, left []int64) []int {
	var pool []int
	for _, i := range order {
		if left[i] > 0 {
			pool = append(pool, i)
		}
	}
	return pool
}

// evenDistribution takes an equal share from every funded goal. Indivisible
// minor units come from the least important goals. A goal that cannot cover
// its share is zeroed and the rest is shared again among the others.
func evenDistribution(goals []model.Goal, current []int64, amount int64) []int64 {
	left := append([]int64(nil), current...)
	remaining := amount
	pool := funded(leastImportantFirst(goals), left)

	for remaining > 0 && len(pool) > 0 {
		n := int64(len(pool))
		base, extra := remaining/n, remaining%n
		for k, i := range pool {
			want := base
			if int64(k) < extra {
				want++
			}
			take := min(want, left[i])
			left[i] -= take
			remaining -= take
		}
		pool = funded(pool, left)
	}
	return reductionsFrom(current, left)
}

// proportional takes from each funded goal in proportion to its allocation,
// using largest-remainder rounding so shares sum exactly to amount. Ties in
// the remainder go to the less important goal.
func proportional(goals []model.Goal, current []int64, amount int64) []int64 {
	left := append([]int64(nil), current...)
	remaining := amount
	pool := funded(leastImportantFirst(goals), left)

	for remaining > 0 && len(pool) > 0 {
		var total int64
		for _, i := range pool {
			total += left[i]
		}
		if remaining >= total {
			for _, i := range pool {
				left[i] = 0
			}
			remaining -= total
			break
		}

		type part struct {
			idx  int
			rank int
			take int64
			rem  uint64
		}
		parts := make([]part, len(pool))
		var assigned int64
		for k, i := range pool {
			hi, lo := bits.Mul64(uint64(remaining), uint64(left[i]))
			q, r := bits.Div64(hi, lo, uint64(total))
			parts[k] = part{idx: i, rank: k, take: int64(q), rem: r}
			assigned += int64(q)
		}
		sort.SliceStable(parts, func(a, b int) bool {
			if parts[a].rem != parts[b].rem {
				return parts[a].rem > parts[b].rem
			}
			return parts[a].rank < parts[b].rank
		})
		for k := int64(0); k < remaining-assigned; k++ {
			parts[k].take++
		}
		for _, p := range parts {
			take := min(p.take, left[p.idx])
			left[p.idx] -= take
			remaining -= take
		}
		pool = funded(pool, left)
	}
	return reductionsFrom(current, left)
}

// inversePriority drains the least important goal first, then the next.
func inversePriority(goals []model.Goal, current []int64, amount int64) []int64 {
	left := append([]int64(nil), current...)
	remaining := amount
	for _, i := range leastImportantFirst(goals) {
		if remaining <= 0 {
			break
		}
		take := min(remaining, left[i])
		left[i] -= take
		remaining -= take
	}
	return reductionsFrom(current, left)
}

func reductionsFrom(current, left []int64) []int64 {
	out := make([]int64, len(current))
	for i := range current {
		out[i] = current[i] - left[i]
	}
	return out
}

// adjustment builds the proposal for one goal, including its timeline impact.
func adjustment(g model.Goal, newAlloc int64, today time.Time, s model.UserSettings) model.Adjustment {
	adj := model.Adjustment{
		GoalID:            g.ID,
		GoalName:          g.Name,
		CurrentAllocation: g.MonthlyAllocation,
		NewAllocation:     newAlloc,
		Reduction:         g.MonthlyAllocation - newAlloc,
		Overdue:           !g.DueDate.IsZero() && g.DueDate.Before(today),
		ProposedDueDate:   g.DueDate,
	}

	remaining := g.Remaining()
	if remaining == 0 {
		return adj
	}
	cyclesNew := int64(0)
	if newAlloc > 0 {
		cyclesNew = ceilDiv(remaining, newAlloc)
	}
	if newAlloc <= 0 || cyclesNew > MaxProjectedCycles {
		adj.NeedsReplan = true
		adj.TimelineExtensionMonths = model.UnboundedExtension
		return adj
	}

	adj.TimelineExtensionMonths = int(cyclesNew - ceilDiv(remaining, g.MonthlyAllocation))

	reached := paycycle.NthPayday(today, s.PaydayOfMonth, s.Cadence, int(cyclesNew))
	if g.DueDate.IsZero() || reached.After(g.DueDate) {
		adj.ProposedDueDate = reached
	}
	return adj
}

// MaxProjectedCycles bounds due-date projection. A goal needing more cycles
// than this is treated like one with no allocation.
const MaxProjectedCycles = 1200

// CyclesToTarget is how many pay cycles a goal needs at allocation per cycle.
// It returns model.UnboundedExtension when allocation is zero or the goal
// needs more than MaxProjectedCycles.
func CyclesToTarget(g model.Goal, allocation int64) int {
	remaining := g.Remaining()
	if remaining == 0 {
		return 0
	}
	if allocation <= 0 {
		return model.UnboundedExtension
	}
	n := ceilDiv(remaining, allocation)
	if n > MaxProjectedCycles {
		return model.UnboundedExtension
	}
	return int(n)
}

func ceilDiv(n, d int64) int64 {
	return (n + d - 1) / d
}
