package pipeline

import (
	"testing"

	"github.com/theirongolddev/cashpulse/internal/model"
)

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name string
		item model.BudgetItem
		want int64
	}{
		{"monthly", model.BudgetItem{Frequency: model.FrequencyMonthly, Amount: 250000}, 250000},
		{"weekly", model.BudgetItem{Frequency: model.FrequencyWeekly, Amount: 1200}, 5200},
		{"biweekly", model.BudgetItem{Frequency: model.FrequencyBiweekly, Amount: 1200}, 2600},
		{"daily 5 days", model.BudgetItem{Frequency: model.FrequencyDaily, Amount: 100, DaysPerWeek: 5}, 2167},
		{"daily unset means 7", model.BudgetItem{Frequency: model.FrequencyDaily, Amount: 100}, 3033},
		{"once off", model.BudgetItem{Frequency: model.FrequencyOnceOff, Amount: 9999}, 9999},
		{"unknown as monthly", model.BudgetItem{Frequency: "yearly", Amount: 10}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthlyEquivalent(tt.item); got != tt.want {
				t.Errorf("MonthlyEquivalent = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCycleObligations(t *testing.T) {
	items := []model.BudgetItem{
		{ID: "rent", Frequency: model.FrequencyMonthly, Amount: 260000},
		{ID: "gym", Frequency: model.FrequencyWeekly, Amount: 1000},
		{ID: "tv", Frequency: model.FrequencyOnceOff, Amount: 5000},
	}

	tests := []struct {
		cadence model.Cadence
		want    int64
	}{
		// annual = 260000*12 + 1000*52 = 3172000
		{model.CadenceMonthly, 5000 + 264333},
		{model.CadenceBiweekly, 5000 + 122000},
		{model.CadenceWeekly, 5000 + 61000},
	}
	for _, tt := range tests {
		if got := CycleObligations(items, tt.cadence); got != tt.want {
			t.Errorf("CycleObligations(%s) = %d, want %d", tt.cadence, got, tt.want)
		}
	}

	if got := CycleObligations(nil, model.CadenceMonthly); got != 0 {
		t.Errorf("CycleObligations(nil) = %d, want 0", got)
	}
}

func TestPlannedByGroup(t *testing.T) {
	items := []model.BudgetItem{
		{Frequency: model.FrequencyMonthly, Amount: 1000, Group: model.GroupNeeds},
		{Frequency: model.FrequencyMonthly, Amount: 500, Group: model.GroupNeeds},
		{Frequency: model.FrequencyWeekly, Amount: 300, Group: model.GroupWants},
		{Frequency: model.FrequencyMonthly, Amount: 200},
	}
	got := PlannedByGroup(items)
	if got[model.GroupNeeds] != 1500 || got[model.GroupWants] != 1300 || got[model.GroupNone] != 200 {
		t.Errorf("PlannedByGroup = %v", got)
	}
	if total := MonthlyBudgetTotal(items); total != 3000 {
		t.Errorf("MonthlyBudgetTotal = %d, want 3000", total)
	}
}
