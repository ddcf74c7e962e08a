package paycycle

import (
	"testing"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestNextPayday(t *testing.T) {
	tests := []struct {
		today  string
		payday int
		want   string
	}{
		{"2026-03-10", 25, "2026-03-25"},
		{"2026-03-25", 25, "2026-03-25"},
		{"2026-03-26", 25, "2026-04-25"},
		{"2026-12-28", 25, "2027-01-25"},
		{"2026-02-01", 31, "2026-02-28"},
		{"2028-02-01", 31, "2028-02-29"},
		{"2026-04-30", 31, "2026-04-30"},
		{"2026-01-31", 30, "2026-02-28"},
		{"2026-03-02", 0, "2026-04-01"},
		{"2026-03-02", 45, "2026-03-31"},
	}

	for _, tt := range tests {
		got := NextPayday(mustDate(t, tt.today), tt.payday)
		if !got.Equal(mustDate(t, tt.want)) {
			t.Errorf("NextPayday(%s, %d) = %s, want %s", tt.today, tt.payday, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestNextPayday_IgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2026, 5, 25, 23, 59, 0, 0, time.UTC)
	got := NextPayday(today, 25)
	if !got.Equal(mustDate(t, "2026-05-25")) {
		t.Fatalf("NextPayday late on payday = %s, want same day", got.Format("2006-01-02"))
	}
}

func TestNextPayday_WithinOneMonth(t *testing.T) {
	start := mustDate(t, "2026-01-01")
	for day := 0; day < 3*366; day++ {
		today := start.AddDate(0, 0, day)
		for payday := 1; payday <= 31; payday++ {
			next := NextPayday(today, payday)
			if next.Before(today) {
				t.Fatalf("NextPayday(%s, %d) = %s is in the past", today.Format("2006-01-02"), payday, next.Format("2006-01-02"))
			}
			if ahead := next.Sub(today).Hours() / 24; ahead > 31 {
				t.Fatalf("NextPayday(%s, %d) is %.0f days ahead, want <= 31", today.Format("2006-01-02"), payday, ahead)
			}
		}
	}
}

func TestNthPayday(t *testing.T) {
	today := mustDate(t, "2026-01-15")
	tests := []struct {
		name    string
		payday  int
		cadence model.Cadence
		n       int
		want    string
	}{
		{"first monthly", 31, model.CadenceMonthly, 1, "2026-01-31"},
		{"monthly clamps february", 31, model.CadenceMonthly, 2, "2026-02-28"},
		{"monthly re-anchors", 31, model.CadenceMonthly, 3, "2026-03-31"},
		{"monthly crosses year", 20, model.CadenceMonthly, 13, "2027-01-20"},
		{"biweekly", 20, model.CadenceBiweekly, 3, "2026-02-17"},
		{"weekly", 20, model.CadenceWeekly, 2, "2026-01-27"},
		{"n below one", 20, model.CadenceWeekly, 0, "2026-01-20"},
		{"unknown cadence is monthly", 20, model.Cadence("yearly"), 2, "2026-02-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NthPayday(today, tt.payday, tt.cadence, tt.n)
			if !got.Equal(mustDate(t, tt.want)) {
				t.Errorf("NthPayday = %s, want %s", got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestPayPeriodsUntil(t *testing.T) {
	today := mustDate(t, "2026-01-15")
	tests := []struct {
		name    string
		cadence model.Cadence
		target  string
		want    int
	}{
		{"before first payday", model.CadenceMonthly, "2026-01-19", 0},
		{"on first payday", model.CadenceMonthly, "2026-01-20", 1},
		{"before second monthly", model.CadenceMonthly, "2026-02-19", 1},
		{"on second monthly", model.CadenceMonthly, "2026-02-20", 2},
		{"one year out", model.CadenceMonthly, "2027-01-20", 13},
		{"weekly", model.CadenceWeekly, "2026-02-03", 3},
		{"biweekly", model.CadenceBiweekly, "2026-02-16", 2},
		{"biweekly boundary", model.CadenceBiweekly, "2026-02-17", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PayPeriodsUntil(today, 20, tt.cadence, mustDate(t, tt.target))
			if got != tt.want {
				t.Errorf("PayPeriodsUntil(%s) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}

func TestPayPeriodsUntil_MatchesNthPayday(t *testing.T) {
	today := mustDate(t, "2026-01-31")
	for _, cadence := range []model.Cadence{model.CadenceMonthly, model.CadenceBiweekly, model.CadenceWeekly} {
		for n := 1; n <= 24; n++ {
			p := NthPayday(today, 31, cadence, n)
			if got := PayPeriodsUntil(today, 31, cadence, p); got != n {
				t.Fatalf("%s: PayPeriodsUntil(NthPayday(%d)) = %d, want %d", cadence, n, got, n)
			}
		}
	}
}

func TestPayPeriodsUntil_Monotonic(t *testing.T) {
	today := mustDate(t, "2026-03-09")
	for _, cadence := range []model.Cadence{model.CadenceMonthly, model.CadenceBiweekly, model.CadenceWeekly} {
		prev := 0
		for day := 0; day < 500; day++ {
			target := today.AddDate(0, 0, day)
			got := PayPeriodsUntil(today, 31, cadence, target)
			if got < prev {
				t.Fatalf("%s: PayPeriodsUntil dropped from %d to %d at %s", cadence, prev, got, target.Format("2006-01-02"))
			}
			prev = got
		}
	}
}

func TestDaysUntilPayday(t *testing.T) {
	if got := DaysUntilPayday(mustDate(t, "2026-03-25"), 25); got != 1 {
		t.Errorf("DaysUntilPayday on payday = %d, want 1 (clamped)", got)
	}
	if got := DaysUntilPayday(mustDate(t, "2026-03-20"), 25); got != 5 {
		t.Errorf("DaysUntilPayday = %d, want 5", got)
	}
	if got := DaysUntilPayday(mustDate(t, "2026-03-26"), 25); got != 30 {
		t.Errorf("DaysUntilPayday after payday = %d, want 30", got)
	}
}

func TestCycleLengthDays(t *testing.T) {
	today := mustDate(t, "2026-01-15")
	if got := CycleLengthDays(today, 20, model.CadenceMonthly); got != 31 {
		t.Errorf("monthly cycle = %d, want 31", got)
	}
	if got := CycleLengthDays(today, 20, model.CadenceBiweekly); got != 14 {
		t.Errorf("biweekly cycle = %d, want 14", got)
	}
}
