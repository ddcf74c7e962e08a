// Package paycycle computes paydays and pay-period counts from a payday of
// month and an income cadence.
//
// Short months clamp rather than overflow: a payday of 31 falls on the last
// day of February, and monthly steps re-anchor on the requested day so a
// 31st payday returns to the 31st in months that have one.
package paycycle

import (
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
)

// Date truncates t to its civil date at 00:00 UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampPayday forces a payday of month into [1, 31].
func ClampPayday(payday int) int {
	if payday < 1 {
		return 1
	}
	if payday > 31 {
		return 31
	}
	return payday
}

// paydayIn returns the payday within the given month, clamped to month end.
func paydayIn(year int, month time.Month, payday int) time.Time {
	// Normalise month overflow first so DaysInMonth sees a real month.
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	year, month = first.Year(), first.Month()

	day := payday
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NextPayday returns the next payday on or after today.
func NextPayday(today time.Time, paydayOfMonth int) time.Time {
	today = Date(today)
	payday := ClampPayday(paydayOfMonth)

	candidate := paydayIn(today.Year(), today.Month(), payday)
	if !candidate.Before(today) {
		return candidate
	}
	return paydayIn(today.Year(), today.Month()+1, payday)
}

// NthPayday returns the nth future payday, n >= 1, where the first is NextPayday.
// Values of n below 1 are treated as 1.
func NthPayday(today time.Time, paydayOfMonth int, cadence model.Cadence, n int) time.Time {
	if n < 1 {
		n = 1
	}
	first := NextPayday(today, paydayOfMonth)
	steps := n - 1

	switch cadence {
	case model.CadenceWeekly:
		return first.AddDate(0, 0, 7*steps)
	case model.CadenceBiweekly:
		return first.AddDate(0, 0, 14*steps)
	default:
		return paydayIn(first.Year(), first.Month()+time.Month(steps), ClampPayday(paydayOfMonth))
	}
}

// PayPeriodsUntil counts paydays from NextPayday(today) through target,
// inclusive. It is 0 when target precedes the first payday.
func PayPeriodsUntil(today time.Time, paydayOfMonth int, cadence model.Cadence, target time.Time) int {
	first := NextPayday(today, paydayOfMonth)
	target = Date(target)
	if target.Before(first) {
		return 0
	}

	switch cadence {
	case model.CadenceWeekly:
		return daysBetween(first, target)/7 + 1
	case model.CadenceBiweekly:
		return daysBetween(first, target)/14 + 1
	}

	// Monthly: every month from first through target holds exactly one payday;
	// the target's own month only counts once its payday has been reached.
	months := (target.Year()-first.Year())*12 + int(target.Month()-first.Month())
	count := months
	if !paydayIn(target.Year(), target.Month(), ClampPayday(paydayOfMonth)).After(target) {
		count++
	}
	return count
}

// DaysUntilPayday returns whole days from today to the next payday, at least 1.
func DaysUntilPayday(today time.Time, paydayOfMonth int) int {
	days := daysBetween(Date(today), NextPayday(today, paydayOfMonth))
	if days < 1 {
		return 1
	}
	return days
}

// CycleLengthDays approximates how many days one pay cycle spans.
func CycleLengthDays(today time.Time, paydayOfMonth int, cadence model.Cadence) int {
	switch cadence {
	case model.CadenceWeekly:
		return 7
	case model.CadenceBiweekly:
		return 14
	}
	next := NextPayday(today, paydayOfMonth)
	return daysBetween(next, NthPayday(today, paydayOfMonth, cadence, 2))
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
