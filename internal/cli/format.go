// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashpulse/internal/model"
)

// Money formats minor-unit amounts for display.
type Money struct {
	Symbol   string
	Exponent int32
}

// DefaultMoney renders cents with the rand symbol.
var DefaultMoney = Money{Symbol: "R", Exponent: 2}

// Format renders an amount with thousands separators and a fixed number of
// decimals, e.g. -123456 -> "-R1,234.56".
func (m Money) Format(minor int64) string {
	d := decimal.New(minor, -m.Exponent)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(m.Exponent)
	whole, frac, _ := strings.Cut(s, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err == nil {
		whole = FormatNumber(n)
	}
	if frac != "" {
		whole += "." + frac
	}
	return sign + m.Symbol + whole
}

// FormatSigned renders an amount with an explicit + for positive values.
func (m Money) FormatSigned(minor int64) string {
	if minor > 0 {
		return "+" + m.Format(minor)
	}
	return m.Format(minor)
}

// FormatAmount formats minor units with DefaultMoney.
func FormatAmount(minor int64) string {
	return DefaultMoney.Format(minor)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatScore formats a 0-100 score with one decimal.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// FormatRatio formats a risk ratio, showing the cap as "max".
func FormatRatio(r float64, maxRatio float64) string {
	if r >= maxRatio {
		return "max"
	}
	return strconv.FormatFloat(r, 'f', 2, 64)
}

// FormatDays formats a day count, e.g. 1 -> "1 day", 15 -> "15 days".
func FormatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// FormatDate formats a civil date, or "-" when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatExtension describes a timeline extension in pay cycles.
func FormatExtension(cycles int) string {
	switch {
	case cycles == model.UnboundedExtension:
		return "never (re-plan)"
	case cycles == 0:
		return "none"
	case cycles == 1:
		return "+1 cycle"
	default:
		return fmt.Sprintf("+%d cycles", cycles)
	}
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
