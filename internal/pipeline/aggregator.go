// Package pipeline reduces accounts, transactions and budget items into the
// monthly figures the scoring and savings engines consume.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/paycycle"
)

// Aggregate computes the financial snapshot for one calendar month.
// A nil classifier uses DefaultClassifier.
func Aggregate(transactions []model.Transaction, accounts []model.Account, year int, month time.Month, classifier Classifier) model.FinancialSnapshot {
	if classifier == nil {
		classifier = DefaultClassifier()
	}

	snap := model.FinancialSnapshot{
		Year:  year,
		Month: int(month),
	}

	for _, tx := range FilterByMonth(Dedupe(transactions), year, month) {
		snap.TransactionCount++
		snap.NetBalance += tx.Amount

		if tx.Amount < 0 {
			snap.MonthlyExpenses += -tx.Amount
		} else if classifier.IsIncome(tx) {
			snap.MonthlyIncome += tx.Amount
		}
		if classifier.IsSavingsTransfer(tx) {
			snap.MonthlySavingsTransfers += tx.Amount
		}
	}

	snap.AvailableBalance, snap.AccountBalances = balances(accounts)
	return snap
}

func balances(accounts []model.Account) (int64, []model.AccountBalance) {
	var available int64
	rows := make([]model.AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActive() {
			available += a.AvailableBalance
		}
		rows = append(rows, model.AccountBalance{
			AccountID: a.ID,
			Name:      a.Name,
			Balance:   a.AvailableBalance,
			Status:    a.Status,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].AccountID < rows[j].AccountID
	})
	return available, rows
}

// Dedupe collapses transactions sharing an ID into one. When the copies
// differ, the earliest-dated one wins, then the smallest amount, account,
// description and category, so the result does not depend on input order.
func Dedupe(transactions []model.Transaction) []model.Transaction {
	at := make(map[string]int, len(transactions))
	result := make([]model.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.ID == "" {
			result = append(result, tx)
			continue
		}
		if i, ok := at[tx.ID]; ok {
			if txLess(tx, result[i]) {
				result[i] = tx
			}
			continue
		}
		at[tx.ID] = len(result)
		result = append(result, tx)
	}
	return result
}

func txLess(a, b model.Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Amount != b.Amount {
		return a.Amount < b.Amount
	}
	if a.AccountID != b.AccountID {
		return a.AccountID < b.AccountID
	}
	if a.Description != b.Description {
		return a.Description < b.Description
	}
	return a.Category < b.Category
}

// FilterByMonth returns transactions dated within the given calendar month.
func FilterByMonth(transactions []model.Transaction, year int, month time.Month) []model.Transaction {
	var result []model.Transaction
	for _, tx := range transactions {
		if tx.Date.Year() == year && tx.Date.Month() == month {
			result = append(result, tx)
		}
	}
	return result
}

// FilterByTime returns transactions dated within [since, until).
func FilterByTime(transactions []model.Transaction, since, until time.Time) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return transactions
	}

	var result []model.Transaction
	for _, tx := range transactions {
		if tx.Date.IsZero() {
			continue
		}
		if !since.IsZero() && tx.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !tx.Date.Before(until) {
			continue
		}
		result = append(result, tx)
	}
	return result
}

// DailySpend returns outflow totals for the `days` days ending on today,
// oldest first. Days without spending are zero.
func DailySpend(transactions []model.Transaction, today time.Time, days int) []int64 {
	if days <= 0 {
		return nil
	}
	end := paycycle.Date(today)
	start := end.AddDate(0, 0, -(days - 1))

	series := make([]int64, days)
	for _, tx := range Dedupe(transactions) {
		if tx.Amount >= 0 {
			continue
		}
		day := paycycle.Date(tx.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		idx := int(day.Sub(start).Hours() / 24)
		series[idx] += -tx.Amount
	}
	return series
}

// AvgDailySpend is the mean daily outflow over the `days` days ending on today.
// It is 0 when there is no spending.
func AvgDailySpend(transactions []model.Transaction, today time.Time, days int) float64 {
	if days <= 0 {
		return 0
	}
	var total int64
	for _, v := range DailySpend(transactions, today, days) {
		total += v
	}
	return float64(total) / float64(days)
}

// TrailingWindowStart returns the first day included in a trailing window of
// `days` days ending on today.
func TrailingWindowStart(today time.Time, days int) time.Time {
	return paycycle.Date(today).AddDate(0, 0, -(days - 1))
}
