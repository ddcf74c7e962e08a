package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
	"github.com/theirongolddev/cashpulse/internal/score"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly income, spending, accounts and budget overview",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	rep, st, err := buildReport(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if flagJSON {
		return printJSON(rep)
	}

	in := rep.Inputs
	if len(in.Accounts) == 0 && len(in.Transactions) == 0 && len(in.Goals) == 0 {
		fmt.Println("\n  No data yet.")
		fmt.Println("  Import a JSONL export with `cashpulse import PATH`, then come back!")
		return nil
	}

	m := money()
	snap := rep.Snapshot
	monthName := time.Month(snap.Month).String()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CASHPULSE  %s %d", monthName, snap.Year)))
	fmt.Println()

	rows := [][]string{
		{"Transactions", cli.FormatNumber(int64(snap.TransactionCount))},
		{"Income", m.Format(snap.MonthlyIncome)},
		{"Expenses", m.Format(snap.MonthlyExpenses)},
		{"Savings transfers", m.FormatSigned(snap.MonthlySavingsTransfers)},
		{"Net", m.FormatSigned(snap.NetBalance)},
		{"---"},
		{"Available balance", m.Format(snap.AvailableBalance)},
		{"Health score", fmt.Sprintf("%s (%s)", cli.FormatScore(rep.Score.TotalScore), rep.Score.RiskLevel)},
		{"Shortfall", m.Format(rep.Savings.Shortfall)},
		{"Next payday", cli.FormatDate(rep.NextPayday)},
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Metric", "Value"}, Rows: rows}))

	spend := pipeline.DailySpend(in.Transactions, in.Today, score.TrailingDays)
	series := make([]float64, len(spend))
	for i, v := range spend {
		series[i] = float64(v)
	}
	fmt.Printf("\n  Daily spend (%dd)  %s\n", score.TrailingDays, cli.RenderSparkline(series))

	if len(snap.AccountBalances) > 0 {
		acct := cli.Table{
			Title:     "Accounts",
			Headers:   []string{"Account", "Status", "Balance"},
			LeftAlign: map[int]bool{1: true},
		}
		for _, a := range snap.AccountBalances {
			acct.Rows = append(acct.Rows, []string{accountLabel(a), string(a.Status), m.Format(a.Balance)})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(acct))
	}

	if len(in.BudgetItems) > 0 {
		groups := pipeline.PlannedByGroup(in.BudgetItems)
		budget := cli.Table{
			Title:   "Monthly budget",
			Headers: []string{"Group", "Planned", "Share"},
		}
		total := pipeline.MonthlyBudgetTotal(in.BudgetItems)
		for _, g := range []model.BudgetGroup{model.GroupNeeds, model.GroupWants, model.GroupSavings, model.GroupNone} {
			amt, ok := groups[g]
			if !ok {
				continue
			}
			share := 0.0
			if total > 0 {
				share = float64(amt) / float64(total)
			}
			budget.Rows = append(budget.Rows, []string{groupLabel(g), m.Format(amt), cli.FormatPercent(share)})
		}
		budget.Rows = append(budget.Rows, []string{"---"}, []string{"Total", m.Format(total), ""})
		fmt.Println()
		fmt.Print(cli.RenderTable(budget))
	}

	return nil
}

func accountLabel(a model.AccountBalance) string {
	if a.Name != "" {
		return a.Name
	}
	return a.AccountID
}

func groupLabel(g model.BudgetGroup) string {
	if g == model.GroupNone {
		return "Ungrouped"
	}
	return string(g)
}
