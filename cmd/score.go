package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/score"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Budget health score with pillar breakdown",
	RunE:  runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	rep, st, err := buildReport(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res := rep.Score
	if flagJSON {
		return printJSON(res)
	}

	m := money()
	met := res.Metrics

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BUDGET HEALTH  %s", cli.FormatDate(rep.At))))
	fmt.Println()
	fmt.Printf("  Score  %s   %s\n\n", cli.RenderScoreBar(res.TotalScore, 30),
		cli.RiskStyle(res.RiskLevel).Render(string(res.RiskLevel)))

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Pillars",
		Headers: []string{"Pillar", "Weight", "Score"},
		Rows: [][]string{
			{"Budget compliance", weight(appCfg.Scoring.BudgetComplianceWeight), cli.FormatScore(res.Pillars.BudgetCompliance)},
			{"Spending consistency", weight(appCfg.Scoring.SpendingConsistencyWeight), cli.FormatScore(res.Pillars.SpendingConsistency)},
			{"Savings health", weight(appCfg.Scoring.SavingsHealthWeight), cli.FormatScore(res.Pillars.SavingsHealth)},
			{"Cash survival", weight(appCfg.Scoring.CashSurvivalWeight), cli.FormatScore(res.Pillars.CashSurvivalRisk)},
		},
	}))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Cash to payday",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Available", m.Format(rep.Snapshot.AvailableBalance)},
			{"Goal allocations", m.Format(-met.GoalAllocations)},
			{"Cycle obligations", m.Format(-met.CycleObligations)},
			{"Remaining", m.Format(met.RemainingBalance)},
			{"---"},
			{"Days until payday", fmt.Sprintf("%d (%s)", met.DaysUntilPayday, cli.FormatDate(rep.NextPayday))},
			{"Avg daily spend", m.Format(int64(met.AvgDailySpend))},
			{"Expected spend", m.Format(met.ExpectedSpendToPayday)},
			{"Risk ratio", cli.FormatRatio(met.RiskRatio, score.MaxRiskRatio)},
			{"Safe to spend / day", m.Format(met.SafeToSpendPerDay)},
		},
	}))

	if met.RemainingBalance <= 0 {
		fmt.Println()
		fmt.Print(cli.RenderWarning("Committed allocations and obligations exceed the available balance. Run `cashpulse savings`."))
	}
	return nil
}

func weight(w float64) string {
	return fmt.Sprintf("%.0f%%", w)
}
