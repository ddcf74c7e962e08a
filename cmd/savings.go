package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/savings"
)

var (
	flagStrategy   string
	flagApply      bool
	flagSkipReplan bool
)

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Check for a savings shortfall and propose goal adjustments",
	RunE:  runSavings,
}

func init() {
	names := make([]string, 0, len(model.Strategies))
	for _, s := range model.Strategies {
		names = append(names, string(s))
	}
	savingsCmd.Flags().StringVar(&flagStrategy, "strategy", "", "Override the stored strategy: "+strings.Join(names, ", "))
	savingsCmd.Flags().BoolVar(&flagApply, "apply", false, "Write the proposed allocations and due dates back to the store")
	savingsCmd.Flags().BoolVar(&flagSkipReplan, "skip-replan", false, "With --apply, leave goals that would drop to zero untouched")
	rootCmd.AddCommand(savingsCmd)
}

func runSavings(cmd *cobra.Command, _ []string) error {
	strategy := model.Strategy(flagStrategy)
	if strategy != "" && !strategy.Valid() {
		return fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidInput, flagStrategy)
	}

	rep, st, err := buildReport(cmd.Context(), strategy)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	status := rep.Savings
	if flagJSON && !flagApply {
		return printJSON(status)
	}

	if !flagJSON {
		printSavings(status)
	}
	if !flagApply || len(status.Adjustments) == 0 {
		return nil
	}

	res, applyErr := savings.Apply(cmd.Context(), st, status, savings.ApplyOptions{
		SkipReplan: flagSkipReplan,
		Logger:     appLog,
	})
	if flagJSON {
		if err := printJSON(struct {
			Status  model.SavingsStatus `json:"status"`
			Applied []string            `json:"applied"`
			Skipped []string            `json:"skipped"`
			Failed  int                 `json:"failed"`
		}{status, res.Applied, res.Skipped, len(res.Failed)}); err != nil {
			return err
		}
	} else {
		fmt.Printf("\n  Applied %d, skipped %d, failed %d\n", len(res.Applied), len(res.Skipped), len(res.Failed))
	}

	var pwe *savings.PartialWriteError
	if errors.As(applyErr, &pwe) {
		for _, f := range pwe.Failures {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", f.GoalID, f.Err)
		}
	}
	return applyErr
}

func printSavings(status model.SavingsStatus) {
	m := money()

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS SHORTFALL"))
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Strategy", string(status.Strategy)},
		{"Committed", m.Format(status.ExpectedBalance)},
		{"Available", m.Format(status.AvailableBalance)},
		{"Shortfall", m.Format(status.Shortfall)},
	}))
	fmt.Println()

	if !status.HasShortfall {
		fmt.Println("  Goal allocations and obligations are covered.")
		return
	}

	rows := make([][]string, 0, len(status.Adjustments))
	for _, a := range status.Adjustments {
		flags := ""
		switch {
		case a.NeedsReplan && a.Overdue:
			flags = "re-plan, overdue"
		case a.NeedsReplan:
			flags = "re-plan"
		case a.Overdue:
			flags = "overdue"
		}
		rows = append(rows, []string{
			a.GoalName,
			m.Format(a.CurrentAllocation),
			m.Format(a.NewAllocation),
			m.Format(a.Reduction),
			cli.FormatExtension(a.TimelineExtensionMonths),
			cli.FormatDate(a.ProposedDueDate),
			flags,
		})
	}
	if len(rows) > 0 {
		fmt.Print(cli.RenderTable(cli.Table{
			Title:     "Proposed adjustments",
			Headers:   []string{"Goal", "Current", "New", "Reduction", "Extension", "Due", "Flags"},
			Rows:      rows,
			LeftAlign: map[int]bool{4: true, 5: true, 6: true},
		}))
	}

	if status.Unabsorbed > 0 {
		fmt.Println()
		fmt.Print(cli.RenderWarning(fmt.Sprintf("%s of the shortfall cannot be covered by goal allocations.", m.Format(status.Unabsorbed))))
	}
}
