package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/paycycle"
)

var (
	flagPaydayCount int
	flagPaydayUntil string
)

var paydayCmd = &cobra.Command{
	Use:   "payday",
	Short: "Show upcoming paydays for the configured pay cycle",
	RunE:  runPayday,
}

func init() {
	paydayCmd.Flags().IntVarP(&flagPaydayCount, "count", "n", 6, "Number of upcoming paydays to list")
	paydayCmd.Flags().StringVar(&flagPaydayUntil, "until", "", "Count pay periods from today through this date (YYYY-MM-DD)")
	rootCmd.AddCommand(paydayCmd)
}

type paydayRow struct {
	N       int       `json:"n"`
	Date    time.Time `json:"date"`
	DaysOut int       `json:"days_out"`
}

func runPayday(cmd *cobra.Command, _ []string) error {
	today, err := referenceDate()
	if err != nil {
		return err
	}
	if flagPaydayCount < 1 {
		return fmt.Errorf("%w: --count must be at least 1", model.ErrInvalidInput)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	settings, err := st.Settings(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := model.ValidateSettings(settings); err != nil {
		return err
	}

	if flagPaydayUntil != "" {
		target, err := time.Parse("2006-01-02", flagPaydayUntil)
		if err != nil {
			return fmt.Errorf("%w: --until %q: want YYYY-MM-DD", model.ErrInvalidInput, flagPaydayUntil)
		}
		n := paycycle.PayPeriodsUntil(today, settings.PaydayOfMonth, settings.Cadence, target)
		if flagJSON {
			return printJSON(map[string]any{"until": cli.FormatDate(target), "pay_periods": n})
		}
		fmt.Printf("\n  %d paydays from %s through %s (%s cadence)\n",
			n, cli.FormatDate(today), cli.FormatDate(target), settings.Cadence)
		return nil
	}

	rows := make([]paydayRow, 0, flagPaydayCount)
	for i := 1; i <= flagPaydayCount; i++ {
		d := paycycle.NthPayday(today, settings.PaydayOfMonth, settings.Cadence, i)
		rows = append(rows, paydayRow{N: i, Date: d, DaysOut: int(d.Sub(today).Hours() / 24)})
	}
	if flagJSON {
		return printJSON(rows)
	}

	table := cli.Table{
		Title:   fmt.Sprintf("Paydays (day %d, %s)", settings.PaydayOfMonth, settings.Cadence),
		Headers: []string{"#", "Date", "Day", "In"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", r.N),
			cli.FormatDate(r.Date),
			cli.FormatDayOfWeek(int(r.Date.Weekday())),
			cli.FormatDays(r.DaysOut),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(table))
	return nil
}
