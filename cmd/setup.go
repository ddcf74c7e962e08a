package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/config"
	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure payday, budget method, strategy and theme",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupAnswers holds form values as strings so inputs can be edited freely
// and parsed once on submit.
type setupAnswers struct {
	payday   string
	cadence  model.Cadence
	method   model.BudgetMethod
	needs    string
	wants    string
	savings  string
	strategy model.Strategy
	symbol   string
	theme    string
}

func newSetupAnswers(us model.UserSettings, cfg config.Config) setupAnswers {
	return setupAnswers{
		payday:   strconv.Itoa(us.PaydayOfMonth),
		cadence:  us.Cadence,
		method:   us.BudgetMethod,
		needs:    strconv.Itoa(us.NeedsPct),
		wants:    strconv.Itoa(us.WantsPct),
		savings:  strconv.Itoa(us.SavingsPct),
		strategy: us.Strategy,
		symbol:   cfg.General.CurrencySymbol,
		theme:    cfg.Appearance.Theme,
	}
}

// settings parses the answers back into user settings and validates them.
func (a setupAnswers) settings() (model.UserSettings, error) {
	us := model.UserSettings{
		Cadence:      a.cadence,
		BudgetMethod: a.method,
		Strategy:     a.strategy,
	}
	fields := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"PaydayOfMonth", a.payday, &us.PaydayOfMonth},
		{"NeedsPct", a.needs, &us.NeedsPct},
		{"WantsPct", a.wants, &us.WantsPct},
		{"SavingsPct", a.savings, &us.SavingsPct},
	}
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f.raw))
		if err != nil {
			return us, model.Invalid("settings", f.name, "numeric")
		}
		*f.dst = n
	}
	return us, model.ValidateSettings(us)
}

func intInRange(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("enter a whole number from %d to %d", lo, hi)
		}
		return nil
	}
}

func newSetupForm(a *setupAnswers) *huh.Form {
	strategies := make([]huh.Option[model.Strategy], 0, len(model.Strategies))
	for _, s := range model.Strategies {
		strategies = append(strategies, huh.NewOption(strings.ReplaceAll(string(s), "_", " "), s))
	}
	themes := []huh.Option[string]{huh.NewOption("Auto (match terminal)", theme.Auto)}
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Payday").
				Description("Day of the month your income arrives (1-31).").
				Value(&a.payday).
				Validate(intInRange(1, 31)),
			huh.NewSelect[model.Cadence]().
				Title("Pay cadence").
				Options(
					huh.NewOption("Monthly", model.CadenceMonthly),
					huh.NewOption("Every two weeks", model.CadenceBiweekly),
					huh.NewOption("Weekly", model.CadenceWeekly),
				).
				Value(&a.cadence),
			huh.NewInput().
				Title("Currency symbol").
				Value(&a.symbol),
		),
		huh.NewGroup(
			huh.NewSelect[model.BudgetMethod]().
				Title("Budget method").
				Options(
					huh.NewOption("Zero-based (planned items)", model.MethodZeroBased),
					huh.NewOption("Percentage-based (needs/wants/savings)", model.MethodPercentageBased),
				).
				Value(&a.method),
		),
		huh.NewGroup(
			huh.NewInput().Title("Needs %").Value(&a.needs).Validate(intInRange(0, 100)),
			huh.NewInput().Title("Wants %").Value(&a.wants).Validate(intInRange(0, 100)),
			huh.NewInput().Title("Savings %").Value(&a.savings).Validate(intInRange(0, 100)),
		).WithHideFunc(func() bool { return a.method != model.MethodPercentageBased }),
		huh.NewGroup(
			huh.NewSelect[model.Strategy]().
				Title("Shortfall strategy").
				Description("How a savings shortfall is spread across goals.").
				Options(strategies...).
				Value(&a.strategy),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&a.theme),
		),
	)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	current, err := st.Settings(ctx)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	// Reload so --db and --driver overrides are not written back.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	answers := newSetupAnswers(current, cfg)
	if err := newSetupForm(&answers).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	us, err := answers.settings()
	if err != nil {
		return err
	}
	if err := st.SaveSettings(ctx, us); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cfg.General.CurrencySymbol = answers.symbol
	cfg.Appearance.Theme = answers.theme
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Settings saved to %s\n", appCfg.DBPath())
	fmt.Printf("  Preferences saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `cashpulse setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
