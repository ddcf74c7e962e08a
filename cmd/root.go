package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/config"
	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
	"github.com/theirongolddev/cashpulse/internal/report"
	"github.com/theirongolddev/cashpulse/internal/score"
	"github.com/theirongolddev/cashpulse/internal/store"
)

var (
	flagDB     string
	flagDriver string
	flagToday  string
	flagMonth  string
	flagQuiet  bool
	flagJSON   bool
)

// Loaded once per invocation by the root PersistentPreRunE.
var (
	appCfg config.Config
	appLog *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cashpulse",
	Short: "Budget health scoring and savings shortfall planner",
	Long: "Score how healthy this month's budget is and, when committed goal allocations\n" +
		"and obligations exceed the cash on hand, propose how to spread the shortfall.",
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path or DSN (default $XDG_DATA_HOME/cashpulse/cashpulse.db)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Database driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Reference date YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().StringVar(&flagMonth, "month", "", "Month to aggregate YYYY-MM (default the reference month)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
}

// loadRuntime reads config, applies flag overrides and builds the logger.
func loadRuntime(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if flagDriver != "" {
		cfg.General.DBDriver = flagDriver
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	appCfg = cfg
	appLog = config.NewLogger(cfg)
	if flagQuiet {
		appLog.SetLevel(logrus.WarnLevel)
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(appCfg.General.DBDriver, appCfg.DBPath())
	if err != nil {
		return nil, err
	}
	appLog.WithFields(logrus.Fields{"driver": st.Driver()}).Debug("store opened")
	return st, nil
}

// referenceDate returns --today or the current local date.
func referenceDate() (time.Time, error) {
	if flagToday == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse("2006-01-02", flagToday)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --today %q: want YYYY-MM-DD", model.ErrInvalidInput, flagToday)
	}
	return d, nil
}

// loadOptions resolves the reference date and aggregated month from flags.
func loadOptions() (pipeline.LoadOptions, error) {
	today, err := referenceDate()
	if err != nil {
		return pipeline.LoadOptions{}, err
	}
	opts := pipeline.LoadOptions{Today: today}
	if flagMonth != "" {
		m, err := time.Parse("2006-01", flagMonth)
		if err != nil {
			return opts, fmt.Errorf("%w: --month %q: want YYYY-MM", model.ErrInvalidInput, flagMonth)
		}
		opts.Year, opts.Month = m.Year(), m.Month()
	}
	return opts, nil
}

// reportOptions wires weights and classifier keywords from config.
func reportOptions(strategy model.Strategy) (report.Options, error) {
	load, err := loadOptions()
	if err != nil {
		return report.Options{}, err
	}
	s := appCfg.Scoring
	calc, err := score.New(score.Weights{
		BudgetCompliance:    s.BudgetComplianceWeight,
		SpendingConsistency: s.SpendingConsistencyWeight,
		SavingsHealth:       s.SavingsHealthWeight,
		CashSurvivalRisk:    s.CashSurvivalWeight,
	})
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{
		Load:       load,
		Calculator: *calc,
		Classifier: pipeline.NewKeywordClassifier(appCfg.Classifier.IncomeKeywords, appCfg.Classifier.SavingsTransferKeywords),
		Strategy:   strategy,
	}, nil
}

// buildReport opens the store, builds a report and returns both. The caller
// closes the store.
func buildReport(ctx context.Context, strategy model.Strategy) (report.Report, *store.Store, error) {
	opts, err := reportOptions(strategy)
	if err != nil {
		return report.Report{}, nil, err
	}
	st, err := openStore()
	if err != nil {
		return report.Report{}, nil, err
	}

	start := time.Now()
	rep, err := report.Build(ctx, st, opts)
	if err != nil {
		_ = st.Close()
		return report.Report{}, nil, err
	}
	appLog.WithFields(logrus.Fields{
		"transactions": len(rep.Inputs.Transactions),
		"goals":        len(rep.Inputs.Goals),
		"elapsed":      time.Since(start).String(),
	}).Debug("report built")
	return rep, st, nil
}

func money() cli.Money {
	return cli.Money{Symbol: appCfg.General.CurrencySymbol, Exponent: appCfg.General.CurrencyExponent}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func progressf(format string, args ...any) {
	if !flagQuiet && !flagJSON {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
