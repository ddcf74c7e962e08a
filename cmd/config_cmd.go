// Package cmd implements the cashpulse CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	if flagJSON {
		cfg.General.DBPath = maskDSN(cfg.DBPath())
		return printJSON(cfg)
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:   %s (%s)\n", maskDSN(cfg.DBPath()), cfg.General.DBDriver)
	fmt.Printf("    Currency:   %s, %d decimals\n", cfg.General.CurrencySymbol, cfg.General.CurrencyExponent)
	fmt.Printf("    Log:        %s, %s\n", cfg.General.LogLevel, cfg.General.LogFormat)
	fmt.Println()

	fmt.Println("  [Classifier]")
	fmt.Printf("    Income keywords:   %s\n", strings.Join(cfg.Classifier.IncomeKeywords, ", "))
	fmt.Printf("    Transfer keywords: %s\n", strings.Join(cfg.Classifier.SavingsTransferKeywords, ", "))
	fmt.Println()

	s := cfg.Scoring
	fmt.Println("  [Scoring]")
	fmt.Printf("    Budget compliance:    %.0f%%\n", s.BudgetComplianceWeight)
	fmt.Printf("    Spending consistency: %.0f%%\n", s.SpendingConsistencyWeight)
	fmt.Printf("    Savings health:       %.0f%%\n", s.SavingsHealthWeight)
	fmt.Printf("    Cash survival:        %.0f%%\n", s.CashSurvivalWeight)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule: %s\n", cfg.Daemon.Schedule)
	fmt.Printf("    Events:   %d retained\n", cfg.Daemon.EventsSize)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `cashpulse setup` to reconfigure.")
	return nil
}

// maskDSN hides the password of a postgres URL so config output is safe to share.
func maskDSN(dsn string) string {
	scheme := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return dsn
	}
	return dsn[:scheme+3] + user + ":****" + dsn[at:]
}
