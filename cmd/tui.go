package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashpulse/internal/tui"
	"github.com/theirongolddev/cashpulse/internal/tui/theme"
)

var flagTUIRefresh time.Duration

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive health dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&flagTUIRefresh, "refresh", time.Minute, "Background reload interval (0 disables)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Resolve "auto" before forcing TrueColor below.
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts, err := reportOptions("")
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	appOpts := tui.Options{
		Source:          st,
		Report:          opts,
		Money:           money(),
		RefreshInterval: flagTUIRefresh,
	}
	if flagToday != "" {
		today := opts.Load.Today
		appOpts.Now = func() time.Time { return today }
	}

	p := tea.NewProgram(tui.NewApp(appOpts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
