// Package tui provides the interactive Bubble Tea dashboard for cashpulse.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
	"github.com/theirongolddev/cashpulse/internal/report"
	"github.com/theirongolddev/cashpulse/internal/tui/components"
	"github.com/theirongolddev/cashpulse/internal/tui/theme"
)

// ReportMsg is sent when a load finishes.
type ReportMsg struct {
	Report   report.Report
	Err      error
	LoadTime time.Duration
}

// Options configures the dashboard.
type Options struct {
	Source pipeline.Source
	Report report.Options
	Money  cli.Money
	Now    func() time.Time
	// RefreshInterval reloads in the background; zero disables it.
	RefreshInterval time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	rep        report.Report
	loaded     bool
	loadErr    error
	loadTime   time.Duration
	lastLoad   time.Time
	refreshing bool

	width     int
	height    int
	activeTab int

	spinner spinner.Model
}

const (
	minTerminalWidth = 70
	maxContentWidth  = 140
	minContentHeight = 5
)

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Money.Symbol == "" && opts.Money.Exponent == 0 {
		opts.Money = cli.DefaultMoney
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{opts: opts, spinner: sp}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadCmd(), a.spinner.Tick}
	if a.opts.RefreshInterval > 0 {
		cmds = append(cmds, tickCmd(a.opts.RefreshInterval))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "r":
			if a.refreshing {
				return a, nil
			}
			a.refreshing = true
			return a, a.loadCmd()
		case "tab", "right", "l":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		case "shift+tab", "left", "h":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		default:
			if idx := components.TabIdxByKey(key); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case ReportMsg:
		a.refreshing = false
		a.loadTime = msg.LoadTime
		a.lastLoad = a.opts.Now()
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.rep = msg.Report
			a.loaded = true
		}
		return a, nil

	case spinner.TickMsg:
		if a.loaded && !a.refreshing {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(a.opts.RefreshInterval)}
		if a.loaded && !a.refreshing {
			a.refreshing = true
			cmds = append(cmds, a.loadCmd())
		}
		return a, tea.Batch(cmds...)
	}
	return a, nil
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  cashpulse needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ cashpulse"))
	b.WriteString(mutedStyle.Render(" · budget health"))
	b.WriteString("\n\n")
	if a.loadErr != nil {
		b.WriteString(errStyle.Render("Load failed: " + a.loadErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("[r] retry  [q] quit"))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(mutedStyle.Render(" Loading accounts and goals..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	info := fmt.Sprintf("as of %s · loaded %s (%dms)", cli.FormatDate(a.rep.At),
		a.lastLoad.Format("15:04"), a.loadTime.Milliseconds())
	if a.loadErr != nil {
		info = "refresh failed · " + info
	}
	statusBar := components.RenderStatusBar(w, info, a.refreshing)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderHealthTab(cw)
	case 1:
		content = a.renderSavingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadCmd builds a fresh report in the background.
func (a App) loadCmd() tea.Cmd {
	src := a.opts.Source
	opts := a.opts.Report
	opts.Load.Today = a.opts.Now()
	return func() tea.Msg {
		start := time.Now()
		rep, err := report.Build(context.Background(), src, opts)
		return ReportMsg{Report: rep, Err: err, LoadTime: time.Since(start)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Count(s, "\n") + 1
	if lines >= h {
		return s
	}
	return s + strings.Repeat("\n", h-lines)
}

// fillLinesWithBackground pads each line to width w so the background color
// covers gaps between cards.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	fill := lipgloss.NewStyle().Background(bg)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if gap := w - lipgloss.Width(line); gap > 0 {
			lines[i] = line + fill.Render(strings.Repeat(" ", gap))
		}
	}
	return strings.Join(lines, "\n")
}
