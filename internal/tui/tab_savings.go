package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/tui/components"
	"github.com/theirongolddev/cashpulse/internal/tui/theme"
)

func (a App) renderSavingsTab(cw int) string {
	t := theme.Active
	st := a.rep.Savings
	money := a.opts.Money
	var b strings.Builder

	shortfallColor := t.Green
	if st.HasShortfall {
		shortfallColor = t.Red
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Committed", Value: money.Format(st.ExpectedBalance), Note: "goals + obligations"},
		{Label: "Available", Value: money.Format(st.AvailableBalance)},
		{Label: "Shortfall", Value: money.Format(st.Shortfall), Color: shortfallColor},
		{Label: "Strategy", Value: strings.ReplaceAll(string(st.Strategy), "_", " ")},
	}, cw))
	b.WriteString("\n")

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)

	var body string
	switch {
	case !st.HasShortfall:
		body = lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).
			Render("Goal allocations and obligations are covered by the available balance.")
	case len(st.Adjustments) == 0:
		body = muted.Render("No goal allocations to reduce.")
	default:
		body = a.adjustmentLines(st.Adjustments)
	}
	if st.Unabsorbed > 0 {
		body += "\n\n" + warn.Render(fmt.Sprintf("%s of the shortfall exceeds all goal allocations.", money.Format(st.Unabsorbed)))
	}
	b.WriteString(components.ContentCard("Proposed adjustments", body, cw))
	b.WriteString("\n")

	if in := a.rep.Inputs; in != nil && len(in.Goals) > 0 {
		byID := make(map[string]model.Adjustment, len(st.Adjustments))
		for _, adj := range st.Adjustments {
			byID[adj.GoalID] = adj
		}

		inner := components.CardInnerWidth(cw)
		labelW := 18
		barW := max(min(inner-labelW-30, 40), 10)
		lines := make([]string, 0, len(in.Goals))
		for _, g := range in.Goals {
			note := money.Format(g.MonthlyAllocation) + "/cycle"
			if adj, ok := byID[g.ID]; ok {
				note = fmt.Sprintf("%s → %s/cycle", money.Format(adj.CurrentAllocation), money.Format(adj.NewAllocation))
			}
			lines = append(lines, components.GoalBar(g.Name, g.Saved, g.Target, note, labelW, barW))
		}
		b.WriteString(components.ContentCard("Goals", strings.Join(lines, "\n"), cw))
	}

	return b.String()
}

func (a App) adjustmentLines(adjs []model.Adjustment) string {
	t := theme.Active
	money := a.opts.Money

	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	flag := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	row := func(cols ...string) string {
		return fmt.Sprintf("%-18s %12s %12s %12s %-16s %-10s", cols[0], cols[1], cols[2], cols[3], cols[4], cols[5])
	}

	lines := []string{head.Render(row("Goal", "Current", "New", "Reduction", "Extension", "Due"))}
	for _, adj := range adjs {
		line := cell.Render(row(
			adj.GoalName,
			money.Format(adj.CurrentAllocation),
			money.Format(adj.NewAllocation),
			money.Format(adj.Reduction),
			cli.FormatExtension(adj.TimelineExtensionMonths),
			cli.FormatDate(adj.ProposedDueDate),
		))
		var flags []string
		if adj.NeedsReplan {
			flags = append(flags, "re-plan")
		}
		if adj.Overdue {
			flags = append(flags, "overdue")
		}
		if len(flags) > 0 {
			line += flag.Render(" " + strings.Join(flags, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
