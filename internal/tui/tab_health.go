package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashpulse/internal/cli"
	"github.com/theirongolddev/cashpulse/internal/pipeline"
	"github.com/theirongolddev/cashpulse/internal/score"
	"github.com/theirongolddev/cashpulse/internal/tui/components"
	"github.com/theirongolddev/cashpulse/internal/tui/theme"
)

func (a App) renderHealthTab(cw int) string {
	t := theme.Active
	res := a.rep.Score
	m := res.Metrics
	money := a.opts.Money
	var b strings.Builder

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Health score", Value: cli.FormatScore(res.TotalScore), Note: "out of 100", Color: theme.ScoreColor(res.TotalScore)},
		{Label: "Risk", Value: string(res.RiskLevel), Note: "ratio " + cli.FormatRatio(m.RiskRatio, score.MaxRiskRatio), Color: theme.RiskColor(res.RiskLevel)},
		{Label: "Safe to spend", Value: money.Format(m.SafeToSpendPerDay), Note: "per day"},
		{Label: "Next payday", Value: cli.FormatDate(a.rep.NextPayday), Note: "in " + cli.FormatDays(m.DaysUntilPayday)},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)

	inner := components.CardInnerWidth(halves[0])
	labelW := 13
	barW := max(inner-labelW-7, 5)
	p := res.Pillars
	pillars := strings.Join([]string{
		components.PillarBar("Budget", p.BudgetCompliance, labelW, barW),
		components.PillarBar("Consistency", p.SpendingConsistency, labelW, barW),
		components.PillarBar("Savings", p.SavingsHealth, labelW, barW),
		components.PillarBar("Cash survival", p.CashSurvivalRisk, labelW, barW),
	}, "\n")

	cash := kvLines([][2]string{
		{"Available", money.Format(a.rep.Snapshot.AvailableBalance)},
		{"Goal allocations", money.Format(-m.GoalAllocations)},
		{"Obligations", money.Format(-m.CycleObligations)},
		{"Remaining", money.Format(m.RemainingBalance)},
		{"Avg daily spend", money.Format(int64(m.AvgDailySpend))},
		{"Expected to payday", money.Format(m.ExpectedSpendToPayday)},
	})

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Pillars", pillars, halves[0]),
		components.ContentCard("Cash to payday", cash, halves[1]),
	}))
	b.WriteString("\n")

	snap := a.rep.Snapshot
	month := kvLines([][2]string{
		{"Income", money.Format(snap.MonthlyIncome)},
		{"Expenses", money.Format(snap.MonthlyExpenses)},
		{"Savings transfers", money.Format(snap.MonthlySavingsTransfers)},
		{"Net", money.FormatSigned(snap.NetBalance)},
		{"Transactions", cli.FormatNumber(int64(snap.TransactionCount))},
	})

	var spendCard string
	if in := a.rep.Inputs; in != nil {
		daily := pipeline.DailySpend(in.Transactions, in.Today, score.TrailingDays)
		spendCard = components.Sparkline(daily, t.Blue)
	}
	if spendCard == "" {
		spendCard = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("no spending history")
	}

	b.WriteString(components.CardRow([]string{
		components.ContentCard(fmt.Sprintf("%d-%02d", snap.Year, snap.Month), month, halves[0]),
		components.ContentCard(fmt.Sprintf("Daily spend (%dd)", score.TrailingDays), spendCard, halves[1]),
	}))

	return b.String()
}

// kvLines renders aligned label/value lines on the card surface.
func kvLines(pairs [][2]string) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-*s  ", width, p[0]))+valueStyle.Render(p[1]))
	}
	return strings.Join(lines, "\n")
}
