package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/notify"
	"spendwise/internal/session"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorYellow    = lipgloss.Color("#D0A215")
	ColorPurple    = lipgloss.Color("#8B7EC8")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	badStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	rewardStyle = lipgloss.NewStyle().
			Foreground(ColorPurple).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. The first column is left-aligned,
// the rest right-aligned.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i := 0; i < numCols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i == 0 {
				b.WriteString(style.Render(" " + cell + pad + " "))
			} else {
				b.WriteString(style.Render(" " + pad + cell + " "))
			}
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")

	return b.String()
}

// RenderProgressBar renders ratio (clamped to [0,1]) as a bar of width cells.
func RenderProgressBar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %3.0f%%", labelStyle.Render(bar), ratio*100)
}

// StatusLabel renders a budget band in its color.
func StatusLabel(s budget.Status) string {
	switch s {
	case budget.OnTrack:
		return goodStyle.Render(s.Label())
	case budget.Mindful:
		return lipgloss.NewStyle().Foreground(ColorYellow).Render(s.Label())
	case budget.NearLimit:
		return warnStyle.Render(s.Label())
	default:
		return badStyle.Render(s.Label())
	}
}

func field(label, value string) string {
	return fmt.Sprintf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-22s", label)), valueStyle.Render(value))
}

// RenderDashboard renders the monthly budget picture.
func RenderDashboard(d session.Dashboard, currency string) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("SPENDWISE  %s %d", d.Month, d.Year)))
	b.WriteString("\n\n")

	b.WriteString(field("Spent this month", FormatAmount(d.TotalSpentThisMonth, currency)))
	b.WriteString(field("Remaining", FormatAmount(d.Remaining, currency)))
	b.WriteString(fmt.Sprintf("  %s %s  %s\n",
		labelStyle.Render(fmt.Sprintf("%-22s", "Budget used")),
		RenderProgressBar(d.PercentageUsed/100, 30),
		StatusLabel(d.StatusBand)))
	b.WriteString("\n")

	today := FormatAmount(d.TodaySpent, currency) + " of " + FormatAmount(d.DailyBudget, currency)
	if d.IsUnderDailyBudget {
		today += "  " + goodStyle.Render("under daily budget")
	} else {
		today += "  " + warnStyle.Render("over daily budget")
	}
	b.WriteString(field("Today", today))
	b.WriteString(field("Level", fmt.Sprintf("%d  (%d points, %d to next)", d.Level, d.Points, d.PointsToNextLevel)))
	b.WriteString(field("Savings rate", FormatPercent(d.SavingsRate)))
	b.WriteString("\n")

	if len(d.TopCategories) > 0 {
		rows := make([][]string, 0, len(d.TopCategories))
		for _, c := range d.TopCategories {
			rows = append(rows, []string{string(c.Category), FormatAmount(c.Amount, currency)})
		}
		b.WriteString(RenderTable(Table{Title: "Top categories", Headers: []string{"Category", "Spent"}, Rows: rows}))
		b.WriteString("\n")
	}

	if len(d.RecentExpenses) > 0 {
		b.WriteString(RenderTable(Table{
			Title:   "Recent expenses",
			Headers: []string{"Description", "Category", "Amount", "Date"},
			Rows:    expenseRows(d.RecentExpenses, currency),
		}))
	} else {
		b.WriteString(labelStyle.Render("  No expenses yet. Add one with `spendwise add`."))
		b.WriteString("\n")
	}

	return b.String()
}

func expenseRows(expenses []core.Expense, currency string) [][]string {
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []string{e.Description, string(e.Category), FormatAmount(e.Amount, currency), FormatDate(e.Date)})
	}
	return rows
}

// RenderChallenges renders joined challenges and the catalog entries not
// currently active.
func RenderChallenges(views []session.ChallengeView, catalog []core.ChallengeDefinition, now time.Time) string {
	var b strings.Builder
	b.WriteString(RenderTitle("CHALLENGES"))
	b.WriteString("\n\n")

	active := make(map[string]bool)
	if len(views) == 0 {
		b.WriteString(labelStyle.Render("  You have not joined any challenge."))
		b.WriteString("\n\n")
	}
	for _, v := range views {
		c := v.Challenge
		var status string
		switch v.Status {
		case core.ChallengeCompleted:
			status = goodStyle.Render("completed")
		case core.ChallengeExpired:
			status = badStyle.Render("expired")
		default:
			active[c.DefinitionID] = true
			status = headerStyle.Render("active") + labelStyle.Render(", ends "+FormatRelative(c.EndDate, now))
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n", valueStyle.Render(c.Title), status))
		b.WriteString(fmt.Sprintf("  %s  %s / %s\n",
			RenderProgressBar(v.Ratio, 24),
			v.CurrentProgress.StringFixed(0),
			c.Target.StringFixed(0)))
		b.WriteString(labelStyle.Render("  " + c.Description))
		b.WriteString("\n\n")
	}

	rows := make([][]string, 0, len(catalog))
	for _, d := range catalog {
		if active[d.ID] {
			continue
		}
		rows = append(rows, []string{d.ID, d.Title, strconv.Itoa(int(d.Duration.Hours() / 24)), strconv.Itoa(d.PointsReward)})
	}
	if len(rows) > 0 {
		b.WriteString(RenderTable(Table{
			Title:   "Available (spendwise challenges join <id>)",
			Headers: []string{"ID", "Title", "Days", "Reward"},
			Rows:    rows,
		}))
	}
	return b.String()
}

// RenderProfile renders the profile with its badges and savings goals.
func RenderProfile(p core.Profile, currency string) string {
	var b strings.Builder
	b.WriteString(RenderTitle("PROFILE"))
	b.WriteString("\n\n")
	b.WriteString(field("Name", p.Name))
	b.WriteString(field("Email", p.Email))
	b.WriteString(field("Monthly income", FormatAmount(p.MonthlyIncome, currency)))
	b.WriteString(field("Monthly budget", FormatAmount(p.MonthlyBudget, currency)))
	b.WriteString(field("Savings rate", FormatPercent(p.SavingsRate())))
	b.WriteString(field("Level", fmt.Sprintf("%d (%d points)", p.Level, p.Points)))
	b.WriteString(field("Member since", FormatDate(p.CreatedAt)))
	b.WriteString("\n")

	if len(p.Badges) > 0 {
		rows := make([][]string, 0, len(p.Badges))
		for _, badge := range p.Badges {
			rows = append(rows, []string{badge.Icon + " " + badge.Name, string(badge.Category), FormatDate(badge.EarnedAt)})
		}
		b.WriteString(RenderTable(Table{Title: "Badges", Headers: []string{"Badge", "Kind", "Earned"}, Rows: rows}))
		b.WriteString("\n")
	}

	if len(p.SavingsGoals) > 0 {
		rows := make([][]string, 0, len(p.SavingsGoals))
		for _, g := range p.SavingsGoals {
			state := FormatDate(g.TargetDate)
			if g.IsCompleted {
				state = "reached"
			}
			rows = append(rows, []string{
				g.Title,
				FormatAmount(g.CurrentAmount, currency) + " / " + FormatAmount(g.TargetAmount, currency),
				state,
				g.ID,
			})
		}
		b.WriteString(RenderTable(Table{Title: "Savings goals", Headers: []string{"Goal", "Saved", "Target date", "ID"}, Rows: rows}))
	}
	return b.String()
}

// RenderEvents lists what the last command unlocked; empty when nothing did.
func RenderEvents(events []notify.Event) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, e := range events {
		b.WriteString("  ")
		switch e.Kind {
		case notify.KindChallengeExpired:
			b.WriteString(labelStyle.Render("⌛ " + e.Title))
		default:
			b.WriteString(rewardStyle.Render("★ " + e.Title))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSuccess renders a one-line confirmation.
func RenderSuccess(msg string) string {
	return goodStyle.Render("  ✓ " + msg)
}
