package gamification

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
)

const (
	BadgeFirstExpense = "first_expense"
	BadgeLogger50     = "logger_50"
	BadgeStreak7      = "streak_7"

	loggerThreshold = 50
	streakLength    = 7
)

// badgeRule awards its badge once earned returns true.
type badgeRule struct {
	badge  core.Badge
	earned func(p core.Profile, expenses []core.Expense, now time.Time) bool
}

var badgeRules = []badgeRule{
	{
		badge: core.Badge{ID: BadgeFirstExpense, Name: "First Step", Description: "Logged your first expense", Icon: "🌱", Category: core.BadgeMilestone},
		earned: func(_ core.Profile, expenses []core.Expense, _ time.Time) bool {
			return len(expenses) > 0
		},
	},
	pointsRule(100, "Century", "💯"),
	pointsRule(250, "Quarter Master", "🥉"),
	pointsRule(500, "High Roller Saver", "🥈"),
	pointsRule(1000, "Thousand Club", "🥇"),
	{
		badge: core.Badge{ID: BadgeLogger50, Name: "Diligent Logger", Description: "Logged 50 expenses", Icon: "📒", Category: core.BadgeConsistency},
		earned: func(_ core.Profile, expenses []core.Expense, _ time.Time) bool {
			return len(expenses) >= loggerThreshold
		},
	},
	{
		badge: core.Badge{ID: BadgeStreak7, Name: "Week Warrior", Description: "Seven days in a row logged and under the daily budget", Icon: "🔥", Category: core.BadgeStreak},
		earned: func(p core.Profile, expenses []core.Expense, now time.Time) bool {
			return LongestBudgetStreak(expenses, p.MonthlyBudget, now) >= streakLength
		},
	},
}

func pointsRule(points int, name, icon string) badgeRule {
	return badgeRule{
		badge: core.Badge{
			ID:          PointsBadgeID(points),
			Name:        name,
			Description: "Reached " + strconv.Itoa(points) + " points",
			Icon:        icon,
			Category:    core.BadgeMilestone,
		},
		earned: func(p core.Profile, _ []core.Expense, _ time.Time) bool {
			return p.Points >= points
		},
	}
}

func PointsBadgeID(points int) string {
	return "points_" + strconv.Itoa(points)
}

// NewBadges lists badges p has earned but does not hold yet, stamped with now.
func NewBadges(p core.Profile, expenses []core.Expense, now time.Time) []core.Badge {
	var out []core.Badge
	for _, r := range badgeRules {
		if p.HasBadge(r.badge.ID) || !r.earned(p, expenses, now) {
			continue
		}
		b := r.badge
		b.EarnedAt = now
		out = append(out, b)
	}
	return out
}

// GrantBadge appends b unless a badge with the same id is already held.
func GrantBadge(p *core.Profile, b core.Badge) bool {
	if p.HasBadge(b.ID) {
		return false
	}
	p.Badges = append(p.Badges, b)
	return true
}

func ChallengeBadge(c core.Challenge, now time.Time) core.Badge {
	id := c.DefinitionID
	if id == "" {
		id = c.ID
	}
	return core.Badge{
		ID:          "challenge_" + id,
		Name:        c.Title,
		Description: "Completed the " + c.Title + " challenge",
		Icon:        "🏆",
		EarnedAt:    now,
		Category:    core.BadgeChallenge,
	}
}

func GoalBadge(g core.SavingsGoal, now time.Time) core.Badge {
	return core.Badge{
		ID:          "goal_" + g.ID,
		Name:        g.Title,
		Description: "Reached the savings goal " + g.Title,
		Icon:        "🎯",
		EarnedAt:    now,
		Category:    core.BadgeSavings,
	}
}

// LongestBudgetStreak counts the longest run of consecutive closed days
// (before today) that each have at least one expense and stay under the
// daily budget.
func LongestBudgetStreak(expenses []core.Expense, monthlyBudget decimal.Decimal, now time.Time) int {
	daily := budget.DailyBudget(monthlyBudget)
	today := ledger.StartOfDay(now)

	best, run := 0, 0
	var prev time.Time
	for _, d := range ledger.DailyTotals(expenses, now.Location()) {
		if !d.Day.Before(today) {
			break
		}
		if !budget.IsUnderDailyBudget(d.Amount, daily) {
			run = 0
			continue
		}
		if run > 0 && ledger.DayKey(prev.AddDate(0, 0, 1)) == ledger.DayKey(d.Day) {
			run++
		} else {
			run = 1
		}
		prev = d.Day
		if run > best {
			best = run
		}
	}
	return best
}
