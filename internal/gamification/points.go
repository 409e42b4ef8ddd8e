// Package gamification holds the reward rules: points, levels, the once a
// day budget bonus, badges and challenge progress.
//
// Every rule is a pure function of the profile, the ledger and a reference
// instant. Callers apply the returned decisions and persist them; rules
// never keep state of their own. Calendar days are read in the location of
// the reference instant.
package gamification

import (
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
)

const (
	ExpenseLoggedPoints = 1
	DailyBonusPoints    = 5
	PointsPerLevel      = 100
)

// LevelForPoints is 1 + points/PointsPerLevel.
func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return 1 + points/PointsPerLevel
}

// AddPoints credits p and re-derives its level. Non-positive amounts are
// ignored so points never decrease. It reports whether the level went up.
func AddPoints(p *core.Profile, points int) bool {
	if points <= 0 {
		return false
	}
	before := p.Level
	p.Points += points
	p.Level = LevelForPoints(p.Points)
	return p.Level > before
}

// BonusDecision is the outcome of a daily bonus check.
type BonusDecision struct {
	Award      bool
	Marker     string // day key to persist when Award is set
	TodaySpent decimal.Decimal
	Reason     string
}

// CheckDailyBonus decides whether today's bonus is due. It is safe to call
// any number of times: once lastMarker equals today's day key it never
// awards again.
func CheckDailyBonus(expenses []core.Expense, monthlyBudget decimal.Decimal, lastMarker string, now time.Time) BonusDecision {
	today := ledger.ExpensesOnDay(expenses, now)
	spent := ledger.SumAmounts(today)
	key := ledger.DayKey(now)

	switch {
	case lastMarker == key:
		return BonusDecision{TodaySpent: spent, Reason: "already awarded today"}
	case len(today) == 0:
		return BonusDecision{TodaySpent: spent, Reason: "no expense logged today"}
	case !budget.IsUnderDailyBudget(spent, budget.DailyBudget(monthlyBudget)):
		return BonusDecision{TodaySpent: spent, Reason: "over daily budget"}
	}
	return BonusDecision{Award: true, Marker: key, TodaySpent: spent}
}
