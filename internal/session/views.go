package session

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/gamification"
	"spendwise/internal/ledger"
	"spendwise/internal/log"
	"spendwise/internal/state"
)

// topCategoryCount is how many categories the dashboard surfaces.
const topCategoryCount = 3

const recentExpenseCount = 5

// Dashboard is the derived budget picture at a given instant.
type Dashboard struct {
	Year                int
	Month               time.Month
	TotalSpentThisMonth decimal.Decimal
	Remaining           decimal.Decimal
	PercentageUsed      float64
	StatusBand          budget.Status
	TodaySpent          decimal.Decimal
	DailyBudget         decimal.Decimal
	IsUnderDailyBudget  bool
	TopCategories       []core.CategoryAmount
	RecentExpenses      []core.Expense // newest first
	Points              int
	Level               int
	PointsToNextLevel   int
	SavingsRate         float64
}

// DashboardView derives the dashboard for now's month and day. It does not
// change any state.
func (c *Controller) DashboardView(now time.Time) (Dashboard, error) {
	if c.profile == nil {
		return Dashboard{}, ErrNoProfile
	}
	p := c.profile

	month := ledger.ExpensesInMonth(c.ledger, now.Year(), now.Month(), now.Location())
	spent := ledger.SumAmounts(month)
	summary := budget.Evaluate(p.MonthlyBudget, spent)
	today := ledger.SumAmounts(ledger.ExpensesOnDay(c.ledger, now))

	recent := make([]core.Expense, 0, recentExpenseCount)
	for i := len(c.ledger) - 1; i >= 0 && len(recent) < recentExpenseCount; i-- {
		recent = append(recent, c.ledger[i])
	}

	return Dashboard{
		Year:                now.Year(),
		Month:               now.Month(),
		TotalSpentThisMonth: spent,
		Remaining:           summary.Remaining,
		PercentageUsed:      summary.PercentageUsed,
		StatusBand:          summary.Status,
		TodaySpent:          today,
		DailyBudget:         summary.DailyBudget,
		IsUnderDailyBudget:  budget.IsUnderDailyBudget(today, summary.DailyBudget),
		TopCategories:       ledger.TopCategories(month, topCategoryCount),
		RecentExpenses:      recent,
		Points:              p.Points,
		Level:               p.Level,
		PointsToNextLevel:   p.Level*gamification.PointsPerLevel - p.Points,
		SavingsRate:         p.SavingsRate(),
	}, nil
}

// ChallengeView is a challenge with its progress evaluated at an instant.
type ChallengeView struct {
	Challenge       core.Challenge
	CurrentProgress decimal.Decimal
	IsCompleted     bool
	IsExpired       bool
	Status          core.ChallengeStatus
	Ratio           float64
}

// ChallengeViews evaluates every joined challenge at now without applying
// any transition or reward; Refresh does that. Active challenges come
// first, then completed, then expired, each by start date.
func (c *Controller) ChallengeViews(now time.Time) []ChallengeView {
	if c.profile == nil {
		return nil
	}
	views := make([]ChallengeView, 0, len(c.challenges))
	for _, ch := range c.challenges {
		out, err := gamification.EvaluateChallenge(ch, c.ledger, c.profile.MonthlyBudget, now)
		if err != nil {
			continue
		}
		eval := out.Challenge
		views = append(views, ChallengeView{
			Challenge:       ch,
			CurrentProgress: eval.CurrentProgress,
			IsCompleted:     eval.IsCompleted,
			IsExpired:       !eval.IsCompleted && (eval.IsExpired(now) || !eval.IsActive),
			Status:          eval.Status(now),
			Ratio:           gamification.ProgressRatio(eval),
		})
	}
	rank := map[core.ChallengeStatus]int{core.ChallengeActive: 0, core.ChallengeCompleted: 1, core.ChallengeExpired: 2}
	sort.SliceStable(views, func(i, j int) bool {
		ri, rj := rank[views[i].Status], rank[views[j].Status]
		if ri != rj {
			return ri < rj
		}
		return views[i].Challenge.StartDate.Before(views[j].Challenge.StartDate)
	})
	return views
}

// JoinChallenge starts a catalog challenge now. A definition can be joined
// again once its previous instance has finished.
func (c *Controller) JoinChallenge(ctx context.Context, definitionID string) (core.Challenge, error) {
	if c.profile == nil {
		return core.Challenge{}, ErrNoProfile
	}
	var def *core.ChallengeDefinition
	for i := range c.catalog {
		if c.catalog[i].ID == definitionID {
			def = &c.catalog[i]
			break
		}
	}
	if def == nil {
		return core.Challenge{}, ErrUnknownChallenge
	}

	now := c.now()
	for _, ch := range c.challenges {
		if ch.DefinitionID == definitionID && ch.Status(now) == core.ChallengeActive {
			return core.Challenge{}, ErrAlreadyJoined
		}
	}

	ch := def.Start(now)
	c.challenges = append(c.challenges, ch)
	c.logger.InfoContext(ctx, "Challenge joined", log.FieldChallengeID, ch.ID, "definition", def.ID)
	return ch, c.persist(ctx, state.KeyChallenges)
}
