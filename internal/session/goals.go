package session

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/gamification"
	"spendwise/internal/log"
	"spendwise/internal/notify"
	"spendwise/internal/state"
)

func (c *Controller) AddSavingsGoal(ctx context.Context, title string, target decimal.Decimal, targetDate time.Time) (core.SavingsGoal, error) {
	if c.profile == nil {
		return core.SavingsGoal{}, ErrNoProfile
	}
	g, err := core.NewSavingsGoal(title, target, targetDate, c.now())
	if err != nil {
		return core.SavingsGoal{}, err
	}
	c.profile.SavingsGoals = append(c.profile.SavingsGoals, g)
	c.logger.InfoContext(ctx, "Savings goal added", log.FieldGoalID, g.ID)
	return g, c.persist(ctx, state.KeyProfile)
}

// ContributeToGoal adds a positive amount to a goal. Reaching the target
// marks the goal completed and grants its savings badge once; further
// contributions are still accepted.
func (c *Controller) ContributeToGoal(ctx context.Context, goalID string, amount decimal.Decimal) (core.SavingsGoal, error) {
	if c.profile == nil {
		return core.SavingsGoal{}, ErrNoProfile
	}
	if !amount.IsPositive() {
		return core.SavingsGoal{}, &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}
	idx := -1
	for i, g := range c.profile.SavingsGoals {
		if g.ID == goalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.SavingsGoal{}, ErrUnknownGoal
	}

	now := c.now()
	g := &c.profile.SavingsGoals[idx]
	wasCompleted := g.IsCompleted
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.IsCompleted = g.Reached()

	var events []notify.Event
	if g.IsCompleted && !wasCompleted {
		e := c.event(notify.KindGoalReached, g.Title, now)
		events = append(events, e)
		events = c.grant(events, gamification.GoalBadge(*g, now))
		c.logger.InfoContext(ctx, "Savings goal reached", log.FieldGoalID, g.ID)
	}
	out := *g

	perr := c.persist(ctx, state.KeyProfile)
	c.dispatch(ctx, events)
	return out, perr
}

func cloneProfile(p core.Profile) core.Profile {
	p.Badges = append([]core.Badge{}, p.Badges...)
	p.SavingsGoals = append([]core.SavingsGoal{}, p.SavingsGoals...)
	return p
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
