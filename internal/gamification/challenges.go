package gamification

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
)

// Window is the slice of the ledger a challenge is measured against. It is
// made of whole calendar days, from the start date's day through the day of
// the earlier of EndDate and now, so a day is always judged on everything
// spent that day, including entries logged before the challenge was joined.
type Window struct {
	Start       time.Time
	End         time.Time
	Expenses    []core.Expense
	DailyBudget decimal.Decimal
	// ClosedDays are the window's calendar days that are over: every day
	// before today, or every day once the challenge has ended.
	ClosedDays []time.Time
	// Days are all calendar days the window touches, today included.
	Days []time.Time
}

// NewWindow builds the measuring window of c at now.
func NewWindow(c core.Challenge, expenses []core.Expense, monthlyBudget decimal.Decimal, now time.Time) Window {
	end := c.EndDate
	ended := now.After(c.EndDate)
	if !ended {
		end = now
	}
	loc := now.Location()
	days := ledger.DaysBetween(c.StartDate, end, loc)

	var closed []time.Time
	today := ledger.StartOfDay(now.In(loc))
	for _, d := range days {
		if ended || d.Before(today) {
			closed = append(closed, d)
		}
	}

	from, to := c.StartDate, end
	if len(days) > 0 {
		from = days[0]
		to = days[len(days)-1].AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return Window{
		Start:       from,
		End:         to,
		Expenses:    ledger.ExpensesBetween(expenses, from, to),
		DailyBudget: budget.DailyBudget(monthlyBudget),
		ClosedDays:  closed,
		Days:        days,
	}
}

// spentOn sums window entries falling on day.
func (w Window) spentOn(day time.Time) (decimal.Decimal, int) {
	es := ledger.ExpensesOnDay(w.Expenses, day)
	return ledger.SumAmounts(es), len(es)
}

// ProgressEvaluator computes a challenge's progress from its window.
type ProgressEvaluator interface {
	Progress(c core.Challenge, w Window) decimal.Decimal
}

// LoggingEvaluator counts distinct days with at least one expense.
type LoggingEvaluator struct{}

func (LoggingEvaluator) Progress(_ core.Challenge, w Window) decimal.Decimal {
	n := 0
	for _, d := range w.Days {
		if _, count := w.spentOn(d); count > 0 {
			n++
		}
	}
	return decimal.NewFromInt(int64(n))
}

// DailyBudgetEvaluator counts closed days that stayed under the daily budget.
type DailyBudgetEvaluator struct{}

func (DailyBudgetEvaluator) Progress(_ core.Challenge, w Window) decimal.Decimal {
	n := 0
	for _, d := range w.ClosedDays {
		spent, _ := w.spentOn(d)
		if budget.IsUnderDailyBudget(spent, w.DailyBudget) {
			n++
		}
	}
	return decimal.NewFromInt(int64(n))
}

// CategoryLimitEvaluator totals spend in the challenge's category.
type CategoryLimitEvaluator struct{}

func (CategoryLimitEvaluator) Progress(c core.Challenge, w Window) decimal.Decimal {
	return ledger.SumAmounts(ledger.ExpensesInCategory(w.Expenses, c.Category))
}

// NoSpendEvaluator is 1 once any closed day had no expense.
type NoSpendEvaluator struct{}

func (NoSpendEvaluator) Progress(_ core.Challenge, w Window) decimal.Decimal {
	for _, d := range w.ClosedDays {
		if _, count := w.spentOn(d); count == 0 {
			return decimal.NewFromInt(1)
		}
	}
	return decimal.Zero
}

// WeeklySavingsEvaluator is the daily allowance left unspent over closed days.
type WeeklySavingsEvaluator struct{}

func (WeeklySavingsEvaluator) Progress(_ core.Challenge, w Window) decimal.Decimal {
	allowance := w.DailyBudget.Mul(decimal.NewFromInt(int64(len(w.ClosedDays))))
	spent := decimal.Zero
	for _, d := range w.ClosedDays {
		s, _ := w.spentOn(d)
		spent = spent.Add(s)
	}
	saved := allowance.Sub(spent)
	if saved.IsNegative() {
		return decimal.Zero
	}
	return saved
}

var progressEvaluators = map[core.ChallengeType]ProgressEvaluator{
	core.ExpenseLogging: LoggingEvaluator{},
	core.DailyBudget:    DailyBudgetEvaluator{},
	core.CategoryLimit:  CategoryLimitEvaluator{},
	core.NoSpendDay:     NoSpendEvaluator{},
	core.WeeklySavings:  WeeklySavingsEvaluator{},
}

// GetProgressEvaluator returns the evaluator registered for a challenge type.
func GetProgressEvaluator(t core.ChallengeType) (ProgressEvaluator, error) {
	e, ok := progressEvaluators[t]
	if !ok {
		return nil, fmt.Errorf("unknown challenge type: %s", t)
	}
	return e, nil
}

// ChallengeOutcome reports what a single evaluation changed.
type ChallengeOutcome struct {
	Challenge core.Challenge
	Completed bool // transitioned to completed in this evaluation
	Expired   bool // transitioned to expired in this evaluation
}

// EvaluateChallenge recomputes c's progress at now and applies at most one
// transition. Completed or inactive challenges are returned untouched.
//
// Count-up types complete as soon as progress reaches the target. A
// category_limit challenge completes only after its window has ended and
// only if the category total stayed below the target. Once now is past the
// end date the window is fixed, so the first evaluation after the end is
// final: it either completes the challenge or expires it.
func EvaluateChallenge(c core.Challenge, expenses []core.Expense, monthlyBudget decimal.Decimal, now time.Time) (ChallengeOutcome, error) {
	if c.IsCompleted || !c.IsActive {
		return ChallengeOutcome{Challenge: c}, nil
	}
	eval, err := GetProgressEvaluator(c.Type)
	if err != nil {
		return ChallengeOutcome{Challenge: c}, err
	}

	w := NewWindow(c, expenses, monthlyBudget, now)
	c.CurrentProgress = eval.Progress(c, w)
	ended := now.After(c.EndDate)

	var met bool
	if c.Type.CountsUp() {
		met = c.CurrentProgress.GreaterThanOrEqual(c.Target)
	} else {
		met = ended && c.CurrentProgress.LessThan(c.Target)
	}

	switch {
	case met:
		at := now
		c.IsCompleted = true
		c.IsActive = false
		c.CompletedAt = &at
		return ChallengeOutcome{Challenge: c, Completed: true}, nil
	case ended:
		c.IsActive = false
		return ChallengeOutcome{Challenge: c, Expired: true}, nil
	}
	return ChallengeOutcome{Challenge: c}, nil
}

// ProgressRatio is progress/target clamped to [0, 1] for display. For a
// category_limit challenge it is the share of the cap already spent.
func ProgressRatio(c core.Challenge) float64 {
	if !c.Target.IsPositive() {
		return 0
	}
	r, _ := c.CurrentProgress.Div(c.Target).Float64()
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}
