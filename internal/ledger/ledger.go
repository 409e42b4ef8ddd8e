// Package ledger derives totals and time-windowed slices from the expense
// ledger. Every function is pure and preserves ledger order.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// ExpensesInMonth keeps entries whose date, read in loc, falls in year/month.
func ExpensesInMonth(ledger []core.Expense, year int, month time.Month, loc *time.Location) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range ledger {
		d := e.Date.In(loc)
		if d.Year() == year && d.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

// ExpensesOnDay keeps entries on the same calendar day as day, read in day's location.
func ExpensesOnDay(ledger []core.Expense, day time.Time) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range ledger {
		if SameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// ExpensesBetween keeps entries with from <= date <= to.
func ExpensesBetween(ledger []core.Expense, from, to time.Time) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range ledger {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out
}

// ExpensesInCategory keeps entries of one category.
func ExpensesInCategory(ledger []core.Expense, c core.ExpenseCategory) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range ledger {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

func SumAmounts(expenses []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// CategoryBreakdown sums amounts per category present in expenses, ranked
// by amount descending. Equal amounts keep the order in which the category
// first appeared.
func CategoryBreakdown(expenses []core.Expense) []core.CategoryAmount {
	index := make(map[core.ExpenseCategory]int)
	out := make([]core.CategoryAmount, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategoryAmount{Category: e.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// TopCategories returns at most n entries of CategoryBreakdown.
func TopCategories(expenses []core.Expense, n int) []core.CategoryAmount {
	b := CategoryBreakdown(expenses)
	if n >= 0 && len(b) > n {
		b = b[:n]
	}
	return b
}

// DailyTotals groups expenses by calendar day in loc, oldest day first.
// Days without expenses are not listed.
func DailyTotals(expenses []core.Expense, loc *time.Location) []core.DayTotal {
	index := make(map[string]int)
	out := make([]core.DayTotal, 0)
	for _, e := range expenses {
		day := StartOfDay(e.Date.In(loc))
		key := DayKey(day)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, core.DayTotal{Day: day, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

// SameDay compares calendar fields with a read in b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay is local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey formats t's calendar day as YYYY-MM-DD in t's location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DaysBetween lists local midnights from from's day through to's day,
// read in loc. It is empty when to is before from.
func DaysBetween(from, to time.Time, loc *time.Location) []time.Time {
	first := StartOfDay(from.In(loc))
	last := StartOfDay(to.In(loc))
	out := make([]time.Time, 0)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
