// Package budget evaluates a month's spending against the profile budget.
package budget

import (
	"github.com/shopspring/decimal"
)

// DaysPerMonth is the fixed divisor behind the daily allowance. It does not
// follow the real length of the current month.
const DaysPerMonth = 30

// Status is a qualitative band over the percentage of budget used.
type Status string

const (
	OnTrack    Status = "on_track"
	Mindful    Status = "mindful"
	NearLimit  Status = "near_limit"
	OverBudget Status = "over_budget"
)

var hundred = decimal.NewFromInt(100)

// Summary is the budget state for one month.
type Summary struct {
	Budget         decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	PercentageUsed float64
	Status         Status
	DailyBudget    decimal.Decimal
}

// Remaining may be negative once spending passes the budget.
func Remaining(budget, spent decimal.Decimal) decimal.Decimal {
	return budget.Sub(spent)
}

// PercentageUsed is spent/budget*100, or 0 when there is no positive budget.
func PercentageUsed(budget, spent decimal.Decimal) float64 {
	if !budget.IsPositive() {
		return 0
	}
	pct, _ := spent.Div(budget).Mul(hundred).Float64()
	return pct
}

// StatusFor maps a percentage onto its band. Each bound belongs to the
// lower band, so exactly 50 is on_track and exactly 100 is near_limit.
func StatusFor(percentageUsed float64) Status {
	switch {
	case percentageUsed <= 50:
		return OnTrack
	case percentageUsed <= 80:
		return Mindful
	case percentageUsed <= 100:
		return NearLimit
	default:
		return OverBudget
	}
}

func DailyBudget(monthlyBudget decimal.Decimal) decimal.Decimal {
	if !monthlyBudget.IsPositive() {
		return decimal.Zero
	}
	return monthlyBudget.Div(decimal.NewFromInt(DaysPerMonth))
}

// IsUnderDailyBudget holds vacuously when no daily budget is configured.
func IsUnderDailyBudget(todaySpend, dailyBudget decimal.Decimal) bool {
	if !dailyBudget.IsPositive() {
		return true
	}
	return todaySpend.LessThanOrEqual(dailyBudget)
}

// Evaluate combines the derived values for a month's total spend.
func Evaluate(monthlyBudget, spent decimal.Decimal) Summary {
	pct := PercentageUsed(monthlyBudget, spent)
	return Summary{
		Budget:         monthlyBudget,
		Spent:          spent,
		Remaining:      Remaining(monthlyBudget, spent),
		PercentageUsed: pct,
		Status:         StatusFor(pct),
		DailyBudget:    DailyBudget(monthlyBudget),
	}
}

func (s Status) String() string {
	return string(s)
}

// Label is the human-readable band name.
func (s Status) Label() string {
	switch s {
	case OnTrack:
		return "On track"
	case Mindful:
		return "Be mindful"
	case NearLimit:
		return "Near limit"
	case OverBudget:
		return "Over budget"
	default:
		return string(s)
	}
}
