package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category ExpenseCategory
	Amount   decimal.Decimal
}

// DayTotal is the spend and entry count for one calendar day.
type DayTotal struct {
	Day    time.Time // local midnight
	Amount decimal.Decimal
	Count  int
}
