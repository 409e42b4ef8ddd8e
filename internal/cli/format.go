package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount rounds to whole units and adds thousands separators and
// the currency code, e.g. 1234567.6 -> "1,234,568 UGX".
func FormatAmount(d decimal.Decimal, currency string) string {
	s := humanize.Comma(d.Round(0).IntPart())
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// FormatPercent formats a percentage with no decimals.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

// FormatDate formats a date in its own location.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatRelative describes t relative to now, e.g. "3 days ago".
func FormatRelative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
