// Package reportcalc holds the pure calculations behind the
// receivables and revenue reports.
package reportcalc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Resolutions accepted by the profit and loss report.
const (
	ResolutionMonth   = "m"
	ResolutionQuarter = "q"
	ResolutionYear    = "y"
)

// DSO returns days sales outstanding: the receivables balance expressed
// as days of revenue over a period of the given length, rounded half-up
// to one decimal place. The second return is false when revenue is zero
// or negative, where the ratio is undefined.
func DSO(ar, revenue decimal.Decimal, days int) (decimal.Decimal, bool) {
	if revenue.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, false
	}
	dso := ar.Div(revenue).Mul(decimal.NewFromInt(int64(days)))
	return dso.Round(1), true
}

// DaysInPeriod returns the calendar length of the period containing the
// given year and month at the given resolution. Quarters cover the
// three months starting at the quarter boundary the month falls in;
// years are leap aware. An unrecognized resolution is a programming
// error and panics.
func DaysInPeriod(year int, month time.Month, resolution string) int {
	switch resolution {
	case ResolutionMonth:
		return daysInMonth(year, month)
	case ResolutionQuarter:
		start := quarterStart(month)
		days := 0
		for i := 0; i < 3; i++ {
			days += daysInMonth(year, start+time.Month(i))
		}
		return days
	case ResolutionYear:
		if isLeapYear(year) {
			return 366
		}
		return 365
	}
	panic(fmt.Sprintf("reportcalc: unknown resolution %q", resolution))
}

// PeriodLabel formats the start of a report period at the given
// resolution, e.g. "Jan 2026", "Q1 2026", "2026".
func PeriodLabel(start time.Time, resolution string) string {
	switch resolution {
	case ResolutionMonth:
		return start.Format("Jan 2006")
	case ResolutionQuarter:
		quarter := (int(start.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", quarter, start.Year())
	case ResolutionYear:
		return fmt.Sprintf("%d", start.Year())
	}
	panic(fmt.Sprintf("reportcalc: unknown resolution %q", resolution))
}

// quarterStart returns the first month of the quarter containing m.
func quarterStart(m time.Month) time.Month {
	return time.Month((int(m)-1)/3*3 + 1)
}

// daysInMonth uses the day-zero normalization of time.Date: day 0 of
// the following month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
