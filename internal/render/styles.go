// Package render holds the terminal presentation helpers shared by the
// commands: lipgloss styles, money and percentage formatting, and CSV
// export plumbing.
package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	// Header styles table headers and section titles.
	Header = lipgloss.NewStyle().Bold(true)
	// Dim marks rows with nothing actionable (zero balances, N/A).
	Dim = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	// Good, Warn, Alert, and Bad grade values from healthy to overdue.
	Good  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))  // green
	Warn  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))  // yellow
	Alert = lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // orange
	Bad   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))   // red
)

// DSOStyle grades a days-sales-outstanding value: green under 30 days,
// yellow under 45, orange under 60, red from 60 up.
func DSOStyle(dso decimal.Decimal) lipgloss.Style {
	switch {
	case dso.LessThan(decimal.NewFromInt(30)):
		return Good
	case dso.LessThan(decimal.NewFromInt(45)):
		return Warn
	case dso.LessThan(decimal.NewFromInt(60)):
		return Alert
	default:
		return Bad
	}
}

// ProfitStyle colors an amount by sign: green for gains, red for
// losses, dim for break-even.
func ProfitStyle(amount decimal.Decimal) lipgloss.Style {
	switch {
	case amount.IsPositive():
		return Good
	case amount.IsNegative():
		return Bad
	default:
		return Dim
	}
}
