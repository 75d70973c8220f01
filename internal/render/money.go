package render

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer groups thousands the en-US way ("1,850.00").
var printer = message.NewPrinter(language.AmericanEnglish)

// Money formats an amount as dollars with thousands grouping, e.g.
// "$1,850.00". Negative amounts carry a leading minus.
func Money(d decimal.Decimal) string {
	f, _ := d.Abs().Round(2).Float64()
	s := printer.Sprintf("$%.2f", f)
	if d.IsNegative() {
		return "-" + s
	}
	return s
}

// Hours formats an hour count to one decimal place.
func Hours(d decimal.Decimal) string {
	return d.StringFixed(1)
}

// Percent formats a percentage to one decimal place with a % suffix.
func Percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}
