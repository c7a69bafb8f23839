package money

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Format renders an amount with the currency symbol and grouped thousands,
// e.g. Format(5650, "USD") == "$5,650.00". Codes without a known symbol are
// prefixed verbatim.
func Format(amount float64, code string) string {
	sym, ok := symbols[strings.ToUpper(code)]
	if !ok {
		sym = strings.ToUpper(code) + " "
	}
	return printer.Sprintf("%s%v", sym,
		number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Utilization is spend as a percentage of limit. A zero limit yields 0 so
// empty fleets never divide by zero.
func Utilization(spent, limit float64) float64 {
	if limit == 0 {
		return 0
	}
	return spent / limit * 100
}

// Capitalize upper-cases the first letter, used when rendering enum-style
// values ("pending" -> "Pending").
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
