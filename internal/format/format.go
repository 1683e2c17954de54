// Package format renders values for people, in the storefront's locale.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Vietnamese)

// VND formats an amount of Vietnamese dong, e.g. "100.000 ₫". The dong has
// no minor unit, so amounts are rounded to whole dong.
func VND(d decimal.Decimal) string {
	return printer.Sprintf("%d ₫", d.Round(0).IntPart())
}
