// Package format escapes user-provided text for the HTML parse mode and renders money.
package format

import (
	"fmt"
	"html"
)

// EscapeHTML escapes text for the HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Money renders an amount in minor units, e.g. Money(45000, "RUB") == "450.00 RUB".
func Money(minor int64, currency string) string {
	if currency == "" {
		return Decimal(minor)
	}
	return Decimal(minor) + " " + currency
}

// Decimal renders minor units as a plain decimal string such as "450.00".
func Decimal(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
