package core

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatCount renders n with thousands separators, e.g. 12,345.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}
