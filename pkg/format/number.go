// Package format converts between raw user input and normalized numeric
// answers, and renders amounts with locale digit grouping.
package format

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders integers with Korean-locale digit grouping. The interview
// collects KRW amounts, so grouping follows ko-KR (comma every three digits).
var printer = message.NewPrinter(language.Korean)

// NormalizeNumeric strips every non-digit character from raw and parses the
// remainder as a base-10 integer. It never fails: input without digits
// normalizes to 0, which callers treat as "no value entered" rather than an
// error.
func NormalizeNumeric(raw string) int64 {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// Only reachable on overflow; saturate rather than fail.
		return int64(^uint64(0) >> 1)
	}
	return n
}

// DisplayNumeric renders n as a locale-grouped decimal string.
// NormalizeNumeric(DisplayNumeric(n)) == n for all non-negative n.
func DisplayNumeric(n int64) string {
	return printer.Sprintf("%d", n)
}

// DisplayWon renders n as a grouped amount with the KRW suffix, the form
// participant answers are echoed in.
func DisplayWon(n int64) string {
	return DisplayNumeric(n) + "원"
}
