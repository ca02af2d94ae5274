package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const MaxPriceCents = 99999

var pricePattern = regexp.MustCompile(`^[0-9]{0,3}(\.[0-9]{0,2})?$`)

// ParsePrice converts a dollar amount such as "12.5" into cents. It accepts
// at most three integer digits and two decimals, and no sign or currency symbol.
func ParsePrice(raw string) (int64, bool) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "$")
	if raw == "" || raw == "." || !pricePattern.MatchString(raw) {
		return 0, false
	}

	whole, frac, _ := strings.Cut(raw, ".")
	if whole == "" {
		whole = "0"
	}
	frac = (frac + "00")[:2]

	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, false
	}
	total := dollars*100 + cents
	if total > MaxPriceCents {
		return 0, false
	}
	return total, true
}

// FormatPrice renders cents as a plain decimal, e.g. 1250 -> "12.50".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatCurrency renders cents for display, e.g. 1250 -> "$12.50".
func FormatCurrency(cents int64) string {
	if cents < 0 {
		return "-$" + FormatPrice(-cents)
	}
	return "$" + FormatPrice(cents)
}
