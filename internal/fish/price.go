package fish

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatPrice renders cents as US currency, e.g. 123456 -> "$1,234.56".
func FormatPrice(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(int64(cents/100)), cents%100)
}

// ParsePrice accepts integer cents ("1724") or a dollar amount ("$17.24",
// "17.24", "1,234.5") and returns cents.
func ParsePrice(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "$")
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	if trimmed == "" {
		return 0, fmt.Errorf("price is empty")
	}
	if strings.HasPrefix(trimmed, "-") {
		return 0, fmt.Errorf("price %q is negative", value)
	}

	whole, frac, hasDot := strings.Cut(trimmed, ".")
	if !digits(whole) || !digits(frac) {
		return 0, fmt.Errorf("price %q is not a number", value)
	}
	if hasDot && whole == "" && frac == "" {
		return 0, fmt.Errorf("price %q is not a number", value)
	}
	if !hasDot && !strings.HasPrefix(strings.TrimSpace(value), "$") {
		cents, err := strconv.Atoi(whole)
		if err != nil {
			return 0, fmt.Errorf("parse price %q: %w", value, err)
		}
		return cents, nil
	}

	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.Atoi(whole)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", value, err)
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, fmt.Errorf("price %q has more than two decimals", value)
	}
	c, err := strconv.Atoi(frac)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", value, err)
	}
	return dollars*100 + c, nil
}

// digits reports whether s holds only ASCII digits. The empty string passes.
func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
