// Package money formats monetary amounts for chat replies.
//
// CLP renders as an integer with '.' as thousands separator ($15.000);
// USD renders with ',' as thousands separator and two decimals ($1,234.56).
// Other currencies fall back to a plain two-decimal rendering with the
// currency code suffixed.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format returns the human-readable rendering of amount in currency.
func Format(amount float64, currency string) string {
	switch currency {
	case "CLP":
		return "$" + groupDigits(strconv.FormatInt(int64(math.Round(amount)), 10), ".")
	case "USD":
		s := strconv.FormatFloat(amount, 'f', 2, 64)
		intPart, fracPart, _ := strings.Cut(s, ".")
		return "$" + groupDigits(intPart, ",") + "." + fracPart
	default:
		return fmt.Sprintf("%.2f %s", amount, currency)
	}
}

// groupDigits inserts sep every three digits from the right.
func groupDigits(digits, sep string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	if len(digits) <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
