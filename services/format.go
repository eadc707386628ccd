package services

import (
	"fmt"
	"strings"
)

// FormatTRY formats an amount in Turkish lira notation: dot as the thousands
// separator, comma as the decimal separator, currency symbol appended
// (e.g. 1.234.567,89 ₺). Always exactly 2 decimal places.
func FormatTRY(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)

	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := groupThousands(intPart) + "," + decPart + " ₺"
	if negative {
		result = "-" + result
	}
	return result
}

// FormatAmount formats an amount in its native currency: TRY in Turkish
// notation, USD/EUR with the symbol prefixed and the same separators
// (catalog prices are entered and displayed the Turkish way regardless of
// currency).
func FormatAmount(amount float64, currency Currency) string {
	switch currency {
	case USD:
		return "$" + strings.TrimSuffix(FormatTRY(amount), " ₺")
	case EUR:
		return "€" + strings.TrimSuffix(FormatTRY(amount), " ₺")
	}
	return FormatTRY(amount)
}

// groupThousands inserts dots into an integer string every 3 digits from the
// right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]

	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "." + result
		remaining = remaining[:len(remaining)-3]
	}
	if len(remaining) > 0 {
		result = remaining + "." + result
	}

	return result
}
