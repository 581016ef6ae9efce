package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a money cell in the given format, ignoring currency codes and spaces.
// "1.234,56" (European) and "1,234.56" (plain) both yield 1234.56.
func parseAmount(s string, format numberFormat) (decimal.Decimal, error) {
	clean := strings.ToUpper(strings.TrimSpace(s))
	for _, code := range []string{"KES", "KSH", "UGX", "TZS", "EUR", "USD"} {
		clean = strings.TrimPrefix(clean, code)
		clean = strings.TrimSuffix(clean, code)
	}

	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")

	switch format {
	case numberEuropean:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	default:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
