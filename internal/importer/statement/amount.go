package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a Brazilian formatted amount: "1.234,56", "-588,74", "R$ 10,00" or "(25,00)".
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(strings.ReplaceAll(s, "R$", ""))

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = strings.Trim(clean, "()")
	}

	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, err
	}

	if negative {
		d = d.Neg()
	}

	return d.Round(2), nil
}
