package stats

import (
	"github.com/shopspring/decimal"

	"github.com/julianstephens/quitlog/internal/constants"
)

// FormatMoney renders amount with the currency's symbol and two decimals.
func FormatMoney(amount float64, currency string) string {
	return constants.CurrencySymbol(currency) + decimal.NewFromFloat(amount).StringFixed(2)
}
