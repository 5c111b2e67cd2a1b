package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with the locale symbol and grouping for the
// given currency, e.g. "$1,234.50" or "FC25,000.00". Used on receipts and in
// API display fields; ledger arithmetic stays on decimal.Decimal.
func FormatAmount(amount decimal.Decimal, currency domain.Currency) string {
	cur := money.GetCurrency(string(currency))
	if cur == nil {
		return amount.StringFixed(2) + " " + string(currency)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
