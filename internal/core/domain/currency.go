package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is one of the two currencies the cash desk operates in.
type Currency string

const (
	USD Currency = "USD"
	CDF Currency = "CDF"
)

// Tolerance is the epsilon used for monetary equality checks. Converted amounts
// are rounded to two decimals, so per-currency balance comparisons absorb up to
// one cent of rounding drift.
var Tolerance = decimal.RequireFromString("0.01")

// Currencies lists every supported currency. Partner services get one virtual
// wallet per entry.
var Currencies = []Currency{USD, CDF}

// ParseCurrency validates a currency code string.
func ParseCurrency(code string) (Currency, error) {
	switch Currency(code) {
	case USD, CDF:
		return Currency(code), nil
	}
	return "", fmt.Errorf("unsupported currency code %q", code)
}

// IsValid reports whether c is a supported currency.
func (c Currency) IsValid() bool {
	return c == USD || c == CDF
}

// Pair renders a currency pair label such as "USD/CDF".
func Pair(src, dst Currency) string {
	return string(src) + "/" + string(dst)
}

// AmountsEqual compares two amounts within Tolerance.
func AmountsEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Convert converts amount from src to dst at the given rate, defined as units of
// destination currency per unit of source currency. A same-currency conversion is
// the identity. The result is rounded to two decimals.
func Convert(amount decimal.Decimal, src, dst Currency, rate decimal.Decimal) (decimal.Decimal, error) {
	if src == dst {
		return amount, nil
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("exchange rate must be positive, got %s", rate.String())
	}
	return amount.Mul(rate).Round(2), nil
}
