// Package ledger holds the pure double-entry checks shared by services and
// repositories so the same balancing logic runs everywhere.
package ledger

import (
	"fmt"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Totals carries the debit and credit sums for one currency group.
type Totals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// CurrencyTotals groups lines by currency and sums each side.
func CurrencyTotals(lines []domain.PostingLine) map[domain.Currency]Totals {
	totals := make(map[domain.Currency]Totals)
	for _, line := range lines {
		t := totals[line.Currency]
		if line.Sense == domain.Debit {
			t.Debit = t.Debit.Add(line.Amount)
		} else {
			t.Credit = t.Credit.Add(line.Amount)
		}
		totals[line.Currency] = t
	}
	return totals
}

// ValidateBalance checks that a line set forms a valid double-entry posting:
// at least two lines, every amount strictly positive, and for every currency
// present, sum(debits) == sum(credits) within domain.Tolerance.
//
// The check is pure and must run before any persistence attempt. The lifecycle
// manager re-runs it on every create regardless of which builder (or caller)
// produced the lines.
func ValidateBalance(lines []domain.PostingLine) error {
	if len(lines) < 2 {
		return apperrors.ErrInsufficientLines
	}

	for _, line := range lines {
		if err := ValidateLine(line); err != nil {
			return err
		}
	}

	for currency, t := range CurrencyTotals(lines) {
		if t.Debit.Sub(t.Credit).Abs().GreaterThan(domain.Tolerance) {
			return fmt.Errorf("%w: currency %s has debits %s and credits %s",
				apperrors.ErrLedgerImbalance, currency, t.Debit.String(), t.Credit.String())
		}
	}
	return nil
}

// ValidateLine checks a single posting line: strictly positive amount, a
// supported currency, and a service on virtual-wallet lines. Draft line edits
// run this on its own since a draft may stay unbalanced until validation.
func ValidateLine(line domain.PostingLine) error {
	if line.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: line %d amount must be positive, got %s",
			apperrors.ErrValidation, line.LineNumber, line.Amount.String())
	}
	if !line.Currency.IsValid() {
		return fmt.Errorf("%w: line %d has unsupported currency %q",
			apperrors.ErrValidation, line.LineNumber, line.Currency)
	}
	if line.WalletType == domain.WalletVirtual && (line.ServiceID == nil || *line.ServiceID == "") {
		return fmt.Errorf("%w: line %d targets a virtual wallet without a service",
			apperrors.ErrValidation, line.LineNumber)
	}
	return nil
}

// DistinctCurrencies returns the number of currencies a line set spans.
func DistinctCurrencies(lines []domain.PostingLine) int {
	seen := make(map[domain.Currency]struct{}, 2)
	for _, line := range lines {
		seen[line.Currency] = struct{}{}
	}
	return len(seen)
}
