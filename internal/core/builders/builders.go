// Package builders turns business operations (deposit, withdrawal, supply,
// exchange, transfer, mixed payments) into balanced header+lines drafts.
// Builders are pure: no I/O, no IDs, no timestamps. The lifecycle service
// stamps identity and audit fields and re-validates balance on its own.
package builders

import (
	"fmt"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Draft is the output of a builder: an unsaved header and its posting lines.
// Line numbers are assigned; IDs, reference and audit fields are not.
type Draft struct {
	Header domain.TransactionHeader
	Lines  []domain.PostingLine
}

type lineSet struct {
	lines []domain.PostingLine
}

func (s *lineSet) cash(currency domain.Currency, sense domain.LineSense, amount decimal.Decimal, description string) {
	s.lines = append(s.lines, domain.PostingLine{
		LineNumber:  len(s.lines) + 1,
		WalletType:  domain.WalletCash,
		Currency:    currency,
		Sense:       sense,
		Amount:      amount,
		Description: description,
	})
}

func (s *lineSet) virtual(serviceID string, currency domain.Currency, sense domain.LineSense, amount decimal.Decimal, description string) {
	s.lines = append(s.lines, domain.PostingLine{
		LineNumber:  len(s.lines) + 1,
		WalletType:  domain.WalletVirtual,
		ServiceID:   &serviceID,
		Currency:    currency,
		Sense:       sense,
		Amount:      amount,
		Description: description,
	})
}

func requirePositive(name string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s must be positive, got %s", apperrors.ErrValidation, name, amount.String())
	}
	return nil
}

func requireCurrency(currency domain.Currency) error {
	if !currency.IsValid() {
		return fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, currency)
	}
	return nil
}

func requireService(serviceID string) error {
	if serviceID == "" {
		return fmt.Errorf("%w: service is required", apperrors.ErrValidation)
	}
	return nil
}

// DepositParams describes cash received from a client and credited to a
// partner service's virtual wallet.
type DepositParams struct {
	ServiceID   string
	Currency    domain.Currency
	Amount      decimal.Decimal
	Description string
}

// BuildDeposit produces the two-line deposit posting:
// debit cash, credit the service wallet, same currency and amount.
func BuildDeposit(p DepositParams) (Draft, error) {
	if err := requireService(p.ServiceID); err != nil {
		return Draft{}, err
	}
	if err := requireCurrency(p.Currency); err != nil {
		return Draft{}, err
	}
	if err := requirePositive("amount", p.Amount); err != nil {
		return Draft{}, err
	}

	var s lineSet
	s.cash(p.Currency, domain.Debit, p.Amount, "Espèces reçues")
	s.virtual(p.ServiceID, p.Currency, domain.Credit, p.Amount, describe("Dépôt service", p.Description))

	return Draft{
		Header: domain.TransactionHeader{
			OperationType:     domain.OpDeposit,
			ReferenceCurrency: p.Currency,
			TotalAmount:       p.Amount,
		},
		Lines: s.lines,
	}, nil
}

// WithdrawalParams describes cash paid out to a client from a partner
// service's virtual wallet.
type WithdrawalParams struct {
	ServiceID   string
	Currency    domain.Currency
	Amount      decimal.Decimal
	Description string
}

// BuildWithdrawal is the mirror of BuildDeposit: debit the service wallet,
// credit cash.
func BuildWithdrawal(p WithdrawalParams) (Draft, error) {
	if err := requireService(p.ServiceID); err != nil {
		return Draft{}, err
	}
	if err := requireCurrency(p.Currency); err != nil {
		return Draft{}, err
	}
	if err := requirePositive("amount", p.Amount); err != nil {
		return Draft{}, err
	}

	var s lineSet
	s.virtual(p.ServiceID, p.Currency, domain.Debit, p.Amount, describe("Retrait service", p.Description))
	s.cash(p.Currency, domain.Credit, p.Amount, "Espèces remises")

	return Draft{
		Header: domain.TransactionHeader{
			OperationType:     domain.OpWithdrawal,
			ReferenceCurrency: p.Currency,
			TotalAmount:       p.Amount,
		},
		Lines: s.lines,
	}, nil
}

// SupplyParams describes float entering or leaving the desk
// (approvisionnement), optionally against a service's virtual wallet.
type SupplyParams struct {
	Direction   domain.SupplyDirection
	ServiceID   string // optional; empty means a pure cash adjustment
	Currency    domain.Currency
	Amount      decimal.Decimal
	Description string
}

// BuildSupply balances one cash line (debit on entry, credit on exit) against
// either a virtual-wallet line of opposite sense or, with no service, a second
// cash adjustment line.
func BuildSupply(p SupplyParams) (Draft, error) {
	if err := requireCurrency(p.Currency); err != nil {
		return Draft{}, err
	}
	if err := requirePositive("amount", p.Amount); err != nil {
		return Draft{}, err
	}
	if p.Direction != domain.SupplyEntry && p.Direction != domain.SupplyExit {
		return Draft{}, fmt.Errorf("%w: unknown supply direction %q", apperrors.ErrValidation, p.Direction)
	}

	cashSense := domain.Debit
	label := "Approvisionnement entrée"
	if p.Direction == domain.SupplyExit {
		cashSense = domain.Credit
		label = "Approvisionnement sortie"
	}

	var s lineSet
	s.cash(p.Currency, cashSense, p.Amount, describe(label, p.Description))
	if p.ServiceID != "" {
		s.virtual(p.ServiceID, p.Currency, cashSense.Opposite(), p.Amount, "Contrepartie service")
	} else {
		s.cash(p.Currency, cashSense.Opposite(), p.Amount, "Ajustement caisse")
	}

	return Draft{
		Header: domain.TransactionHeader{
			OperationType:     domain.OpSupply,
			ReferenceCurrency: p.Currency,
			TotalAmount:       p.Amount,
		},
		Lines: s.lines,
	}, nil
}

// ExchangeParams describes a currency exchange with the commission taken in
// the source currency. Rate is destination units per source unit.
type ExchangeParams struct {
	Source     domain.Currency
	Dest       domain.Currency
	Amount     decimal.Decimal // source currency, handed over by the client
	Commission decimal.Decimal // source currency, may be zero
	Rate       decimal.Decimal
}

// BuildExchange produces a per-currency balanced line set. The client hands
// over Amount in the source currency; Commission stays in the till and the
// remainder is converted at Rate and paid out in the destination currency.
// Each currency group is zeroed with an offset cash line so the whole set
// passes the balance validator.
func BuildExchange(p ExchangeParams) (Draft, error) {
	if err := requireCurrency(p.Source); err != nil {
		return Draft{}, err
	}
	if err := requireCurrency(p.Dest); err != nil {
		return Draft{}, err
	}
	if p.Source == p.Dest {
		return Draft{}, fmt.Errorf("%w: exchange requires two distinct currencies", apperrors.ErrValidation)
	}
	if err := requirePositive("amount", p.Amount); err != nil {
		return Draft{}, err
	}
	if p.Commission.IsNegative() {
		return Draft{}, fmt.Errorf("%w: commission cannot be negative", apperrors.ErrValidation)
	}
	net := p.Amount.Sub(p.Commission)
	if net.LessThanOrEqual(decimal.Zero) {
		return Draft{}, fmt.Errorf("%w: commission %s consumes the whole amount %s",
			apperrors.ErrValidation, p.Commission.String(), p.Amount.String())
	}
	converted, err := domain.Convert(net, p.Source, p.Dest, p.Rate)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if converted.LessThanOrEqual(decimal.Zero) {
		return Draft{}, fmt.Errorf("%w: %s %s converts to nothing at rate %s",
			apperrors.ErrValidation, net.String(), p.Source, p.Rate.String())
	}

	var s lineSet
	s.cash(p.Source, domain.Debit, p.Amount, "Devises reçues")
	if p.Commission.IsPositive() {
		s.cash(p.Source, domain.Credit, p.Commission, "Commission de change")
	}
	s.cash(p.Source, domain.Credit, net, "Contre-valeur échangée")
	s.cash(p.Dest, domain.Credit, converted, "Devises remises")
	s.cash(p.Dest, domain.Debit, converted, "Couverture caisse")

	rate := p.Rate
	return Draft{
		Header: domain.TransactionHeader{
			OperationType:     domain.OpExchange,
			ReferenceCurrency: p.Source,
			TotalAmount:       p.Amount,
			ExchangeRate:      &rate,
			CurrencyPair:      domain.Pair(p.Source, p.Dest),
			MultiCurrency:     true,
		},
		Lines: s.lines,
	}, nil
}

// TransferParams describes a same-currency move between two virtual wallets.
type TransferParams struct {
	FromServiceID string
	ToServiceID   string
	Currency      domain.Currency
	Amount        decimal.Decimal
	Description   string
}

// BuildTransfer debits the source service wallet and credits the destination.
func BuildTransfer(p TransferParams) (Draft, error) {
	if err := requireService(p.FromServiceID); err != nil {
		return Draft{}, err
	}
	if err := requireService(p.ToServiceID); err != nil {
		return Draft{}, err
	}
	if p.FromServiceID == p.ToServiceID {
		return Draft{}, fmt.Errorf("%w: transfer requires two distinct services", apperrors.ErrValidation)
	}
	if err := requireCurrency(p.Currency); err != nil {
		return Draft{}, err
	}
	if err := requirePositive("amount", p.Amount); err != nil {
		return Draft{}, err
	}

	var s lineSet
	s.virtual(p.FromServiceID, p.Currency, domain.Debit, p.Amount, describe("Transfert sortant", p.Description))
	s.virtual(p.ToServiceID, p.Currency, domain.Credit, p.Amount, describe("Transfert entrant", p.Description))

	return Draft{
		Header: domain.TransactionHeader{
			OperationType:     domain.OpTransfer,
			ReferenceCurrency: p.Currency,
			TotalAmount:       p.Amount,
		},
		Lines: s.lines,
	}, nil
}

// MixedWithdrawalParams describes a withdrawal paid partly in the request
// currency from available cash, with the remainder converted and paid in the
// other currency. Commission, when charged, is taken in the request currency.
type MixedWithdrawalParams struct {
	ServiceID      string
	RequestCurrency domain.Currency
	PayoutCurrency  domain.Currency
	TotalAmount     decimal.Decimal // request currency
	CashAvailable   decimal.Decimal // request currency, paid from the till
	Commission      decimal.Decimal // request currency, may be zero
	Rate            decimal.Decimal // payout units per request unit
	Description     string
}

// BuildMixedWithdrawal is the most line-dense builder (up to six lines). The
// service wallet is credited for the full requested amount; the client is paid
// CashAvailable in the request currency plus the converted remainder in the
// payout currency. Offset cash debits zero out each currency group.
func BuildMixedWithdrawal(p MixedWithdrawalParams) (Draft, error) {
	if err := requireService(p.ServiceID); err != nil {
		return Draft{}, err
	}
	if err := requireCurrency(p.RequestCurrency); err != nil {
		return Draft{}, err
	}
	if err := requireCurrency(p.PayoutCurrency); err != nil {
		return Draft{}, err
	}
	if p.RequestCurrency == p.PayoutCurrency {
		return Draft{}, fmt.Errorf("%w: mixed withdrawal requires two distinct currencies", apperrors.ErrValidation)
	}
	if err := requirePositive("total amount", p.TotalAmount); err != nil {
		return Draft{}, err
	}
	if p.CashAvailable.IsNegative() || p.Commission.IsNegative() {
		return Draft{}, fmt.Errorf("%w: cash available and commission cannot be negative", apperrors.ErrValidation)
	}
	remainder := p.TotalAmount.Sub(p.CashAvailable)
	if remainder.LessThanOrEqual(decimal.Zero) {
		return Draft{}, fmt.Errorf("%w: available cash %s covers the full amount %s, use a plain withdrawal",
			apperrors.ErrValidation, p.CashAvailable.String(), p.TotalAmount.String())
	}
	converted, err := domain.Convert(remainder, p.RequestCurrency, p.PayoutCurrency, p.Rate)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if converted.LessThanOrEqual(decimal.Zero) {
		return Draft{}, fmt.Errorf("%w: remainder %s %s converts to nothing at rate %s",
			apperrors.ErrValidation, remainder.String(), p.RequestCurrency, p.Rate.String())
	}

	var s lineSet
	s.virtual(p.ServiceID, p.RequestCurrency, domain.Credit, p.TotalAmount,
		describe("Retrait service (paiement mixte)", p.Description))
	requestOffset := p.TotalAmount
	if p.CashAvailable.IsPositive() {
		s.cash(p.RequestCurrency, domain.Credit, p.CashAvailable, "Espèces remises")
		requestOffset = requestOffset.Add(p.CashAvailable)
	}
	if p.Commission.IsPositive() {
		s.cash(p.RequestCurrency, domain.Credit, p.Commission, "Commission")
		requestOffset = requestOffset.Add(p.Commission)
	}
	s.cash(p.RequestCurrency, domain.Debit, requestOffset, "Contrepartie caisse")
	s.cash(p.PayoutCurrency, domain.Credit, converted, "Espèces remises (converties)")
	s.cash(p.PayoutCurrency, domain.Debit, converted, "Contrepartie caisse")

	rate := p.Rate
	return Draft{
		Header: domain.TransactionHeader{
			OperationType:     domain.OpWithdrawal,
			ReferenceCurrency: p.RequestCurrency,
			TotalAmount:       p.TotalAmount,
			ExchangeRate:      &rate,
			CurrencyPair:      domain.Pair(p.RequestCurrency, p.PayoutCurrency),
			MultiCurrency:     true,
		},
		Lines: s.lines,
	}, nil
}

// MixedDepositParams is the deposit mirror of MixedWithdrawalParams: the
// client funds a deposit partly with cash in the request currency and the
// remainder with cash in the other currency, converted at Rate.
type MixedDepositParams struct {
	ServiceID       string
	RequestCurrency domain.Currency
	FundingCurrency domain.Currency
	TotalAmount     decimal.Decimal // request currency
	CashReceived    decimal.Decimal // request currency portion handed over
	Commission      decimal.Decimal // request currency, may be zero
	Rate            decimal.Decimal // funding units per request unit
	Description     string
}

// BuildMixedDeposit credits the service wallet for the full amount; the
// shortfall arrives as cash in the funding currency.
func BuildMixedDeposit(p MixedDepositParams) (Draft, error) {
	if err := requireService(p.ServiceID); err != nil {
		return Draft{}, err
	}
	if err := requireCurrency(p.RequestCurrency); err != nil {
		return Draft{}, err
	}
	if err := requireCurrency(p.FundingCurrency); err != nil {
		return Draft{}, err
	}
	if p.RequestCurrency == p.FundingCurrency {
		return Draft{}, fmt.Errorf("%w: mixed deposit requires two distinct currencies", apperrors.ErrValidation)
	}
	if err := requirePositive("total amount", p.TotalAmount); err != nil {
		return Draft{}, err
	}
	if p.CashReceived.IsNegative() || p.Commission.IsNegative() {
		return Draft{}, fmt.Errorf("%w: cash received and commission cannot be negative", apperrors.ErrValidation)
	}
	remainder := p.TotalAmount.Sub(p.CashReceived)
	if remainder.LessThanOrEqual(decimal.Zero) {
		return Draft{}, fmt.Errorf("%w: cash received %s covers the full amount %s, use a plain deposit",
			apperrors.ErrValidation, p.CashReceived.String(), p.TotalAmount.String())
	}
	converted, err := domain.Convert(remainder, p.RequestCurrency, p.FundingCurrency, p.Rate)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if converted.LessThanOrEqual(decimal.Zero) {
		return Draft{}, fmt.Errorf("%w: remainder %s %s converts to nothing at rate %s",
			apperrors.ErrValidation, remainder.String(), p.RequestCurrency, p.Rate.String())
	}

	var s lineSet
	s.virtual(p.ServiceID, p.RequestCurrency, domain.Credit, p.TotalAmount,
		describe("Dépôt service (paiement mixte)", p.Description))
	requestDebits := decimal.Zero
	if p.CashReceived.IsPositive() {
		s.cash(p.RequestCurrency, domain.Debit, p.CashReceived, "Espèces reçues")
		requestDebits = requestDebits.Add(p.CashReceived)
	}
	if p.Commission.IsPositive() {
		s.cash(p.RequestCurrency, domain.Credit, p.Commission, "Commission")
	}
	offset := p.TotalAmount.Add(p.Commission).Sub(requestDebits)
	s.cash(p.RequestCurrency, domain.Debit, offset, "Contrepartie caisse")
	s.cash(p.FundingCurrency, domain.Debit, converted, "Espèces reçues (converties)")
	s.cash(p.FundingCurrency, domain.Credit, converted, "Contrepartie caisse")

	rate := p.Rate
	return Draft{
		Header: domain.TransactionHeader{
			OperationType:     domain.OpDeposit,
			ReferenceCurrency: p.RequestCurrency,
			TotalAmount:       p.TotalAmount,
			ExchangeRate:      &rate,
			CurrencyPair:      domain.Pair(p.RequestCurrency, p.FundingCurrency),
			MultiCurrency:     true,
		},
		Lines: s.lines,
	}, nil
}

func describe(label, detail string) string {
	if detail == "" {
		return label
	}
	return label + " - " + detail
}
