package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction header.
type TransactionStatus string

const (
	StatusDraft     TransactionStatus = "DRAFT"
	StatusValidated TransactionStatus = "VALIDATED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// OperationType identifies the business operation a header records.
type OperationType string

const (
	OpDeposit    OperationType = "DEPOSIT"
	OpWithdrawal OperationType = "WITHDRAWAL"
	OpSupply     OperationType = "SUPPLY"
	OpExchange   OperationType = "EXCHANGE"
	OpTransfer   OperationType = "TRANSFER"
)

// WalletType discriminates the wallet a posting line hits: the shared cash pool
// for a currency, or a partner service's virtual balance.
type WalletType string

const (
	WalletCash    WalletType = "CASH"
	WalletVirtual WalletType = "VIRTUAL"
)

// LineSense indicates whether a posting line is a debit or a credit.
type LineSense string

const (
	Debit  LineSense = "DEBIT"
	Credit LineSense = "CREDIT"
)

// Opposite returns the inverted sense, used by the correction flow.
func (s LineSense) Opposite() LineSense {
	if s == Debit {
		return Credit
	}
	return Debit
}

// PostingLine is a single debit or credit entry within a transaction header.
// Amount is always positive; direction is carried by Sense.
type PostingLine struct {
	LineID        string          `json:"lineID"`
	TransactionID string          `json:"transactionID"`
	LineNumber    int             `json:"lineNumber"` // 1-based, presentation order
	WalletType    WalletType      `json:"walletType"`
	ServiceID     *string         `json:"serviceID,omitempty"` // set iff WalletType == VIRTUAL
	Currency      Currency        `json:"currency"`
	Sense         LineSense       `json:"sense"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	AuditFields
}

// TransactionHeader is the business-level record of one transaction. It owns its
// posting lines; lines live and die with the header and may only be edited while
// the header is in DRAFT.
type TransactionHeader struct {
	TransactionID     string            `json:"transactionID"`
	Reference         string            `json:"reference"` // business-readable, unique
	OperationType     OperationType     `json:"operationType"`
	ReferenceCurrency Currency          `json:"referenceCurrency"`
	TotalAmount       decimal.Decimal   `json:"totalAmount"`
	Status            TransactionStatus `json:"status"`
	ExchangeRate      *decimal.Decimal  `json:"exchangeRate,omitempty"` // exchange-bearing operations only
	CurrencyPair      string            `json:"currencyPair,omitempty"`
	MultiCurrency     bool              `json:"multiCurrency"` // set by mixed/exchange builders; blocks correction

	// Correction linkage. A correction header points back at its original; a
	// cancelled original points forward at the correction that reversed it.
	OriginalTransactionID   *string `json:"originalTransactionID,omitempty"`
	CorrectionTransactionID *string `json:"correctionTransactionID,omitempty"`
	CorrectionReason        string  `json:"correctionReason,omitempty"`

	ValidatedBy *string    `json:"validatedBy,omitempty"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty"`
	AuditFields

	Lines []PostingLine `json:"lines,omitempty"`
}

// IsDraft reports whether the header can still be mutated.
func (h *TransactionHeader) IsDraft() bool {
	return h.Status == StatusDraft
}
