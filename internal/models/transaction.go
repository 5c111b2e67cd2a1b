package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the lifecycle state of a transaction header.
type TransactionStatus string

const (
	Draft     TransactionStatus = "DRAFT"
	Validated TransactionStatus = "VALIDATED"
	Cancelled TransactionStatus = "CANCELLED"
)

// TransactionHeader is the persisted form of a transaction. Lines are stored
// in transaction_lines and loaded separately.
type TransactionHeader struct {
	TransactionID     string            `json:"transactionID" db:"transaction_id"`
	Reference         string            `json:"reference" db:"reference"`
	OperationType     string            `json:"operationType" db:"operation_type"`
	ReferenceCurrency string            `json:"referenceCurrency" db:"reference_currency"`
	TotalAmount       decimal.Decimal   `json:"totalAmount" db:"total_amount"`
	Status            TransactionStatus `json:"status" db:"status"`
	ExchangeRate      *decimal.Decimal  `json:"exchangeRate,omitempty" db:"exchange_rate"`
	// CurrencyPair and CorrectionReason are NOT NULL DEFAULT '' in the schema,
	// so they stay plain strings: an explicit NULL in the insert would bypass
	// the column default and be rejected.
	CurrencyPair  string `json:"currencyPair,omitempty" db:"currency_pair"`
	MultiCurrency bool   `json:"multiCurrency" db:"multi_currency"`

	OriginalTransactionID   *string `json:"originalTransactionID,omitempty" db:"original_transaction_id"`
	CorrectionTransactionID *string `json:"correctionTransactionID,omitempty" db:"correction_transaction_id"`
	CorrectionReason        string  `json:"correctionReason,omitempty" db:"correction_reason"`

	ValidatedBy *string    `json:"validatedBy,omitempty" db:"validated_by"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty" db:"validated_at"`
	AuditFields
}

// TransactionLine is one debit or credit row belonging to a header.
type TransactionLine struct {
	LineID        string          `json:"lineID" db:"line_id"`
	TransactionID string          `json:"transactionID" db:"transaction_id"`
	LineNumber    int             `json:"lineNumber" db:"line_number"`
	WalletType    string          `json:"walletType" db:"wallet_type"`
	ServiceID     *string         `json:"serviceID,omitempty" db:"service_id"`
	CurrencyCode  string          `json:"currencyCode" db:"currency_code"`
	Sense         string          `json:"sense" db:"sense"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Description   string          `json:"description" db:"description"`
	AuditFields
}
