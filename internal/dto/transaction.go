package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/mosala/cashdesk_backend/internal/utils"
)

// CreateLineRequest is one posting line of a manually entered transaction.
type CreateLineRequest struct {
	WalletType  string          `json:"walletType" binding:"required,oneof=CASH VIRTUAL"`
	ServiceID   *string         `json:"serviceID,omitempty"`
	Currency    string          `json:"currency" binding:"required,oneof=USD CDF"`
	Sense       string          `json:"sense" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Description string          `json:"description"`
}

// CreateTransactionRequest creates a draft from caller-supplied lines. The
// service re-validates balance regardless of what the caller claims.
type CreateTransactionRequest struct {
	OperationType     string              `json:"operationType" binding:"required,oneof=DEPOSIT WITHDRAWAL SUPPLY EXCHANGE TRANSFER"`
	ReferenceCurrency string              `json:"referenceCurrency" binding:"required,oneof=USD CDF"`
	TotalAmount       decimal.Decimal     `json:"totalAmount" binding:"required"`
	Lines             []CreateLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// DepositRequest records cash received against a partner service.
type DepositRequest struct {
	ServiceID   string          `json:"serviceID" binding:"required"`
	Currency    string          `json:"currency" binding:"required,oneof=USD CDF"`
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Description string          `json:"description"`
}

// WithdrawalRequest records cash paid out from a partner service.
type WithdrawalRequest struct {
	ServiceID   string          `json:"serviceID" binding:"required"`
	Currency    string          `json:"currency" binding:"required,oneof=USD CDF"`
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Description string          `json:"description"`
}

// ExchangeRequest records a currency exchange at the desk.
type ExchangeRequest struct {
	Source     string          `json:"source" binding:"required,oneof=USD CDF"`
	Dest       string          `json:"dest" binding:"required,oneof=USD CDF"`
	Amount     decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Commission decimal.Decimal `json:"commission"`
	Rate       decimal.Decimal `json:"rate" binding:"required,dgt0"`
}

// TransferRequest moves value between two service wallets in one currency.
type TransferRequest struct {
	FromServiceID string          `json:"fromServiceID" binding:"required"`
	ToServiceID   string          `json:"toServiceID" binding:"required"`
	Currency      string          `json:"currency" binding:"required,oneof=USD CDF"`
	Amount        decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Description   string          `json:"description"`
}

// LineResponse is the API shape of a posting line.
type LineResponse struct {
	LineID          string          `json:"lineID"`
	LineNumber      int             `json:"lineNumber"`
	WalletType      string          `json:"walletType"`
	ServiceID       *string         `json:"serviceID,omitempty"`
	Currency        string          `json:"currency"`
	Sense           string          `json:"sense"`
	Amount          decimal.Decimal `json:"amount"`
	FormattedAmount string          `json:"formattedAmount"`
	Description     string          `json:"description"`
}

// TransactionResponse is the API shape of a transaction header.
type TransactionResponse struct {
	TransactionID           string           `json:"transactionID"`
	Reference               string           `json:"reference"`
	OperationType           string           `json:"operationType"`
	ReferenceCurrency       string           `json:"referenceCurrency"`
	TotalAmount             decimal.Decimal  `json:"totalAmount"`
	FormattedTotal          string           `json:"formattedTotal"`
	Status                  string           `json:"status"`
	ExchangeRate            *decimal.Decimal `json:"exchangeRate,omitempty"`
	CurrencyPair            string           `json:"currencyPair,omitempty"`
	MultiCurrency           bool             `json:"multiCurrency"`
	OriginalTransactionID   *string          `json:"originalTransactionID,omitempty"`
	CorrectionTransactionID *string          `json:"correctionTransactionID,omitempty"`
	CorrectionReason        string           `json:"correctionReason,omitempty"`
	ValidatedBy             *string          `json:"validatedBy,omitempty"`
	ValidatedAt             *time.Time       `json:"validatedAt,omitempty"`
	CreatedAt               time.Time        `json:"createdAt"`
	CreatedBy               string           `json:"createdBy"`
	Lines                   []LineResponse   `json:"lines,omitempty"`
}

// ToDomainLine converts a request line to its domain form.
func (r CreateLineRequest) ToDomainLine(lineNumber int) domain.PostingLine {
	return domain.PostingLine{
		LineNumber:  lineNumber,
		WalletType:  domain.WalletType(r.WalletType),
		ServiceID:   r.ServiceID,
		Currency:    domain.Currency(r.Currency),
		Sense:       domain.LineSense(r.Sense),
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// ToLineResponse converts a domain posting line to its API shape.
func ToLineResponse(line *domain.PostingLine) LineResponse {
	return LineResponse{
		LineID:          line.LineID,
		LineNumber:      line.LineNumber,
		WalletType:      string(line.WalletType),
		ServiceID:       line.ServiceID,
		Currency:        string(line.Currency),
		Sense:           string(line.Sense),
		Amount:          line.Amount,
		FormattedAmount: utils.FormatAmount(line.Amount, line.Currency),
		Description:     line.Description,
	}
}

// ToTransactionResponse converts a domain header (with or without lines) to its
// API shape.
func ToTransactionResponse(header *domain.TransactionHeader) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:           header.TransactionID,
		Reference:               header.Reference,
		OperationType:           string(header.OperationType),
		ReferenceCurrency:       string(header.ReferenceCurrency),
		TotalAmount:             header.TotalAmount,
		FormattedTotal:          utils.FormatAmount(header.TotalAmount, header.ReferenceCurrency),
		Status:                  string(header.Status),
		ExchangeRate:            header.ExchangeRate,
		CurrencyPair:            header.CurrencyPair,
		MultiCurrency:           header.MultiCurrency,
		OriginalTransactionID:   header.OriginalTransactionID,
		CorrectionTransactionID: header.CorrectionTransactionID,
		CorrectionReason:        header.CorrectionReason,
		ValidatedBy:             header.ValidatedBy,
		ValidatedAt:             header.ValidatedAt,
		CreatedAt:               header.CreatedAt,
		CreatedBy:               header.CreatedBy,
	}
	if len(header.Lines) > 0 {
		resp.Lines = make([]LineResponse, len(header.Lines))
		for i := range header.Lines {
			resp.Lines[i] = ToLineResponse(&header.Lines[i])
		}
	}
	return resp
}

// ToTransactionResponses converts a slice of headers.
func ToTransactionResponses(headers []domain.TransactionHeader) []TransactionResponse {
	responses := make([]TransactionResponse, len(headers))
	for i := range headers {
		responses[i] = ToTransactionResponse(&headers[i])
	}
	return responses
}
