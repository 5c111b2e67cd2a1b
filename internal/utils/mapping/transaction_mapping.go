package mapping

import (
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/mosala/cashdesk_backend/internal/models"
)

// ToModelTransactionHeader converts a domain TransactionHeader to its model
func ToModelTransactionHeader(d domain.TransactionHeader) models.TransactionHeader {
	return models.TransactionHeader{
		TransactionID:           d.TransactionID,
		Reference:               d.Reference,
		OperationType:           string(d.OperationType),
		ReferenceCurrency:       string(d.ReferenceCurrency),
		TotalAmount:             d.TotalAmount,
		Status:                  models.TransactionStatus(d.Status),
		ExchangeRate:            d.ExchangeRate,
		CurrencyPair:            d.CurrencyPair,
		MultiCurrency:           d.MultiCurrency,
		OriginalTransactionID:   d.OriginalTransactionID,
		CorrectionTransactionID: d.CorrectionTransactionID,
		CorrectionReason:        d.CorrectionReason,
		ValidatedBy:             d.ValidatedBy,
		ValidatedAt:             d.ValidatedAt,
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransactionHeader converts a model TransactionHeader to its domain form
func ToDomainTransactionHeader(m models.TransactionHeader) domain.TransactionHeader {
	return domain.TransactionHeader{
		TransactionID:           m.TransactionID,
		Reference:               m.Reference,
		OperationType:           domain.OperationType(m.OperationType),
		ReferenceCurrency:       domain.Currency(m.ReferenceCurrency),
		TotalAmount:             m.TotalAmount,
		Status:                  domain.TransactionStatus(m.Status),
		ExchangeRate:            m.ExchangeRate,
		CurrencyPair:            m.CurrencyPair,
		MultiCurrency:           m.MultiCurrency,
		OriginalTransactionID:   m.OriginalTransactionID,
		CorrectionTransactionID: m.CorrectionTransactionID,
		CorrectionReason:        m.CorrectionReason,
		ValidatedBy:             m.ValidatedBy,
		ValidatedAt:             m.ValidatedAt,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelTransactionLine converts a domain PostingLine to its model
func ToModelTransactionLine(d domain.PostingLine) models.TransactionLine {
	return models.TransactionLine{
		LineID:        d.LineID,
		TransactionID: d.TransactionID,
		LineNumber:    d.LineNumber,
		WalletType:    string(d.WalletType),
		ServiceID:     d.ServiceID,
		CurrencyCode:  string(d.Currency),
		Sense:         string(d.Sense),
		Amount:        d.Amount,
		Description:   d.Description,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPostingLine converts a model TransactionLine to its domain form
func ToDomainPostingLine(m models.TransactionLine) domain.PostingLine {
	return domain.PostingLine{
		LineID:        m.LineID,
		TransactionID: m.TransactionID,
		LineNumber:    m.LineNumber,
		WalletType:    domain.WalletType(m.WalletType),
		ServiceID:     m.ServiceID,
		Currency:      domain.Currency(m.CurrencyCode),
		Sense:         domain.LineSense(m.Sense),
		Amount:        m.Amount,
		Description:   m.Description,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPostingLineSlice converts a slice of model lines to domain lines
func ToDomainPostingLineSlice(ms []models.TransactionLine) []domain.PostingLine {
	ds := make([]domain.PostingLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPostingLine(m)
	}
	return ds
}

func stringToPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ptrToString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
