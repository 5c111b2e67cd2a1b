package domain

// PartnerService is a partner business (mobile money operator, utility, bank
// agent...) that tellers record deposits and withdrawals against. Each active
// service owns one virtual wallet per currency.
type PartnerService struct {
	ServiceID string `json:"serviceID"`
	Name      string `json:"name"`
	Code      string `json:"code"` // short mnemonic used on receipts
	IsActive  bool   `json:"isActive"`
	AuditFields
}
