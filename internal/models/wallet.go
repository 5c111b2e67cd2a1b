package models

import "github.com/shopspring/decimal"

// Wallet is one balance bucket: a cash till per currency, or a partner
// service's virtual balance per currency.
type Wallet struct {
	WalletID     string          `json:"walletID" db:"wallet_id"`
	WalletType   string          `json:"walletType" db:"wallet_type"`
	ServiceID    *string         `json:"serviceID,omitempty" db:"service_id"`
	CurrencyCode string          `json:"currencyCode" db:"currency_code"`
	Balance      decimal.Decimal `json:"balance" db:"balance"`
	IsActive     bool            `json:"isActive" db:"is_active"`
	AuditFields
}
