package domain

import "github.com/shopspring/decimal"

// Wallet is an abstract balance holder: the singleton cash pool for a currency,
// or a partner service's virtual balance in a currency. The ledger core
// references wallets; balance mutation happens in the persistence layer under
// row locks with a non-negative guard.
type Wallet struct {
	WalletID   string          `json:"walletID"`
	WalletType WalletType      `json:"walletType"`
	ServiceID  *string         `json:"serviceID,omitempty"` // set iff WalletType == VIRTUAL
	Currency   Currency        `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	IsActive   bool            `json:"isActive"`
	AuditFields
}

// SupplyDirection indicates whether float is entering or leaving the cash desk.
type SupplyDirection string

const (
	SupplyEntry SupplyDirection = "ENTRY"
	SupplyExit  SupplyDirection = "EXIT"
)
