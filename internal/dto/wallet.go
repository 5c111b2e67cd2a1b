package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/mosala/cashdesk_backend/internal/utils"
)

// SupplyRequest records float entering or leaving the desk.
type SupplyRequest struct {
	Direction   string          `json:"direction" binding:"required,oneof=ENTRY EXIT"`
	ServiceID   string          `json:"serviceID"`
	Currency    string          `json:"currency" binding:"required,oneof=USD CDF"`
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Description string          `json:"description"`
}

// MixedWithdrawalRequest records a withdrawal paid in two currencies.
type MixedWithdrawalRequest struct {
	ServiceID       string          `json:"serviceID" binding:"required"`
	RequestCurrency string          `json:"requestCurrency" binding:"required,oneof=USD CDF"`
	PayoutCurrency  string          `json:"payoutCurrency" binding:"required,oneof=USD CDF"`
	TotalAmount     decimal.Decimal `json:"totalAmount" binding:"required,dgt0"`
	CashAvailable   decimal.Decimal `json:"cashAvailable"`
	Commission      decimal.Decimal `json:"commission"`
	Rate            decimal.Decimal `json:"rate" binding:"required,dgt0"`
	Description     string          `json:"description"`
}

// MixedDepositRequest records a deposit funded in two currencies.
type MixedDepositRequest struct {
	ServiceID       string          `json:"serviceID" binding:"required"`
	RequestCurrency string          `json:"requestCurrency" binding:"required,oneof=USD CDF"`
	FundingCurrency string          `json:"fundingCurrency" binding:"required,oneof=USD CDF"`
	TotalAmount     decimal.Decimal `json:"totalAmount" binding:"required,dgt0"`
	CashReceived    decimal.Decimal `json:"cashReceived"`
	Commission      decimal.Decimal `json:"commission"`
	Rate            decimal.Decimal `json:"rate" binding:"required,dgt0"`
	Description     string          `json:"description"`
}

// WalletResponse is the API shape of a wallet.
type WalletResponse struct {
	WalletID         string          `json:"walletID"`
	WalletType       string          `json:"walletType"`
	ServiceID        *string         `json:"serviceID,omitempty"`
	Currency         string          `json:"currency"`
	Balance          decimal.Decimal `json:"balance"`
	FormattedBalance string          `json:"formattedBalance"`
	IsActive         bool            `json:"isActive"`
}

// ToWalletResponse converts a domain wallet to its API shape.
func ToWalletResponse(wallet *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:         wallet.WalletID,
		WalletType:       string(wallet.WalletType),
		ServiceID:        wallet.ServiceID,
		Currency:         string(wallet.Currency),
		Balance:          wallet.Balance,
		FormattedBalance: utils.FormatAmount(wallet.Balance, wallet.Currency),
		IsActive:         wallet.IsActive,
	}
}

// ToWalletResponses converts a slice of wallets.
func ToWalletResponses(wallets []domain.Wallet) []WalletResponse {
	responses := make([]WalletResponse, len(wallets))
	for i := range wallets {
		responses[i] = ToWalletResponse(&wallets[i])
	}
	return responses
}
