package services

import (
	"context"

	"github.com/mosala/cashdesk_backend/internal/core/builders"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
)

// WalletSvcFacade records the operations that move wallet balances
// immediately: float supply and mixed-currency payments. These run through
// the same builders as the draft path but persist already validated, with the
// wallet deltas applied atomically under row locks in the same database
// transaction. Using both this path and the draft path for the same
// real-world event would double-apply it; callers pick one.
type WalletSvcFacade interface {
	Supply(ctx context.Context, p builders.SupplyParams, userID string) (*domain.TransactionHeader, error)
	MixedWithdrawal(ctx context.Context, p builders.MixedWithdrawalParams, userID string) (*domain.TransactionHeader, error)
	MixedDeposit(ctx context.Context, p builders.MixedDepositParams, userID string) (*domain.TransactionHeader, error)

	GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error)
	ListWallets(ctx context.Context) ([]domain.Wallet, error)
}
