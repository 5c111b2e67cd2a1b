package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WalletRepository manages wallet rows. Balance mutation only ever happens
// inside a database transaction, under row locks, with a non-negative guard:
// this is the in-house equivalent of the atomic balance-mutation procedures
// the rest of the system relies on.
type WalletRepository interface {
	// ResolveWallet finds the wallet for a (type, service, currency) triple.
	// serviceID is nil for cash wallets.
	ResolveWallet(ctx context.Context, walletType domain.WalletType, serviceID *string, currency domain.Currency) (*domain.Wallet, error)

	// FindWalletByID retrieves a wallet without locking.
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// ListWallets returns all active wallets.
	ListWallets(ctx context.Context) ([]domain.Wallet, error)

	// SaveWallet inserts a new wallet with a zero balance.
	SaveWallet(ctx context.Context, wallet domain.Wallet) error

	// FindWalletsByIDsForUpdate locks the given wallets within tx and returns
	// them keyed by wallet ID. Fails with apperrors.ErrNotFound if any is missing.
	FindWalletsByIDsForUpdate(ctx context.Context, tx pgx.Tx, walletIDs []string) (map[string]domain.Wallet, error)

	// UpdateWalletBalancesInTx applies signed deltas to already-locked wallets.
	// A delta that would take a balance negative fails with apperrors.ErrInsufficientFunds.
	UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, at time.Time) error
}
