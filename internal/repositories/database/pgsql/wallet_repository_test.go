package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walletColumnNames() []string {
	return []string{
		"wallet_id", "wallet_type", "service_id", "currency_code", "balance", "is_active",
		"created_at", "created_by", "last_updated_at", "last_updated_by",
	}
}

func walletRow(w domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumnNames()).AddRow(
		w.WalletID, string(w.WalletType), w.ServiceID, string(w.Currency), w.Balance, w.IsActive,
		w.CreatedAt, w.CreatedBy, w.LastUpdatedAt, w.LastUpdatedBy,
	)
}

func newTestWallet() domain.Wallet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.Wallet{
		WalletID:   uuid.NewString(),
		WalletType: domain.WalletCash,
		Currency:   domain.CDF,
		Balance:    decimal.RequireFromString("250000.00"),
		IsActive:   true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "user-1",
			LastUpdatedAt: now,
			LastUpdatedBy: "user-1",
		},
	}
}

func TestWalletRepo_ResolveWallet_Cash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPgxWalletRepository(mock)
	w := newTestWallet()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE wallet_type").
		WithArgs(string(domain.WalletCash), (*string)(nil), string(domain.CDF)).
		WillReturnRows(walletRow(w))

	got, err := repo.ResolveWallet(context.Background(), domain.WalletCash, nil, domain.CDF)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, w.WalletID, got.WalletID)
	assert.True(t, w.Balance.Equal(got.Balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_ResolveWallet_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPgxWalletRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE wallet_type").
		WithArgs(string(domain.WalletVirtual), ptr("svc-9"), string(domain.USD)).
		WillReturnRows(pgxmock.NewRows(walletColumnNames()))

	_, err = repo.ResolveWallet(context.Background(), domain.WalletVirtual, ptr("svc-9"), domain.USD)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateWalletBalancesInTx_GuardRejectsNegative(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPgxWalletRepository(mock)
	w := newTestWallet()

	mock.ExpectBegin()
	batch := mock.ExpectBatch()
	// Zero rows affected on a locked row means the non-negative guard fired.
	batch.ExpectExec("UPDATE wallets").WithArgs(anyArgs(4)...).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	deltas := map[string]decimal.Decimal{
		w.WalletID: decimal.RequireFromString("-999999.00"),
	}
	err = repo.UpdateWalletBalancesInTx(context.Background(), tx, deltas, "user-1", time.Now().UTC())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_FindWalletsByIDsForUpdate_MissingWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newPgxWalletRepository(mock)
	w := newTestWallet()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE wallet_id = ANY.+ FOR UPDATE").
		WithArgs(anyArgs(1)...).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.FindWalletsByIDsForUpdate(context.Background(), tx, []string{w.WalletID, "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr(s string) *string {
	return &s
}
