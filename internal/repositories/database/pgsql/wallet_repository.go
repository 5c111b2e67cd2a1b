package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	"github.com/mosala/cashdesk_backend/internal/models"
	"github.com/mosala/cashdesk_backend/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type PgxWalletRepository struct {
	pool Pool
}

// newPgxWalletRepository creates a new repository for wallet data.
func newPgxWalletRepository(pool Pool) portsrepo.WalletRepository {
	return &PgxWalletRepository{pool: pool}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepository
var _ portsrepo.WalletRepository = (*PgxWalletRepository)(nil)

const walletColumns = `wallet_id, wallet_type, service_id, currency_code, balance, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanWallet(row pgx.Row) (models.Wallet, error) {
	var m models.Wallet
	err := row.Scan(
		&m.WalletID,
		&m.WalletType,
		&m.ServiceID,
		&m.CurrencyCode,
		&m.Balance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveWallet inserts a new wallet.
func (r *PgxWalletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	m := mapping.ToModelWallet(wallet)

	query := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		m.WalletID,
		m.WalletType,
		m.ServiceID,
		m.CurrencyCode,
		m.Balance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: wallet for this type/service/currency already exists", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save wallet %s: %w", m.WalletID, err)
	}
	return nil
}

// FindWalletByID retrieves a wallet by its ID.
func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1;`

	m, err := scanWallet(r.pool.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet by ID %s: %w", walletID, err)
	}

	w := mapping.ToDomainWallet(m)
	return &w, nil
}

// ResolveWallet finds the wallet for a (type, service, currency) triple.
func (r *PgxWalletRepository) ResolveWallet(ctx context.Context, walletType domain.WalletType, serviceID *string, currency domain.Currency) (*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE wallet_type = $1 AND service_id IS NOT DISTINCT FROM $2 AND currency_code = $3;
	`

	m, err := scanWallet(r.pool.QueryRow(ctx, query, string(walletType), serviceID, string(currency)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve %s wallet in %s: %w", walletType, currency, err)
	}

	w := mapping.ToDomainWallet(m)
	return &w, nil
}

// ListWallets retrieves all active wallets, cash first, then by service and currency.
func (r *PgxWalletRepository) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE is_active = TRUE
		ORDER BY wallet_type, service_id NULLS FIRST, currency_code;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	wallets := []domain.Wallet{}
	for rows.Next() {
		m, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		wallets = append(wallets, mapping.ToDomainWallet(m))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet rows: %w", err)
	}

	return wallets, nil
}

// FindWalletsByIDsForUpdate retrieves multiple wallets by IDs and locks the rows
// for update. Must be called within a transaction.
func (r *PgxWalletRepository) FindWalletsByIDsForUpdate(ctx context.Context, tx pgx.Tx, walletIDs []string) (map[string]domain.Wallet, error) {
	if len(walletIDs) == 0 {
		return map[string]domain.Wallet{}, nil
	}

	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE wallet_id = ANY($1)
		FOR UPDATE;
	`

	rows, err := tx.Query(ctx, query, walletIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets by IDs for update: %w", err)
	}
	defer rows.Close()

	walletsMap := make(map[string]domain.Wallet)
	for rows.Next() {
		m, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked wallet row: %w", err)
		}
		walletsMap[m.WalletID] = mapping.ToDomainWallet(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked wallet rows: %w", err)
	}

	if len(walletsMap) != len(walletIDs) {
		missing := []string{}
		for _, id := range walletIDs {
			if _, found := walletsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "some wallets requested for update lock were not found", "missing_wallets", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested wallets, missing: %v", apperrors.ErrNotFound, missing)
	}

	return walletsMap, nil
}

// UpdateWalletBalancesInTx applies signed deltas to wallets within a transaction.
// The rows must already be locked via FindWalletsByIDsForUpdate; the guard in the
// WHERE clause rejects any delta that would take a balance negative.
func (r *PgxWalletRepository) UpdateWalletBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, at time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	query := `
		UPDATE wallets
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE wallet_id = $1 AND COALESCE(balance, 0) + $2 >= 0;
	`

	batch := &pgx.Batch{}
	walletIDs := make([]string, 0, len(deltas))
	for walletID, delta := range deltas {
		if !delta.IsZero() {
			batch.Queue(query, walletID, delta, at, userID)
			walletIDs = append(walletIDs, walletID)
		}
	}

	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for wallet %s: %w", walletIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			// The row exists and is locked, so zero rows means the guard fired.
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: wallet %s cannot go negative", apperrors.ErrInsufficientFunds, walletIDs[i])
			}
		}
	}

	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}

	return batchErr
}
