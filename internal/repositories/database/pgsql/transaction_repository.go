package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

type PgxTransactionRepository struct {
	BaseRepository
	walletRepo portsrepo.WalletRepository
}

// newPgxTransactionRepository creates a new repository for transaction header and line data.
func newPgxTransactionRepository(pool Pool, walletRepo portsrepo.WalletRepository) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		walletRepo:     walletRepo,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepository
var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

const headerColumns = `transaction_id, reference, operation_type, reference_currency, total_amount, status,
	       exchange_rate, currency_pair, multi_currency,
	       original_transaction_id, correction_transaction_id, correction_reason,
	       validated_by, validated_at,
	       created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, transaction_id, line_number, wallet_type, service_id, currency_code, sense, amount, description,
	       created_at, created_by, last_updated_at, last_updated_by`

const insertHeaderQuery = `
	INSERT INTO transaction_headers (` + headerColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
`

const insertLineQuery = `
	INSERT INTO transaction_lines (` + lineColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

func scanHeader(row pgx.Row) (models.TransactionHeader, error) {
	var m models.TransactionHeader
	err := row.Scan(
		&m.TransactionID,
		&m.Reference,
		&m.OperationType,
		&m.ReferenceCurrency,
		&m.TotalAmount,
		&m.Status,
		&m.ExchangeRate,
		&m.CurrencyPair,
		&m.MultiCurrency,
		&m.OriginalTransactionID,
		&m.CorrectionTransactionID,
		&m.CorrectionReason,
		&m.ValidatedBy,
		&m.ValidatedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func headerInsertArgs(m models.TransactionHeader) []any {
	return []any{
		m.TransactionID,
		m.Reference,
		m.OperationType,
		m.ReferenceCurrency,
		m.TotalAmount,
		m.Status,
		m.ExchangeRate,
		m.CurrencyPair,
		m.MultiCurrency,
		m.OriginalTransactionID,
		m.CorrectionTransactionID,
		m.CorrectionReason,
		m.ValidatedBy,
		m.ValidatedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

func queueLineInserts(batch *pgx.Batch, transactionID string, lines []domain.PostingLine, userID string, now time.Time) {
	for _, line := range lines {
		m := mapping.ToModelTransactionLine(line)
		m.TransactionID = transactionID
		m.CreatedAt = now
		m.CreatedBy = userID
		m.LastUpdatedAt = now
		m.LastUpdatedBy = userID
		batch.Queue(insertLineQuery,
			m.LineID,
			m.TransactionID,
			m.LineNumber,
			m.WalletType,
			m.ServiceID,
			m.CurrencyCode,
			m.Sense,
			m.Amount,
			m.Description,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
}

// SaveTransaction saves a header and its lines within one DB transaction. When
// walletDeltas is non-empty the wallets are locked and adjusted in the same
// transaction, so a failed line insert rolls the balance changes back too.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, header domain.TransactionHeader, lines []domain.PostingLine, walletDeltas map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := header.CreatedAt
	userID := header.CreatedBy

	m := mapping.ToModelTransactionHeader(header)
	if _, err := tx.Exec(ctx, insertHeaderQuery, headerInsertArgs(m)...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: reference %s already recorded", apperrors.ErrDuplicateReference, m.Reference)
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}

	if len(walletDeltas) > 0 {
		walletIDs := make([]string, 0, len(walletDeltas))
		for walletID := range walletDeltas {
			walletIDs = append(walletIDs, walletID)
		}
		if _, err := r.walletRepo.FindWalletsByIDsForUpdate(ctx, tx, walletIDs); err != nil {
			return fmt.Errorf("failed to lock wallets for update: %w", err)
		}
		if err := r.walletRepo.UpdateWalletBalancesInTx(ctx, tx, walletDeltas, userID, now); err != nil {
			return fmt.Errorf("failed to update wallet balances: %w", err)
		}
	}

	batch := &pgx.Batch{}
	queueLineInserts(batch, m.TransactionID, lines, userID, now)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("%w: line insert failed for transaction %s, rolled back: %v",
			apperrors.ErrPartialWrite, m.TransactionID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a header by its ID, without lines.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM transaction_headers WHERE transaction_id = $1;`

	m, err := scanHeader(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}

	h := mapping.ToDomainTransactionHeader(m)
	return &h, nil
}

// FindTransactionByReference retrieves a header by its business reference.
func (r *PgxTransactionRepository) FindTransactionByReference(ctx context.Context, reference string) (*domain.TransactionHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM transaction_headers WHERE reference = $1;`

	m, err := scanHeader(r.Pool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by reference "+reference, err)
	}

	h := mapping.ToDomainTransactionHeader(m)
	return &h, nil
}

// FindLinesByTransactionID retrieves all lines of a header in line_number order.
func (r *PgxTransactionRepository) FindLinesByTransactionID(ctx context.Context, transactionID string) ([]domain.PostingLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM transaction_lines
		WHERE transaction_id = $1
		ORDER BY line_number;
	`

	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for transaction "+transactionID, err)
	}
	defer rows.Close()

	lines := []models.TransactionLine{}
	for rows.Next() {
		var m models.TransactionLine
		err := rows.Scan(
			&m.LineID,
			&m.TransactionID,
			&m.LineNumber,
			&m.WalletType,
			&m.ServiceID,
			&m.CurrencyCode,
			&m.Sense,
			&m.Amount,
			&m.Description,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for transaction "+transactionID, err)
		}
		lines = append(lines, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for transaction "+transactionID, err)
	}

	return mapping.ToDomainPostingLineSlice(lines), nil
}

// ListTransactions retrieves headers matching the filter, newest first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.TransactionHeader, error) {
	query := `SELECT ` + headerColumns + ` FROM transaction_headers`
	clauses := []string{}
	args := []any{}

	addClause := func(condition string, value any) {
		args = append(args, value)
		clauses = append(clauses, condition+" $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		addClause("status =", string(*filter.Status))
	}
	if filter.OperationType != nil {
		addClause("operation_type =", string(*filter.OperationType))
	}
	if filter.From != nil {
		addClause("created_at >=", *filter.From)
	}
	if filter.To != nil {
		addClause("created_at <", *filter.To)
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC, transaction_id DESC;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	headers := []domain.TransactionHeader{}
	for rows.Next() {
		m, err := scanHeader(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		headers = append(headers, mapping.ToDomainTransactionHeader(m))
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	return headers, nil
}

// MarkValidated performs the conditional DRAFT -> VALIDATED transition. The
// status predicate in the WHERE clause is the whole concurrency story: whichever
// update wins the race flips the row, every later one affects zero rows.
func (r *PgxTransactionRepository) MarkValidated(ctx context.Context, transactionID string, validatedBy string, validatedAt time.Time) (bool, error) {
	query := `
		UPDATE transaction_headers
		SET status = $2, validated_by = $3, validated_at = $4, last_updated_at = $4, last_updated_by = $3
		WHERE transaction_id = $1 AND status = $5;
	`

	cmdTag, err := r.Pool.Exec(ctx, query,
		transactionID,
		models.Validated,
		validatedBy,
		validatedAt,
		models.Draft,
	)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to validate transaction "+transactionID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Distinguish a missing row from a row that already left DRAFT.
		if _, findErr := r.FindTransactionByID(ctx, transactionID); findErr != nil {
			return false, findErr
		}
		return false, nil
	}

	return true, nil
}

// MarkCancelled sets the status to CANCELLED.
func (r *PgxTransactionRepository) MarkCancelled(ctx context.Context, transactionID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE transaction_headers
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, transactionID, models.Cancelled, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to cancel transaction "+transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + transactionID + " not found for cancellation")
	}
	return nil
}

// SaveCorrection persists the reversing header with its lines and stamps the
// original cancelled with the correction linkage, all in one DB transaction.
func (r *PgxTransactionRepository) SaveCorrection(ctx context.Context, correction domain.TransactionHeader, lines []domain.PostingLine, originalID string, reason string, userID string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransactionHeader(correction)
	if _, err := tx.Exec(ctx, insertHeaderQuery, headerInsertArgs(m)...); err != nil {
		return apperrors.NewAppError(500, "failed to insert correction "+m.TransactionID, err)
	}

	batch := &pgx.Batch{}
	queueLineInserts(batch, m.TransactionID, lines, userID, at)
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("%w: line insert failed for correction %s, rolled back: %v",
			apperrors.ErrPartialWrite, m.TransactionID, err)
	}

	originalQuery := `
		UPDATE transaction_headers
		SET status = $2, correction_transaction_id = $3, correction_reason = $4, last_updated_at = $5, last_updated_by = $6
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, originalQuery, originalID, models.Cancelled, m.TransactionID, reason, at, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update original transaction "+originalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("original transaction " + originalID + " not found for correction")
	}

	return r.Commit(ctx, tx)
}

// AddLine inserts a single line into an existing draft.
func (r *PgxTransactionRepository) AddLine(ctx context.Context, line domain.PostingLine) error {
	m := mapping.ToModelTransactionLine(line)
	_, err := r.Pool.Exec(ctx, insertLineQuery,
		m.LineID,
		m.TransactionID,
		m.LineNumber,
		m.WalletType,
		m.ServiceID,
		m.CurrencyCode,
		m.Sense,
		m.Amount,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert line for transaction "+m.TransactionID, err)
	}
	return nil
}

// UpdateLine rewrites the mutable fields of a draft line.
func (r *PgxTransactionRepository) UpdateLine(ctx context.Context, line domain.PostingLine) error {
	m := mapping.ToModelTransactionLine(line)
	query := `
		UPDATE transaction_lines
		SET wallet_type = $2, service_id = $3, currency_code = $4, sense = $5, amount = $6, description = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE line_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query,
		m.LineID,
		m.WalletType,
		m.ServiceID,
		m.CurrencyCode,
		m.Sense,
		m.Amount,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update line "+m.LineID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("line " + m.LineID + " not found for update")
	}
	return nil
}

// DeleteLine removes a draft line.
func (r *PgxTransactionRepository) DeleteLine(ctx context.Context, lineID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM transaction_lines WHERE line_id = $1;`, lineID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete line "+lineID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("line " + lineID + " not found for deletion")
	}
	return nil
}
