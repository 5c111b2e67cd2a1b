package repositories

import (
	"context"
	"time"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows ListTransactions. Nil fields are ignored.
type TransactionFilter struct {
	Status        *domain.TransactionStatus
	OperationType *domain.OperationType
	From          *time.Time
	To            *time.Time
}

// TransactionReader defines read operations for transaction data.
type TransactionReader interface {
	// FindTransactionByID retrieves a header without its lines.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionHeader, error)

	// FindLinesByTransactionID retrieves all lines of a header, ordered by line_number.
	FindLinesByTransactionID(ctx context.Context, transactionID string) ([]domain.PostingLine, error)

	// ListTransactions retrieves headers matching the filter, newest first.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.TransactionHeader, error)

	// FindTransactionByReference retrieves a header by its business reference,
	// used to reconcile ambiguous create failures before retrying.
	FindTransactionByReference(ctx context.Context, reference string) (*domain.TransactionHeader, error)
}

// TransactionWriter defines write operations for transaction data.
type TransactionWriter interface {
	// SaveTransaction persists a header and its lines in one database transaction.
	// When walletDeltas is non-empty the referenced wallets are locked, guarded
	// against going negative, and adjusted in the same transaction. A failed line
	// insert rolls everything back and surfaces as apperrors.ErrPartialWrite.
	SaveTransaction(ctx context.Context, header domain.TransactionHeader, lines []domain.PostingLine, walletDeltas map[string]decimal.Decimal) error

	// MarkValidated performs the conditional DRAFT -> VALIDATED transition.
	// It returns false with no error when the header was not in DRAFT (already
	// validated, cancelled, or concurrently changed): a no-op, not a failure.
	MarkValidated(ctx context.Context, transactionID string, validatedBy string, validatedAt time.Time) (bool, error)

	// MarkCancelled unconditionally sets the status to CANCELLED.
	MarkCancelled(ctx context.Context, transactionID string, updatedBy string, updatedAt time.Time) error

	// SaveCorrection persists the reversing header+lines and marks the original
	// cancelled with its correction linkage, all in one database transaction.
	SaveCorrection(ctx context.Context, correction domain.TransactionHeader, lines []domain.PostingLine, originalID string, reason string, userID string, at time.Time) error
}

// LineWriter defines draft-only line mutations. Status enforcement lives in
// the service layer; the repository trusts its caller.
type LineWriter interface {
	AddLine(ctx context.Context, line domain.PostingLine) error
	UpdateLine(ctx context.Context, line domain.PostingLine) error
	DeleteLine(ctx context.Context, lineID string) error
}

// TransactionRepository combines all transaction persistence operations.
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
	LineWriter
}
