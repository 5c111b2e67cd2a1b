package services

import (
	"context"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
)

// TransactionSvcFacade is the transaction lifecycle manager: it owns header
// state transitions and is the only way header+lines reach persistence.
type TransactionSvcFacade interface {
	// Create validates the line set (count, amounts, per-currency balance)
	// independently of whoever built it, stamps identity and audit fields, and
	// persists header+lines as one unit in DRAFT.
	Create(ctx context.Context, header domain.TransactionHeader, lines []domain.PostingLine, creatorUserID string) (*domain.TransactionHeader, error)

	// Validate transitions DRAFT -> VALIDATED with compare-and-set semantics.
	// applied is false when another actor already moved the header on: callers
	// must treat that as a no-op, never as an error.
	Validate(ctx context.Context, transactionID string, userID string) (applied bool, err error)

	// Cancel sets the status to CANCELLED. It does not reverse financial
	// effect; validated transactions needing reversal go through the
	// correction flow.
	Cancel(ctx context.Context, transactionID string, userID string) error

	// Get returns the header with its lines in ascending line_number order.
	Get(ctx context.Context, transactionID string) (*domain.TransactionHeader, error)

	// List returns headers matching the filter, newest first.
	List(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.TransactionHeader, error)

	// Line mutations are permitted only while the header is in DRAFT; anything
	// else fails with apperrors.ErrTransactionLocked.
	AddLine(ctx context.Context, transactionID string, line domain.PostingLine, userID string) (*domain.TransactionHeader, error)
	UpdateLine(ctx context.Context, transactionID string, line domain.PostingLine, userID string) error
	DeleteLine(ctx context.Context, transactionID string, lineID string, userID string) error
}

// CorrectionSvcFacade reverses a validated transaction by posting its exact
// sign-inverted mirror and marking the original cancelled.
type CorrectionSvcFacade interface {
	Correct(ctx context.Context, originalTransactionID string, reason string, userID string) (*domain.TransactionHeader, error)
}
