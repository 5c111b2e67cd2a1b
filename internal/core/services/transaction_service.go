package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/middleware"
	"github.com/mosala/cashdesk_backend/internal/utils"
	"github.com/mosala/cashdesk_backend/internal/utils/ledger"
)

// referenceReservationTTL bounds how long a reserved business reference blocks
// retries when a create neither committed nor released it.
const referenceReservationTTL = 24 * time.Hour

// transactionService owns the header lifecycle: it is the only path through
// which header+lines reach persistence, and it re-validates balance on every
// create no matter which builder produced the lines.
type transactionService struct {
	txnRepo  portsrepo.TransactionRepository
	refCache portsrepo.ReferenceCache // optional; nil degrades dedup to the unique index
	auditSvc portssvc.AuditSvcFacade
}

// NewTransactionService creates a new transaction lifecycle service.
func NewTransactionService(txnRepo portsrepo.TransactionRepository, refCache portsrepo.ReferenceCache, auditSvc portssvc.AuditSvcFacade) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:  txnRepo,
		refCache: refCache,
		auditSvc: auditSvc,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func newAuditFields(userID string, at time.Time) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     at,
		CreatedBy:     userID,
		LastUpdatedAt: at,
		LastUpdatedBy: userID,
	}
}

// stampLines assigns line identity and audit fields right before persistence.
func stampLines(lines []domain.PostingLine, transactionID string, userID string, at time.Time) {
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].TransactionID = transactionID
		if lines[i].LineNumber == 0 {
			lines[i].LineNumber = i + 1
		}
		lines[i].AuditFields = newAuditFields(userID, at)
	}
}

func (s *transactionService) Create(ctx context.Context, header domain.TransactionHeader, lines []domain.PostingLine, creatorUserID string) (*domain.TransactionHeader, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := ledger.ValidateBalance(lines); err != nil {
		logger.Warn("Rejected unbalanced transaction", slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	header.TransactionID = uuid.NewString()
	header.Status = domain.StatusDraft
	header.ValidatedBy = nil
	header.ValidatedAt = nil
	header.AuditFields = newAuditFields(creatorUserID, now)

	if header.Reference == "" {
		reference, err := utils.GenerateReference(header.OperationType, now)
		if err != nil {
			logger.Error("Failed to generate transaction reference", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to generate reference: %w", err)
		}
		header.Reference = reference
	}

	reserved, err := s.reserveReference(ctx, header.Reference)
	if err != nil {
		return nil, err
	}

	stampLines(lines, header.TransactionID, creatorUserID, now)

	if err := s.txnRepo.SaveTransaction(ctx, header, lines, nil); err != nil {
		if reserved && !errors.Is(err, apperrors.ErrDuplicateReference) {
			s.releaseReference(ctx, header.Reference)
		}
		logger.Error("Failed to save transaction", slog.String("reference", header.Reference), slog.String("error", err.Error()))
		return nil, err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "transaction_headers", "INSERT", header.TransactionID, header, creatorUserID)
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", header.TransactionID),
		slog.String("reference", header.Reference),
		slog.String("operation_type", string(header.OperationType)),
	)

	header.Lines = lines
	return &header, nil
}

// reserveReference claims the business reference in the cache before the
// insert. A cache outage is logged and ignored; the database unique index
// remains the last line of defence. A reference already claimed by someone
// else is a duplicate: either the earlier create committed, or it is still in
// flight and the caller must not race it.
func (s *transactionService) reserveReference(ctx context.Context, reference string) (bool, error) {
	if s.refCache == nil {
		return false, nil
	}
	logger := middleware.GetLoggerFromCtx(ctx)

	ok, err := s.refCache.Reserve(ctx, reference, referenceReservationTTL)
	if err != nil {
		logger.Warn("Reference cache unavailable, relying on the database unique index", slog.String("error", err.Error()))
		return false, nil
	}
	if !ok {
		logger.Warn("Reference already reserved", slog.String("reference", reference))
		return false, fmt.Errorf("%w: %s", apperrors.ErrDuplicateReference, reference)
	}
	return true, nil
}

func (s *transactionService) releaseReference(ctx context.Context, reference string) {
	if err := s.refCache.Release(ctx, reference); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to release reference reservation",
			slog.String("reference", reference), slog.String("error", err.Error()))
	}
}

func (s *transactionService) Validate(ctx context.Context, transactionID string, userID string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	header, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return false, err
	}
	if !header.IsDraft() {
		logger.Info("Validation skipped, transaction is no longer in draft",
			slog.String("transaction_id", transactionID), slog.String("status", string(header.Status)))
		return false, nil
	}

	// Drafts may have been edited line by line; the balance invariant is
	// enforced again at the moment it starts to matter.
	lines, err := s.txnRepo.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return false, err
	}
	if err := ledger.ValidateBalance(lines); err != nil {
		logger.Warn("Refused to validate unbalanced draft",
			slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return false, err
	}

	applied, err := s.txnRepo.MarkValidated(ctx, transactionID, userID, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to validate transaction", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return false, err
	}
	if !applied {
		// Someone else won the race between the read above and the update.
		logger.Info("Validation was a no-op, transaction already moved on", slog.String("transaction_id", transactionID))
		return false, nil
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "transaction_headers", "UPDATE", transactionID,
			map[string]string{"status": string(domain.StatusValidated)}, userID)
	}
	logger.Info("Transaction validated", slog.String("transaction_id", transactionID))
	return true, nil
}

func (s *transactionService) Cancel(ctx context.Context, transactionID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	header, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	switch header.Status {
	case domain.StatusCancelled:
		return nil
	case domain.StatusValidated:
		return fmt.Errorf("%w: validated transactions are reversed through a correction", apperrors.ErrTransactionLocked)
	}

	if err := s.txnRepo.MarkCancelled(ctx, transactionID, userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to cancel transaction", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "transaction_headers", "UPDATE", transactionID,
			map[string]string{"status": string(domain.StatusCancelled)}, userID)
	}
	logger.Info("Transaction cancelled", slog.String("transaction_id", transactionID))
	return nil
}

func (s *transactionService) Get(ctx context.Context, transactionID string) (*domain.TransactionHeader, error) {
	header, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	lines, err := s.txnRepo.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	header.Lines = lines
	return header, nil
}

func (s *transactionService) List(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.TransactionHeader, error) {
	return s.txnRepo.ListTransactions(ctx, filter)
}

// requireDraft loads the header and fails with ErrTransactionLocked unless it
// can still be mutated.
func (s *transactionService) requireDraft(ctx context.Context, transactionID string) (*domain.TransactionHeader, error) {
	header, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !header.IsDraft() {
		return nil, fmt.Errorf("%w: transaction %s is %s", apperrors.ErrTransactionLocked, transactionID, header.Status)
	}
	return header, nil
}

func (s *transactionService) AddLine(ctx context.Context, transactionID string, line domain.PostingLine, userID string) (*domain.TransactionHeader, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.requireDraft(ctx, transactionID); err != nil {
		return nil, err
	}
	if err := ledger.ValidateLine(line); err != nil {
		return nil, err
	}

	existing, err := s.txnRepo.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	line.LineID = uuid.NewString()
	line.TransactionID = transactionID
	if line.LineNumber == 0 {
		line.LineNumber = len(existing) + 1
	}
	line.AuditFields = newAuditFields(userID, now)

	if err := s.txnRepo.AddLine(ctx, line); err != nil {
		logger.Error("Failed to add posting line", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return nil, err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "transaction_lines", "INSERT", line.LineID, line, userID)
	}
	return s.Get(ctx, transactionID)
}

func (s *transactionService) UpdateLine(ctx context.Context, transactionID string, line domain.PostingLine, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.requireDraft(ctx, transactionID); err != nil {
		return err
	}
	if line.LineID == "" {
		return fmt.Errorf("%w: line ID is required", apperrors.ErrValidation)
	}
	if err := ledger.ValidateLine(line); err != nil {
		return err
	}

	existing, err := s.txnRepo.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	found := false
	for _, l := range existing {
		if l.LineID == line.LineID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: line %s does not belong to transaction %s", apperrors.ErrNotFound, line.LineID, transactionID)
	}

	line.TransactionID = transactionID
	line.LastUpdatedAt = time.Now().UTC()
	line.LastUpdatedBy = userID

	if err := s.txnRepo.UpdateLine(ctx, line); err != nil {
		logger.Error("Failed to update posting line", slog.String("line_id", line.LineID), slog.String("error", err.Error()))
		return err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "transaction_lines", "UPDATE", line.LineID, line, userID)
	}
	return nil
}

func (s *transactionService) DeleteLine(ctx context.Context, transactionID string, lineID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.requireDraft(ctx, transactionID); err != nil {
		return err
	}

	existing, err := s.txnRepo.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	found := false
	for _, l := range existing {
		if l.LineID == lineID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: line %s does not belong to transaction %s", apperrors.ErrNotFound, lineID, transactionID)
	}

	if err := s.txnRepo.DeleteLine(ctx, lineID); err != nil {
		logger.Error("Failed to delete posting line", slog.String("line_id", lineID), slog.String("error", err.Error()))
		return err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "transaction_lines", "DELETE", lineID, nil, userID)
	}
	return nil
}
