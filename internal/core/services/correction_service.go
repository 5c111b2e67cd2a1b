package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
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

// correctionService reverses validated transactions. A correction never edits
// history: it posts the exact sign-inverted mirror of the original lines and
// marks the original cancelled with a link to its correction.
type correctionService struct {
	txnRepo  portsrepo.TransactionRepository
	auditSvc portssvc.AuditSvcFacade
}

// NewCorrectionService creates a new correction service.
func NewCorrectionService(txnRepo portsrepo.TransactionRepository, auditSvc portssvc.AuditSvcFacade) portssvc.CorrectionSvcFacade {
	return &correctionService{
		txnRepo:  txnRepo,
		auditSvc: auditSvc,
	}
}

var _ portssvc.CorrectionSvcFacade = (*correctionService)(nil)

func (s *correctionService) Correct(ctx context.Context, originalTransactionID string, reason string, userID string) (*domain.TransactionHeader, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.ErrMissingReason
	}

	original, lines, err := s.loadCorrectable(ctx, originalTransactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	correctionID := uuid.NewString()
	reference, err := utils.GenerateReference(original.OperationType, now)
	if err != nil {
		logger.Error("Failed to generate correction reference", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate reference: %w", err)
	}

	// Corrections skip the draft stage: the mirror is only meaningful as a
	// committed counter-posting.
	correction := domain.TransactionHeader{
		TransactionID:         correctionID,
		Reference:             reference,
		OperationType:         original.OperationType,
		ReferenceCurrency:     original.ReferenceCurrency,
		TotalAmount:           original.TotalAmount,
		Status:                domain.StatusValidated,
		OriginalTransactionID: &original.TransactionID,
		CorrectionReason:      reason,
		ValidatedBy:           &userID,
		ValidatedAt:           &now,
		AuditFields:           newAuditFields(userID, now),
	}

	mirror := make([]domain.PostingLine, len(lines))
	for i, line := range lines {
		mirror[i] = domain.PostingLine{
			LineID:        uuid.NewString(),
			TransactionID: correctionID,
			LineNumber:    line.LineNumber,
			WalletType:    line.WalletType,
			ServiceID:     line.ServiceID,
			Currency:      line.Currency,
			Sense:         line.Sense.Opposite(),
			Amount:        line.Amount,
			Description:   line.Description,
			AuditFields:   newAuditFields(userID, now),
		}
	}

	if err := s.txnRepo.SaveCorrection(ctx, correction, mirror, original.TransactionID, reason, userID, now); err != nil {
		logger.Error("Failed to save correction",
			slog.String("original_transaction_id", original.TransactionID), slog.String("error", err.Error()))
		return nil, err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "transaction_headers", "INSERT", correctionID, correction, userID)
	}
	logger.Info("Transaction corrected",
		slog.String("original_transaction_id", original.TransactionID),
		slog.String("correction_transaction_id", correctionID),
	)

	correction.Lines = mirror
	return &correction, nil
}

// loadCorrectable fetches the original and rejects anything the mirror flow
// cannot faithfully reverse.
func (s *correctionService) loadCorrectable(ctx context.Context, transactionID string) (*domain.TransactionHeader, []domain.PostingLine, error) {
	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, nil, err
	}

	switch original.Status {
	case domain.StatusDraft:
		return nil, nil, fmt.Errorf("%w: draft transactions are cancelled, not corrected", apperrors.ErrValidation)
	case domain.StatusCancelled:
		return nil, nil, fmt.Errorf("%w: transaction %s is already cancelled", apperrors.ErrValidation, transactionID)
	}
	if original.CorrectionTransactionID != nil {
		return nil, nil, fmt.Errorf("%w: transaction %s was already corrected by %s",
			apperrors.ErrDuplicate, transactionID, *original.CorrectionTransactionID)
	}
	if original.OriginalTransactionID != nil {
		return nil, nil, fmt.Errorf("%w: corrections cannot be corrected", apperrors.ErrCorrectionUnsupported)
	}
	if original.MultiCurrency {
		return nil, nil, fmt.Errorf("%w: mixed-payment and exchange transactions must be re-entered manually", apperrors.ErrCorrectionUnsupported)
	}

	lines, err := s.txnRepo.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if ledger.DistinctCurrencies(lines) > 1 {
		return nil, nil, fmt.Errorf("%w: transaction %s spans multiple currencies", apperrors.ErrCorrectionUnsupported, transactionID)
	}
	return original, lines, nil
}
