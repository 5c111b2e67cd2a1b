package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mosala/cashdesk_backend/internal/core/builders"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/middleware"
	"github.com/mosala/cashdesk_backend/internal/utils"
	"github.com/mosala/cashdesk_backend/internal/utils/ledger"
)

// walletService records the operations that settle immediately: float supply
// and mixed-currency payments. The ledger entry and the wallet balance
// adjustments commit in one database transaction, so a balance guard failure
// leaves no trace of the attempt.
//
// Balance effects follow the posting convention of the business lines: a cash
// debit adds to the till, a cash credit removes from it, and a virtual credit
// raises the amount held for the service. Offset lines exist only to zero out
// currency groups and carry no balance effect.
type walletService struct {
	txnRepo    portsrepo.TransactionRepository
	walletRepo portsrepo.WalletRepository
	auditSvc   portssvc.AuditSvcFacade
}

// NewWalletService creates a new wallet operations service.
func NewWalletService(txnRepo portsrepo.TransactionRepository, walletRepo portsrepo.WalletRepository, auditSvc portssvc.AuditSvcFacade) portssvc.WalletSvcFacade {
	return &walletService{
		txnRepo:    txnRepo,
		walletRepo: walletRepo,
		auditSvc:   auditSvc,
	}
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

func (s *walletService) Supply(ctx context.Context, p builders.SupplyParams, userID string) (*domain.TransactionHeader, error) {
	draft, err := builders.BuildSupply(p)
	if err != nil {
		return nil, err
	}

	signed := p.Amount
	if p.Direction == domain.SupplyExit {
		signed = signed.Neg()
	}
	deltas := make(map[string]decimal.Decimal)
	if err := s.addDelta(ctx, deltas, domain.WalletCash, nil, p.Currency, signed); err != nil {
		return nil, err
	}
	if p.ServiceID != "" {
		if err := s.addDelta(ctx, deltas, domain.WalletVirtual, &p.ServiceID, p.Currency, signed); err != nil {
			return nil, err
		}
	}

	return s.persistApplied(ctx, draft, deltas, userID)
}

func (s *walletService) MixedWithdrawal(ctx context.Context, p builders.MixedWithdrawalParams, userID string) (*domain.TransactionHeader, error) {
	draft, err := builders.BuildMixedWithdrawal(p)
	if err != nil {
		return nil, err
	}

	remainder := p.TotalAmount.Sub(p.CashAvailable)
	converted, err := domain.Convert(remainder, p.RequestCurrency, p.PayoutCurrency, p.Rate)
	if err != nil {
		return nil, err
	}

	deltas := make(map[string]decimal.Decimal)
	if err := s.addDelta(ctx, deltas, domain.WalletVirtual, &p.ServiceID, p.RequestCurrency, p.TotalAmount); err != nil {
		return nil, err
	}
	if err := s.addDelta(ctx, deltas, domain.WalletCash, nil, p.RequestCurrency, p.CashAvailable.Add(p.Commission).Neg()); err != nil {
		return nil, err
	}
	if err := s.addDelta(ctx, deltas, domain.WalletCash, nil, p.PayoutCurrency, converted.Neg()); err != nil {
		return nil, err
	}

	return s.persistApplied(ctx, draft, deltas, userID)
}

func (s *walletService) MixedDeposit(ctx context.Context, p builders.MixedDepositParams, userID string) (*domain.TransactionHeader, error) {
	draft, err := builders.BuildMixedDeposit(p)
	if err != nil {
		return nil, err
	}

	remainder := p.TotalAmount.Sub(p.CashReceived)
	converted, err := domain.Convert(remainder, p.RequestCurrency, p.FundingCurrency, p.Rate)
	if err != nil {
		return nil, err
	}

	deltas := make(map[string]decimal.Decimal)
	if err := s.addDelta(ctx, deltas, domain.WalletVirtual, &p.ServiceID, p.RequestCurrency, p.TotalAmount); err != nil {
		return nil, err
	}
	if err := s.addDelta(ctx, deltas, domain.WalletCash, nil, p.RequestCurrency, p.CashReceived.Sub(p.Commission)); err != nil {
		return nil, err
	}
	if err := s.addDelta(ctx, deltas, domain.WalletCash, nil, p.FundingCurrency, converted); err != nil {
		return nil, err
	}

	return s.persistApplied(ctx, draft, deltas, userID)
}

func (s *walletService) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	return s.walletRepo.FindWalletByID(ctx, walletID)
}

func (s *walletService) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	return s.walletRepo.ListWallets(ctx)
}

// addDelta resolves the wallet for a (type, service, currency) triple and
// accumulates the signed delta. Zero deltas are dropped so commission-free
// operations do not lock wallets they never touch.
func (s *walletService) addDelta(ctx context.Context, deltas map[string]decimal.Decimal, walletType domain.WalletType, serviceID *string, currency domain.Currency, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	wallet, err := s.walletRepo.ResolveWallet(ctx, walletType, serviceID, currency)
	if err != nil {
		return fmt.Errorf("failed to resolve %s wallet in %s: %w", walletType, currency, err)
	}
	deltas[wallet.WalletID] = deltas[wallet.WalletID].Add(delta)
	return nil
}

// persistApplied stamps identity and audit fields and saves the entry already
// validated, with its wallet deltas applied under row locks.
func (s *walletService) persistApplied(ctx context.Context, draft builders.Draft, deltas map[string]decimal.Decimal, userID string) (*domain.TransactionHeader, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	header, lines := draft.Header, draft.Lines
	if err := ledger.ValidateBalance(lines); err != nil {
		logger.Warn("Rejected unbalanced wallet operation", slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	header.TransactionID = uuid.NewString()
	header.Status = domain.StatusValidated
	header.ValidatedBy = &userID
	header.ValidatedAt = &now
	header.AuditFields = newAuditFields(userID, now)

	reference, err := utils.GenerateReference(header.OperationType, now)
	if err != nil {
		logger.Error("Failed to generate transaction reference", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate reference: %w", err)
	}
	header.Reference = reference

	stampLines(lines, header.TransactionID, userID, now)

	if err := s.txnRepo.SaveTransaction(ctx, header, lines, deltas); err != nil {
		logger.Error("Failed to save wallet operation",
			slog.String("reference", header.Reference), slog.String("error", err.Error()))
		return nil, err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "transaction_headers", "INSERT", header.TransactionID, header, userID)
	}
	logger.Info("Wallet operation recorded",
		slog.String("transaction_id", header.TransactionID),
		slog.String("reference", header.Reference),
		slog.String("operation_type", string(header.OperationType)),
	)

	header.Lines = lines
	return &header, nil
}
