package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mosala/cashdesk_backend/internal/apperrors"
	"github.com/mosala/cashdesk_backend/internal/core/domain"
	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	portssvc "github.com/mosala/cashdesk_backend/internal/core/ports/services"
	"github.com/mosala/cashdesk_backend/internal/middleware"
)

// partnerService manages partner services and their virtual wallets.
type partnerService struct {
	partnerRepo portsrepo.PartnerRepository
	walletRepo  portsrepo.WalletRepository
	auditSvc    portssvc.AuditSvcFacade
}

// NewPartnerService creates a new partner service manager.
func NewPartnerService(partnerRepo portsrepo.PartnerRepository, walletRepo portsrepo.WalletRepository, auditSvc portssvc.AuditSvcFacade) portssvc.PartnerSvcFacade {
	return &partnerService{
		partnerRepo: partnerRepo,
		walletRepo:  walletRepo,
		auditSvc:    auditSvc,
	}
}

var _ portssvc.PartnerSvcFacade = (*partnerService)(nil)

func (s *partnerService) CreatePartnerService(ctx context.Context, name string, code string, creatorUserID string) (*domain.PartnerService, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" || code == "" {
		return nil, fmt.Errorf("%w: service name and code are required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	service := domain.PartnerService{
		ServiceID:   uuid.NewString(),
		Name:        name,
		Code:        code,
		IsActive:    true,
		AuditFields: newAuditFields(creatorUserID, now),
	}

	if err := s.partnerRepo.SavePartnerService(ctx, service); err != nil {
		logger.Error("Failed to save partner service", slog.String("code", code), slog.String("error", err.Error()))
		return nil, err
	}

	// One virtual wallet per currency, opened empty. Wallets outlive
	// deactivation so history keeps resolving.
	for _, currency := range domain.Currencies {
		wallet := domain.Wallet{
			WalletID:    uuid.NewString(),
			WalletType:  domain.WalletVirtual,
			ServiceID:   &service.ServiceID,
			Currency:    currency,
			Balance:     decimal.Zero,
			IsActive:    true,
			AuditFields: newAuditFields(creatorUserID, now),
		}
		if err := s.walletRepo.SaveWallet(ctx, wallet); err != nil {
			logger.Error("Failed to create service wallet",
				slog.String("service_id", service.ServiceID), slog.String("currency", string(currency)), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to create %s wallet for service %s: %w", currency, service.ServiceID, err)
		}
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "partner_services", "INSERT", service.ServiceID, service, creatorUserID)
	}
	logger.Info("Partner service created", slog.String("service_id", service.ServiceID), slog.String("code", code))
	return &service, nil
}

func (s *partnerService) GetPartnerServiceByID(ctx context.Context, serviceID string) (*domain.PartnerService, error) {
	return s.partnerRepo.FindPartnerServiceByID(ctx, serviceID)
}

func (s *partnerService) ListPartnerServices(ctx context.Context, includeInactive bool) ([]domain.PartnerService, error) {
	return s.partnerRepo.ListPartnerServices(ctx, includeInactive)
}

func (s *partnerService) DeactivatePartnerService(ctx context.Context, serviceID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	service, err := s.partnerRepo.FindPartnerServiceByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if !service.IsActive {
		return nil
	}

	service.IsActive = false
	service.LastUpdatedAt = time.Now().UTC()
	service.LastUpdatedBy = userID

	if err := s.partnerRepo.UpdatePartnerService(ctx, *service); err != nil {
		logger.Error("Failed to deactivate partner service", slog.String("service_id", serviceID), slog.String("error", err.Error()))
		return err
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(ctx, "partner_services", "UPDATE", serviceID, map[string]bool{"isActive": false}, userID)
	}
	logger.Info("Partner service deactivated", slog.String("service_id", serviceID))
	return nil
}
