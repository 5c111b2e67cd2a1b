package services

import (
	"context"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
)

// PartnerSvcFacade manages partner services. Creating a service also creates
// its virtual wallets (one per currency).
type PartnerSvcFacade interface {
	CreatePartnerService(ctx context.Context, name string, code string, creatorUserID string) (*domain.PartnerService, error)
	GetPartnerServiceByID(ctx context.Context, serviceID string) (*domain.PartnerService, error)
	ListPartnerServices(ctx context.Context, includeInactive bool) ([]domain.PartnerService, error)
	DeactivatePartnerService(ctx context.Context, serviceID string, userID string) error
}
