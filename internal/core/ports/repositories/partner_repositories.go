package repositories

import (
	"context"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
)

// PartnerRepository manages the partner services tellers post against.
type PartnerRepository interface {
	SavePartnerService(ctx context.Context, service domain.PartnerService) error
	FindPartnerServiceByID(ctx context.Context, serviceID string) (*domain.PartnerService, error)
	ListPartnerServices(ctx context.Context, includeInactive bool) ([]domain.PartnerService, error)
	UpdatePartnerService(ctx context.Context, service domain.PartnerService) error
}
